package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"

	"PosTerminal/app/models"
)

// MessageType identifies a customer display message
type MessageType string

const (
	TypeDraftUpdate      MessageType = "draft_update"
	TypeInvoiceSent      MessageType = "invoice_sent"
	TypeInvoiceCancelled MessageType = "invoice_cancelled"
	TypeHeartbeat        MessageType = "heartbeat"
	TypeAuthenticate     MessageType = "authenticate"
	TypeAuthResponse     MessageType = "auth_response"
)

// Message is the wire envelope for display traffic
type Message struct {
	Type      MessageType     `json:"type"`
	ClientID  string          `json:"client_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// SnapshotProvider supplies the current draft view for new clients and
// the REST endpoint.
type SnapshotProvider interface {
	Snapshot() models.DraftSnapshot
}

// Client is one connected customer display
type Client struct {
	ID          string
	Connection  *websocket.Conn
	Send        chan []byte
	Server      *Server
	ConnectedAt time.Time
	RemoteAddr  string
}

// Server pushes live draft state to customer-facing displays on the
// local network and announces itself over mDNS so displays can find
// the terminal without configuration.
type Server struct {
	clients      map[string]*Client
	register     chan *Client
	unregister   chan *Client
	upgrader     websocket.Upgrader
	mu           sync.RWMutex
	port         string
	snapshots    SnapshotProvider
	httpServer   *http.Server
	mdnsShutdown chan bool
}

// NewServer creates a display server listening on port (":8190" form)
func NewServer(port string, snapshots SnapshotProvider) *Server {
	return &Server{
		clients:      make(map[string]*Client),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		port:         port,
		snapshots:    snapshots,
		mdnsShutdown: make(chan bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Displays live on the local network
				return true
			},
		},
	}
}

// Start runs the hub and the HTTP listener. Blocks until Stop.
func (s *Server) Start() error {
	go s.run()
	go s.startMDNS()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/draft", s.handleDraft)

	s.httpServer = &http.Server{Addr: s.port, Handler: mux}

	log.Printf("Display server starting on port %s", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// startMDNS announces the display server via zeroconf
func (s *Server) startMDNS() {
	port := portNumber(s.port)
	if port == 0 {
		log.Printf("mDNS: invalid port format %s", s.port)
		return
	}

	server, err := zeroconf.Register(
		"POS Customer Display",
		"_posdisplay._tcp",
		"local.",
		port,
		[]string{"version=1.0"},
		nil,
	)
	if err != nil {
		log.Printf("mDNS: failed to register service: %v", err)
		return
	}

	log.Println("mDNS: display server announced on _posdisplay._tcp.local")

	<-s.mdnsShutdown
	server.Shutdown()
	log.Println("mDNS: service announcement stopped")
}

func portNumber(addr string) int {
	var port int
	if _, err := fmt.Sscanf(addr, ":%d", &port); err != nil {
		return 0
	}
	return port
}

// Stop shuts down the listener and disconnects every display
func (s *Server) Stop() {
	select {
	case s.mdnsShutdown <- true:
	default:
	}

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, client := range s.clients {
		close(client.Send)
		client.Connection.Close()
	}
	s.clients = make(map[string]*Client)
}

// run is the hub loop
func (s *Server) run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			s.mu.Unlock()
			log.Printf("Display connected: %s", client.ID)
			s.sendAuthResponse(client, true, "Connected successfully")
			s.sendSnapshot(client)

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.ID]; ok {
				delete(s.clients, client.ID)
				s.mu.Unlock()
				s.closeClient(client)
				log.Printf("Display disconnected: %s", client.ID)
			} else {
				s.mu.Unlock()
			}

		case <-ticker.C:
			s.sendHeartbeat()
		}
	}
}

func (s *Server) closeClient(client *Client) {
	go func(c *Client) {
		defer func() {
			if r := recover(); r != nil {
				// Channel already closed
			}
		}()
		close(c.Send)
	}(client)
}

// handleWebSocket upgrades a display connection
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:          generateClientID(),
		Connection:  conn,
		Send:        make(chan []byte, 256),
		Server:      s,
		ConnectedAt: time.Now(),
		RemoteAddr:  r.RemoteAddr,
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth is the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	clientCount := len(s.clients)
	s.mu.RUnlock()

	response := map[string]interface{}{
		"status":  "healthy",
		"clients": clientCount,
		"time":    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleDraft serves the current draft snapshot so a display can paint
// itself before the first broadcast arrives.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.snapshots.Snapshot())
}

// readPump reads display messages until the connection drops
func (c *Client) readPump() {
	defer func() {
		c.Server.unregister <- c
		c.Connection.Close()
	}()

	c.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Connection.SetPongHandler(func(string) error {
		c.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, messageBytes, err := c.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var message Message
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			log.Printf("Error parsing message: %v", err)
			continue
		}

		c.handleMessage(&message)
	}
}

// writePump writes queued messages and pings to the display
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Connection.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an inbound display message. Displays are
// read-only; only heartbeats get a reply.
func (c *Client) handleMessage(message *Message) {
	switch message.Type {
	case TypeHeartbeat:
		c.sendMessage(Message{
			Type:      TypeHeartbeat,
			Timestamp: time.Now(),
			Data:      json.RawMessage(`{"status":"alive"}`),
		})

	case TypeAuthenticate:
		c.Server.sendAuthResponse(c, true, "Already connected")

	default:
		log.Printf("Unknown message type: %s", message.Type)
	}
}

// sendMessage queues a message for one display
func (c *Client) sendMessage(message Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	default:
		return fmt.Errorf("client send channel is full")
	}
}

// PublishDraft broadcasts the draft snapshot to every display
func (s *Server) PublishDraft(snapshot models.DraftSnapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	s.broadcastMessage(Message{
		Type:      TypeDraftUpdate,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// PublishEvent broadcasts a lifecycle event (sent, cancelled)
func (s *Server) PublishEvent(event string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = json.RawMessage(`{}`)
	}
	s.broadcastMessage(Message{
		Type:      MessageType(event),
		Timestamp: time.Now(),
		Data:      data,
	})
}

func (s *Server) broadcastMessage(message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, client := range s.clients {
		select {
		case client.Send <- data:
		default:
			log.Printf("Failed to send to display %s", client.ID)
		}
	}
}

// sendSnapshot pushes the current draft to a newly connected display
func (s *Server) sendSnapshot(client *Client) {
	data, err := json.Marshal(s.snapshots.Snapshot())
	if err != nil {
		return
	}
	client.sendMessage(Message{
		Type:      TypeDraftUpdate,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// sendHeartbeat pings every display so dead connections surface
func (s *Server) sendHeartbeat() {
	s.broadcastMessage(Message{
		Type:      TypeHeartbeat,
		Timestamp: time.Now(),
		Data:      json.RawMessage(`{"ping":"pong"}`),
	})
}

// sendAuthResponse confirms a connection to the display
func (s *Server) sendAuthResponse(client *Client, success bool, text string) {
	response := map[string]interface{}{
		"success":   success,
		"message":   text,
		"client_id": client.ID,
	}

	data, _ := json.Marshal(response)

	client.sendMessage(Message{
		Type:      TypeAuthResponse,
		Timestamp: time.Now(),
		Data:      json.RawMessage(data),
	})
}

// GetConnectedClients lists connected displays for the settings screen
func (s *Server) GetConnectedClients() []map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]map[string]interface{}, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, map[string]interface{}{
			"id":           client.ID,
			"connected_at": client.ConnectedAt.Format(time.RFC3339),
			"remote_addr":  client.RemoteAddr,
		})
	}
	return clients
}

// GetServerStatus reports the display server state
func (s *Server) GetServerStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"running":       true,
		"port":          s.port,
		"total_clients": len(s.clients),
	}
}

func generateClientID() string {
	return fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
}
