package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"PosTerminal/app/api"
	"PosTerminal/app/database"
	"PosTerminal/app/models"
)

// DisplayNotifier receives draft snapshots and lifecycle events for the
// customer-facing display. Nil is allowed; the draft works without one.
type DisplayNotifier interface {
	PublishDraft(snapshot models.DraftSnapshot)
	PublishEvent(event string, payload map[string]interface{})
}

// DraftService holds the one in-flight invoice draft of the terminal.
// All state lives in memory behind a mutex; the backend only learns
// about the draft when it is sent, auto-saved or cancelled.
type DraftService struct {
	client   *api.Client
	identity IdentityProvider
	store    *database.LocalStore
	logger   *LoggerService

	mu                   sync.Mutex
	display              DisplayNotifier
	phase                models.DraftPhase
	customer             *models.Customer
	lines                []models.DraftLine
	boxQty               string
	discountType         models.DiscountType
	discountAmount       decimal.Decimal
	paidAmount           decimal.Decimal
	previousInvoiceID    *int
	invoiceNumber        string
	provisionalNumber    bool
	lastCreatedInvoiceNo string
	lastDraftInvoiceID   int
	pendingRemoveItemID  *int
	finalized            bool
}

// NewDraftService creates a new draft service in the empty state
func NewDraftService(client *api.Client, identity IdentityProvider, store *database.LocalStore, logger *LoggerService) *DraftService {
	return &DraftService{
		client:        client,
		identity:      identity,
		store:         store,
		logger:        logger,
		phase:         models.PhaseEmpty,
		boxQty:        "0",
		discountType:  models.DiscountPercentage,
		invoiceNumber: "AUTO",
	}
}

// SetDisplay attaches the customer display channel
func (s *DraftService) SetDisplay(display DisplayNotifier) {
	s.mu.Lock()
	s.display = display
	s.mu.Unlock()
}

// SelectCustomer sets the draft's customer. Picking a customer while no
// recall is active starts a fresh invoice, so the previous confirmation
// banner and box count are cleared.
func (s *DraftService) SelectCustomer(customer models.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.previousInvoiceID == nil && s.lastCreatedInvoiceNo != "" {
		s.lastCreatedInvoiceNo = ""
		s.invoiceNumber = "AUTO"
		s.provisionalNumber = false
		s.boxQty = "0"
	}

	c := customer
	s.customer = &c
	s.phase = models.PhaseBuilding
	s.finalized = false
	s.refreshProvisionalNumberLocked()
	s.broadcastLocked()
}

// Customer returns the currently selected customer, nil when none
func (s *DraftService) Customer() *models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// AddItem appends a line to the draft. A line for the same catalog item
// merges into the existing one by summing quantities.
func (s *DraftService) AddItem(line models.DraftLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i := range s.lines {
		if s.lines[i].ItemID == line.ItemID {
			s.lines[i].Qty += line.Qty
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, line)
	}

	s.phase = models.PhaseBuilding
	s.finalized = false
	s.refreshProvisionalNumberLocked()
	s.broadcastLocked()
}

// SetItemQuantity overwrites a line's quantity from free-form input.
// Anything that does not parse to a positive integer becomes 1.
func (s *DraftService) SetItemQuantity(itemID int, quantityText string) {
	qty, err := strconv.Atoi(strings.TrimSpace(quantityText))
	if err != nil || qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ItemID == itemID {
			s.lines[i].Qty = qty
			break
		}
	}
	s.broadcastLocked()
}

// RequestRemoveItem marks a line for removal pending confirmation
func (s *DraftService) RequestRemoveItem(itemID int) {
	s.mu.Lock()
	s.pendingRemoveItemID = &itemID
	s.mu.Unlock()
}

// PendingRemoveItemID returns the line awaiting removal confirmation,
// nil when no removal is pending.
func (s *DraftService) PendingRemoveItemID() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingRemoveItemID
}

// ConfirmRemoveItem removes the line marked by RequestRemoveItem
func (s *DraftService) ConfirmRemoveItem() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingRemoveItemID == nil {
		return
	}
	id := *s.pendingRemoveItemID
	s.pendingRemoveItemID = nil

	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ItemID != id {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	s.refreshProvisionalNumberLocked()
	s.broadcastLocked()
}

// DismissRemoveItem abandons a pending removal
func (s *DraftService) DismissRemoveItem() {
	s.mu.Lock()
	s.pendingRemoveItemID = nil
	s.mu.Unlock()
}

// Lines returns a copy of the draft lines
func (s *DraftService) Lines() []models.DraftLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DraftLine(nil), s.lines...)
}

// Totals computes the money summary of the current draft. A percentage
// discount is taken off the subtotal; a fixed discount is subtracted as
// entered. Nothing is clamped, matching the receipt math of the backend.
func (s *DraftService) Totals() models.DraftTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalsLocked()
}

func (s *DraftService) totalsLocked() models.DraftTotals {
	subtotal := decimal.Zero
	count := 0
	for _, line := range s.lines {
		subtotal = subtotal.Add(line.LineTotal())
		count += line.Qty
	}

	discount := s.discountAmount
	if s.discountType == models.DiscountPercentage {
		discount = subtotal.Mul(s.discountAmount).Div(decimal.NewFromInt(100))
	}

	return models.DraftTotals{
		Subtotal:  subtotal,
		Discount:  discount,
		Total:     subtotal.Sub(discount),
		ItemCount: count,
	}
}

// SetDiscount updates the discount type and amount
func (s *DraftService) SetDiscount(discountType models.DiscountType, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if discountType == models.DiscountFixed {
		s.discountType = models.DiscountFixed
	} else {
		s.discountType = models.DiscountPercentage
	}
	s.discountAmount = decimal.NewFromFloat(amount)
	s.broadcastLocked()
}

// SetPaidAmount records the amount the customer paid up front
func (s *DraftService) SetPaidAmount(amount float64) {
	s.mu.Lock()
	s.paidAmount = decimal.NewFromFloat(amount)
	s.mu.Unlock()
}

// SetBoxQuantity replaces the bag/box count from free-form input,
// keeping digits only. Zero is allowed while the draft is being built;
// Send enforces the minimum of one.
func (s *DraftService) SetBoxQuantity(text string) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		digits = "0"
	}

	s.mu.Lock()
	s.boxQty = digits
	s.broadcastLocked()
	s.mu.Unlock()
}

// IncrementBoxQuantity steps the bag/box count up by one
func (s *DraftService) IncrementBoxQuantity() {
	s.mu.Lock()
	s.boxQty = strconv.Itoa(s.boxQtyLocked() + 1)
	s.broadcastLocked()
	s.mu.Unlock()
}

// DecrementBoxQuantity steps the bag/box count down, floored at zero
func (s *DraftService) DecrementBoxQuantity() {
	s.mu.Lock()
	qty := s.boxQtyLocked() - 1
	if qty < 0 {
		qty = 0
	}
	s.boxQty = strconv.Itoa(qty)
	s.broadcastLocked()
	s.mu.Unlock()
}

// BoxQuantity returns the bag/box count as entered
func (s *DraftService) BoxQuantity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boxQty
}

func (s *DraftService) boxQtyLocked() int {
	qty, err := strconv.Atoi(s.boxQty)
	if err != nil {
		return 0
	}
	return qty
}

// refreshProvisionalNumberLocked keeps the on-screen invoice number in
// step with the draft: once a customer and at least one item exist, an
// AUTO number becomes a provisional INV-xxxx placeholder derived from
// the clock; emptying the draft reverts it.
func (s *DraftService) refreshProvisionalNumberLocked() {
	if s.customer != nil && len(s.lines) > 0 {
		if s.invoiceNumber == "AUTO" {
			stamp := strconv.FormatInt(time.Now().Unix(), 10)
			s.invoiceNumber = "INV-" + stamp[len(stamp)-4:]
			s.provisionalNumber = true
		}
		return
	}
	if s.provisionalNumber {
		s.invoiceNumber = "AUTO"
		s.provisionalNumber = false
	}
}

// DisplayInvoiceNumber returns the text shown in the invoice number
// slot. A confirmed send wins over everything, then a recalled or
// provisional number, then the AUTO placeholder.
func (s *DraftService) DisplayInvoiceNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastCreatedInvoiceNo != "" {
		return "PENDING: " + s.lastCreatedInvoiceNo
	}
	if s.invoiceNumber != "AUTO" {
		return s.invoiceNumber
	}
	return "AUTO"
}

// LastCreatedInvoiceNo returns the number of the most recently sent
// invoice, empty when none was sent this session.
func (s *DraftService) LastCreatedInvoiceNo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCreatedInvoiceNo
}

// Send persists the draft as a PENDING invoice: create the record,
// attach every line, then confirm the status. Validation happens before
// any network traffic so a half-built draft never leaves the terminal.
func (s *DraftService) Send(ctx context.Context) (string, error) {
	s.mu.Lock()

	if s.customer == nil {
		s.mu.Unlock()
		return "", fmt.Errorf("Please select a customer first")
	}
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return "", fmt.Errorf("Please add at least one item")
	}
	userID := s.identity.CurrentUserID()
	if userID <= 0 {
		s.mu.Unlock()
		return "", fmt.Errorf("User session invalid. Please login again.")
	}
	if s.boxQtyLocked() < 1 {
		s.mu.Unlock()
		return "", fmt.Errorf("Bag/Box Qty must be at least 1")
	}

	totals := s.totalsLocked()
	payload := models.CreateInvoicePayload{
		CustomerID:        s.customer.ID,
		CreatedUserID:     userID,
		Status:            models.StatusPending,
		PreviousInvoiceID: s.previousInvoiceID,
		TotalAmount:       totals.Total.InexactFloat64(),
		DiscountType:      strings.ToUpper(string(s.discountType)),
		NextBoxNumber:     s.boxQtyLocked(),
	}
	if s.paidAmount.IsPositive() {
		paid := s.paidAmount.InexactFloat64()
		payload.PaidAmount = &paid
	}
	if s.discountAmount.IsPositive() {
		amount := s.discountAmount.InexactFloat64()
		payload.DiscountAmount = &amount
	}
	discountType := payload.DiscountType
	lines := append([]models.DraftLine(nil), s.lines...)
	s.mu.Unlock()

	created, err := s.client.CreateInvoice(ctx, payload)
	if err != nil {
		s.logger.LogError("Failed to create invoice", err)
		return "", fmt.Errorf("failed to send invoice: %s", apiMessage(err))
	}

	number := created.InvoiceNo
	if number == "" {
		number = fmt.Sprintf("INV-%d", created.ID)
	}

	if err := s.attachLines(ctx, created.ID, lines, discountType); err != nil {
		s.logger.LogError("Failed to attach invoice items", err)
		return "", fmt.Errorf("invoice %s created but items failed: %s", number, apiMessage(err))
	}

	if err := s.client.UpdateInvoice(ctx, created.ID, map[string]interface{}{"status": models.StatusPending}); err != nil {
		s.logger.LogWarning("Could not confirm invoice status", err.Error())
	}

	if err := s.store.DeleteValue(database.KeyOfflineDraft); err != nil {
		s.logger.LogWarning("Could not clear offline draft stash", err.Error())
	}

	s.mu.Lock()
	s.lastCreatedInvoiceNo = number
	s.finalized = true
	s.clearDraftStateLocked()
	s.phase = models.PhaseSent
	s.broadcastLocked()
	s.publishEventLocked("invoice_sent", map[string]interface{}{"invoice_no": number})
	s.mu.Unlock()

	s.logger.LogInfo(fmt.Sprintf("Invoice %s sent", number))
	return number, nil
}

// attachLines posts every draft line against the created invoice. Lines
// go out concurrently and all of them must succeed. Item-level discounts
// are not supported; each line carries the invoice discount type and a
// zero amount.
func (s *DraftService) attachLines(ctx context.Context, invoiceID int, lines []models.DraftLine, discountType string) error {
	var wg sync.WaitGroup
	errs := make(chan error, len(lines))

	for _, line := range lines {
		wg.Add(1)
		go func(line models.DraftLine) {
			defer wg.Done()
			payload := models.AddInvoiceItemPayload{
				StockID:        line.StockID,
				Quantity:       line.Qty,
				SellingPrice:   line.UnitPrice.InexactFloat64(),
				DiscountType:   discountType,
				DiscountAmount: 0,
			}
			if err := s.client.AddInvoiceItem(ctx, invoiceID, payload); err != nil {
				errs <- fmt.Errorf("item %s: %w", line.Name, err)
			}
		}(line)
	}
	wg.Wait()
	close(errs)

	return <-errs
}

// Cancel voids the invoice behind the draft when one exists on the
// backend and clears the terminal regardless of the outcome. Both
// CANCELLED spellings are tried because backend versions disagree.
func (s *DraftService) Cancel(ctx context.Context) {
	s.mu.Lock()
	invoiceID := s.lastDraftInvoiceID
	if invoiceID == 0 && s.previousInvoiceID != nil {
		invoiceID = *s.previousInvoiceID
	}
	s.mu.Unlock()

	if invoiceID > 0 {
		err := s.client.UpdateInvoice(ctx, invoiceID, map[string]interface{}{"status": models.StatusCancelled})
		if err != nil {
			err = s.client.UpdateInvoice(ctx, invoiceID, map[string]interface{}{"status": models.StatusCancelledAlt})
		}
		if err != nil {
			s.logger.LogWarning("Could not cancel invoice on backend", err.Error())
		}
	}

	if err := s.store.DeleteValue(database.KeyOfflineDraft); err != nil {
		s.logger.LogWarning("Could not clear offline draft stash", err.Error())
	}

	s.mu.Lock()
	s.lastCreatedInvoiceNo = ""
	s.lastDraftInvoiceID = 0
	s.finalized = false
	s.clearDraftStateLocked()
	s.phase = models.PhaseCancelled
	s.broadcastLocked()
	s.publishEventLocked("invoice_cancelled", nil)
	s.mu.Unlock()
}

// Recall loads a previously sent invoice back into the draft screen for
// amendment. The persisted line shape varies across backend versions,
// so every display field falls back through the known spellings.
func (s *DraftService) Recall(ctx context.Context, invoice models.Invoice) {
	if len(invoice.Items) == 0 {
		if full, err := s.client.GetInvoice(ctx, invoice.ID); err == nil {
			if full.Customer == nil {
				full.Customer = invoice.Customer
			}
			invoice = *full
		} else {
			s.logger.LogWarning("Recall proceeding without full invoice", err.Error())
		}
	}

	lines := make([]models.DraftLine, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		lines = append(lines, recallLine(item))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.customer = invoice.Customer
	s.lines = lines
	s.previousInvoiceID = &invoice.ID
	s.lastDraftInvoiceID = 0
	s.lastCreatedInvoiceNo = ""
	s.finalized = false
	s.pendingRemoveItemID = nil
	s.provisionalNumber = false

	if invoice.InvoiceNo != "" {
		s.invoiceNumber = invoice.InvoiceNo
	} else {
		s.invoiceNumber = "AUTO"
	}
	if invoice.PaidAmount != nil {
		s.paidAmount = *invoice.PaidAmount
	} else {
		s.paidAmount = decimal.Zero
	}
	if invoice.DiscountAmount != nil {
		s.discountAmount = *invoice.DiscountAmount
	} else {
		s.discountAmount = decimal.Zero
	}
	if strings.EqualFold(invoice.DiscountType, string(models.DiscountFixed)) {
		s.discountType = models.DiscountFixed
	} else {
		s.discountType = models.DiscountPercentage
	}
	if invoice.NextBoxNumber != nil {
		s.boxQty = strconv.Itoa(int(invoice.NextBoxNumber.IntPart()))
	} else {
		s.boxQty = "0"
	}

	s.phase = models.PhaseBuilding
	s.broadcastLocked()
}

// recallLine maps a persisted invoice line back onto a draft line
func recallLine(item models.InvoiceItem) models.DraftLine {
	line := models.DraftLine{
		ItemID:      item.ID,
		StockID:     item.StockID,
		SKU:         item.SKU,
		Name:        item.Name,
		Description: item.Description,
	}
	if item.StockID != 0 {
		line.ItemID = item.StockID
	}

	if item.Stock != nil {
		if item.Stock.SKU != "" {
			line.SKU = item.Stock.SKU
		}
		if item.Stock.Name != "" {
			line.Name = item.Stock.Name
		}
		if item.Stock.Description != "" {
			line.Description = item.Stock.Description
		}
	}
	if line.SKU == "" {
		line.SKU = "N/A"
	}
	if line.Name == "" {
		line.Name = "Unknown Item"
	}

	switch {
	case item.SellingPrice != nil:
		line.UnitPrice = *item.SellingPrice
	case item.UnitPrice != nil:
		line.UnitPrice = *item.UnitPrice
	}

	switch {
	case item.Quantity != nil:
		line.Qty = int(item.Quantity.IntPart())
	case item.Qty != nil:
		line.Qty = int(item.Qty.IntPart())
	}

	return line
}

// PersistActiveDraft saves work in progress when the cashier leaves the
// invoice screen. With a customer chosen the draft becomes an ACTIVE
// invoice on the backend; without one the lines are stashed locally.
// Failures are logged and never block navigation.
func (s *DraftService) PersistActiveDraft(ctx context.Context, reason string) {
	s.mu.Lock()
	if s.finalized || len(s.lines) == 0 {
		s.mu.Unlock()
		return
	}
	userID := s.identity.CurrentUserID()
	if userID <= 0 {
		s.mu.Unlock()
		return
	}

	if s.customer == nil {
		stash := models.OfflineDraft{
			Reason:         reason,
			SavedAt:        time.Now().UTC(),
			Items:          append([]models.DraftLine(nil), s.lines...),
			BoxQty:         s.boxQty,
			DiscountType:   s.discountType,
			DiscountAmount: s.discountAmount,
			PaidAmount:     s.paidAmount,
		}
		s.mu.Unlock()

		blob, err := json.Marshal(stash)
		if err != nil {
			s.logger.LogError("Could not encode offline draft", err)
			return
		}
		if err := s.store.SetValue(database.KeyOfflineDraft, string(blob)); err != nil {
			s.logger.LogError("Could not stash offline draft", err)
			return
		}
		s.logger.LogInfo("Draft stashed locally (" + reason + ")")
		return
	}

	totals := s.totalsLocked()
	paid := s.paidAmount.InexactFloat64()
	discount := s.discountAmount.InexactFloat64()
	payload := models.CreateInvoicePayload{
		CustomerID:        s.customer.ID,
		CreatedUserID:     userID,
		Status:            models.StatusActive,
		PreviousInvoiceID: s.previousInvoiceID,
		PaidAmount:        &paid,
		TotalAmount:       totals.Total.InexactFloat64(),
		DiscountType:      string(s.discountType),
		DiscountAmount:    &discount,
		NextBoxNumber:     s.boxQtyLocked(),
	}
	lines := append([]models.DraftLine(nil), s.lines...)
	s.mu.Unlock()

	created, err := s.client.CreateInvoice(ctx, payload)
	if err != nil {
		payload.Status = models.StatusSent
		created, err = s.client.CreateInvoice(ctx, payload)
	}
	if err != nil {
		s.logger.LogError("Could not auto-save draft invoice", err)
		return
	}

	if err := s.attachLines(ctx, created.ID, lines, payload.DiscountType); err != nil {
		s.logger.LogWarning("Auto-saved draft is missing items", err.Error())
	}

	if err := s.store.DeleteValue(database.KeyOfflineDraft); err != nil {
		s.logger.LogWarning("Could not clear offline draft stash", err.Error())
	}

	s.mu.Lock()
	s.lastDraftInvoiceID = created.ID
	s.finalized = true
	s.mu.Unlock()

	s.logger.LogInfo(fmt.Sprintf("Draft auto-saved as invoice %d (%s)", created.ID, reason))
}

// LoadOfflineDraft reads the locally stashed draft, nil when none
func (s *DraftService) LoadOfflineDraft() (*models.OfflineDraft, error) {
	blob, err := s.store.GetValue(database.KeyOfflineDraft)
	if err != nil {
		return nil, fmt.Errorf("could not read offline draft: %w", err)
	}
	if blob == "" {
		return nil, nil
	}

	var stash models.OfflineDraft
	if err := json.Unmarshal([]byte(blob), &stash); err != nil {
		return nil, fmt.Errorf("could not decode offline draft: %w", err)
	}
	return &stash, nil
}

// RecoverOfflineDraft restores a stashed draft into the live state and
// removes the stash. Returns false when there was nothing to recover.
func (s *DraftService) RecoverOfflineDraft() (bool, error) {
	stash, err := s.LoadOfflineDraft()
	if err != nil || stash == nil {
		return false, err
	}

	s.mu.Lock()
	s.customer = stash.Customer
	s.lines = append([]models.DraftLine(nil), stash.Items...)
	s.boxQty = stash.BoxQty
	s.discountType = stash.DiscountType
	s.discountAmount = stash.DiscountAmount
	s.paidAmount = stash.PaidAmount
	s.finalized = false
	s.phase = models.PhaseRecovered
	s.refreshProvisionalNumberLocked()
	s.broadcastLocked()
	s.mu.Unlock()

	if err := s.store.DeleteValue(database.KeyOfflineDraft); err != nil {
		s.logger.LogWarning("Could not clear recovered draft stash", err.Error())
	}
	return true, nil
}

// clearDraftStateLocked wipes the working draft. The confirmation
// banner fields are managed by the callers because Send keeps them and
// Cancel drops them.
func (s *DraftService) clearDraftStateLocked() {
	s.customer = nil
	s.lines = nil
	s.boxQty = "0"
	s.discountType = models.DiscountPercentage
	s.discountAmount = decimal.Zero
	s.paidAmount = decimal.Zero
	s.previousInvoiceID = nil
	s.invoiceNumber = "AUTO"
	s.provisionalNumber = false
	s.pendingRemoveItemID = nil
}

// Snapshot builds the read-only view pushed to customer displays
func (s *DraftService) Snapshot() models.DraftSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *DraftService) snapshotLocked() models.DraftSnapshot {
	name := ""
	if s.customer != nil {
		name = s.customer.DisplayName()
	}
	return models.DraftSnapshot{
		Phase:         s.phase,
		CustomerName:  name,
		Items:         append([]models.DraftLine(nil), s.lines...),
		Totals:        s.totalsLocked(),
		BoxQty:        s.boxQty,
		InvoiceNumber: s.displayNumberLocked(),
	}
}

func (s *DraftService) displayNumberLocked() string {
	if s.lastCreatedInvoiceNo != "" {
		return "PENDING: " + s.lastCreatedInvoiceNo
	}
	return s.invoiceNumber
}

func (s *DraftService) broadcastLocked() {
	if s.display == nil {
		return
	}
	s.display.PublishDraft(s.snapshotLocked())
}

func (s *DraftService) publishEventLocked(event string, payload map[string]interface{}) {
	if s.display == nil {
		return
	}
	s.display.PublishEvent(event, payload)
}

// ConfirmationQR renders the last sent invoice number as a QR code and
// returns it as a base64 PNG for the receipt panel. Empty when no
// invoice was sent this session.
func (s *DraftService) ConfirmationQR() (string, error) {
	s.mu.Lock()
	number := s.lastCreatedInvoiceNo
	s.mu.Unlock()

	if number == "" {
		return "", nil
	}

	png, err := qrcode.Encode(number, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("could not render invoice QR: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// apiMessage extracts the human-readable message from an API error
func apiMessage(err error) string {
	if apiErr, ok := err.(*api.Error); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
