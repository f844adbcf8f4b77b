package main

import (
	"PosTerminal/app/api"
	"PosTerminal/app/config"
	"PosTerminal/app/database"
	"PosTerminal/app/services"
	"PosTerminal/app/websocket"
	"context"
	"embed"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed all:frontend/dist
var assets embed.FS

// App struct
type App struct {
	ctx             context.Context
	LoggerService   *services.LoggerService
	SessionService  *services.SessionService
	AuthService     *services.AuthService
	CustomerService *services.CustomerService
	StockService    *services.StockService
	DraftService    *services.DraftService
	HistoryService  *services.InvoiceHistoryService
	SheetsService   *services.SheetsService
	ReportScheduler *services.ReportScheduler
	LockService     *services.LockService
	DisplayServer   *websocket.Server
	store           *database.LocalStore
	cfg             *config.AppConfig
	isFirstRun      bool
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	runtime.WindowMaximise(a.ctx)

	if a.isFirstRun {
		return
	}

	// Customer display server
	if a.cfg != nil && a.cfg.Display.Enabled {
		port := a.cfg.Display.Port
		if port == "" {
			port = "8081"
		}
		a.LoggerService.LogInfo("Starting customer display server", "Port: "+port)
		a.DisplayServer = websocket.NewServer(":"+port, a.DraftService)
		a.DraftService.SetDisplay(a.DisplayServer)
		go func() {
			defer a.LoggerService.RecoverPanic()
			if err := a.DisplayServer.Start(); err != nil {
				a.LoggerService.LogError("Display server error", err)
			}
		}()
	}

	// Sheets report scheduler
	if a.ReportScheduler != nil {
		go func() {
			defer a.LoggerService.RecoverPanic()
			if err := a.ReportScheduler.Start(); err != nil {
				a.LoggerService.LogWarning("Report scheduler start error", err.Error())
			}
		}()
	}
}

// domReady is called after front-end resources have been loaded
func (a *App) domReady(ctx context.Context) {
}

// beforeClose is called when the application is about to quit,
// either by clicking the window close button or calling runtime.Quit.
func (a *App) beforeClose(ctx context.Context) (prevent bool) {
	a.LoggerService.LogInfo("Application closing")

	// Save any in-flight draft before the window goes away
	if a.DraftService != nil {
		a.DraftService.PersistActiveDraft(ctx, "unmount")
	}

	if a.ReportScheduler != nil {
		a.ReportScheduler.Stop()
	}

	if a.DisplayServer != nil {
		a.LoggerService.LogInfo("Stopping customer display server")
		a.DisplayServer.Stop()
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.LoggerService.LogError("Error closing local store", err)
		}
	}

	a.LoggerService.LogInfo("Application shutdown complete")
	return false
}

// shutdown is called at application termination
func (a *App) shutdown(ctx context.Context) {
}

// CompleteSetup saves the setup wizard's configuration and flips the
// first-run flag so the next start goes straight to login.
func (a *App) CompleteSetup(cfg config.AppConfig) error {
	if err := config.SaveConfig(&cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := config.MarkSetupComplete(); err != nil {
		return fmt.Errorf("failed to mark setup complete: %w", err)
	}
	a.cfg = &cfg
	a.isFirstRun = false
	return nil
}

// IsFirstRun reports whether the setup wizard should be shown
func (a *App) IsFirstRun() bool {
	return a.isFirstRun
}

// GetConfig returns the active configuration for the settings screen
func (a *App) GetConfig() *config.AppConfig {
	return a.cfg
}

func main() {
	// Initialize logger FIRST to catch all errors
	loggerService := services.NewLoggerService()
	if loggerService == nil {
		fmt.Println("CRITICAL: Logger service failed to initialize")
		os.Exit(1)
	}
	defer loggerService.Close()

	defer func() {
		if r := recover(); r != nil {
			loggerService.LogPanic(r)
			os.Exit(1)
		}
	}()

	loggerService.LogInfo("Application starting", "POS Terminal")

	// Load environment variables from .env file in project root (for development)
	if err := godotenv.Load(".env"); err != nil {
		loggerService.LogWarning(".env file not found, will use config.json if available")
	}

	app := NewApp()
	app.LoggerService = loggerService

	exists, err := config.ConfigExists()
	if err != nil {
		loggerService.LogWarning("Could not check configuration", err.Error())
	}

	var cfg *config.AppConfig
	if exists {
		cfg, err = config.LoadConfig()
		if err != nil {
			loggerService.LogError("Error loading config, setup wizard will be shown", err)
		}
	}
	if cfg == nil {
		cfg, err = config.CreateDefaultConfig()
		if err != nil {
			loggerService.LogError("Could not create default config", err)
			os.Exit(1)
		}
	}
	app.cfg = cfg
	app.isFirstRun = cfg.FirstRun

	store, err := database.Open(database.DefaultPath())
	if err != nil {
		loggerService.LogError("Could not open local store", err)
		os.Exit(1)
	}
	app.store = store

	// The API client pulls its bearer token from the auth service, which
	// itself talks through the client. The closure breaks the cycle.
	var authService *services.AuthService
	client := api.NewClient(cfg.API.BaseURL, func() string {
		if authService == nil {
			return ""
		}
		return authService.Token()
	})

	app.SessionService = services.NewSessionService()
	authService = services.NewAuthService(client, store, app.SessionService, loggerService)
	app.AuthService = authService
	app.CustomerService = services.NewCustomerService(client, authService, loggerService)
	app.StockService = services.NewStockService(client, store, loggerService, cfg.Outlet.ID)
	app.DraftService = services.NewDraftService(client, authService, store, loggerService)
	app.HistoryService = services.NewInvoiceHistoryService(client, app.CustomerService, loggerService)
	app.SheetsService = services.NewSheetsService(store, app.HistoryService, loggerService)
	app.ReportScheduler = services.NewReportScheduler(app.SheetsService, loggerService)
	app.LockService = services.NewLockService(store, loggerService)

	if app.isFirstRun {
		loggerService.LogInfo("First run detected - setup wizard will be shown")
	}

	bindList := []interface{}{
		app,
		app.LoggerService,
		app.SessionService,
		app.AuthService,
		app.CustomerService,
		app.StockService,
		app.DraftService,
		app.HistoryService,
		app.SheetsService,
		app.ReportScheduler,
		app.LockService,
	}

	err = wails.Run(&options.App{
		Title:  "POS Terminal",
		Width:  1400,
		Height: 900,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnDomReady:       app.domReady,
		OnBeforeClose:    app.beforeClose,
		OnShutdown:       app.shutdown,
		Bind:             bindList,
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
		},
		Menu: nil,
	})

	if err != nil {
		loggerService.LogError("Wails application error", err)
		println("Error:", err.Error())
	}
}
