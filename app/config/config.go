package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"PosTerminal/app/security"
)

// AppConfig holds all terminal configuration
type AppConfig struct {
	// ERP API connection
	API APIConfig `json:"api"`

	// Outlet this terminal sells from
	Outlet OutletConfig `json:"outlet"`

	// Customer display settings
	Display DisplayConfig `json:"display"`

	// System settings
	System SystemConfig `json:"system"`

	// First run flag
	FirstRun bool `json:"first_run"`
}

// APIConfig holds the external ERP API settings
type APIConfig struct {
	// BaseURL may or may not carry a trailing slash or the /api segment;
	// the API client normalizes it either way.
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
}

// OutletConfig identifies the stock location this terminal is assigned to
type OutletConfig struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DisplayConfig holds customer display server settings
type DisplayConfig struct {
	Enabled bool   `json:"enabled"`
	Port    string `json:"port"`
}

// SystemConfig holds system settings
type SystemConfig struct {
	DataPath string `json:"data_path"`
	Language string `json:"language"`
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		appData = filepath.Join(homeDir, "AppData", "Roaming")
	}

	configDir := filepath.Join(appData, "PosTerminal")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("could not create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads configuration from config.json and decrypts sensitive fields.
// Environment variables (loaded from .env in development) take priority over
// the stored values so a terminal can be repointed without editing config.json.
func LoadConfig() (*AppConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	if err := cfg.decryptSensitiveFields(); err != nil {
		return nil, fmt.Errorf("could not decrypt sensitive fields: %w", err)
	}

	cfg.applyEnvOverrides()

	return &cfg, nil
}

// SaveConfig saves configuration to config.json after encrypting sensitive fields
func SaveConfig(cfg *AppConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	cfgCopy := *cfg
	if err := cfgCopy.encryptSensitiveFields(); err != nil {
		return fmt.Errorf("could not encrypt sensitive fields: %w", err)
	}

	data, err := json.MarshalIndent(&cfgCopy, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("could not write config file: %w", err)
	}

	return nil
}

// ConfigExists checks if config file exists
func ConfigExists() (bool, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// CreateDefaultConfig creates a default configuration file
func CreateDefaultConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		API: APIConfig{
			BaseURL: "",
		},
		Outlet: OutletConfig{
			ID: 1,
		},
		Display: DisplayConfig{
			Enabled: true,
			Port:    "8081",
		},
		System: SystemConfig{
			Language: "en",
		},
		FirstRun: true,
	}

	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MarkSetupComplete marks the first run as complete
func MarkSetupComplete() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	cfg.FirstRun = false
	return SaveConfig(cfg)
}

// applyEnvOverrides lets environment variables win over stored values
func (cfg *AppConfig) applyEnvOverrides() {
	if v := os.Getenv("POS_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("DISPLAY_PORT"); v != "" {
		cfg.Display.Port = v
	}
	if v := os.Getenv("OUTLET_ID"); v != "" {
		var id int
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil && id > 0 {
			cfg.Outlet.ID = id
		}
	}
}

// encryptSensitiveFields encrypts sensitive configuration fields
func (cfg *AppConfig) encryptSensitiveFields() error {
	var err error

	if cfg.API.APIKey != "" {
		cfg.API.APIKey, err = security.Encrypt(cfg.API.APIKey)
		if err != nil {
			return fmt.Errorf("could not encrypt API key: %w", err)
		}
	}

	return nil
}

// decryptSensitiveFields decrypts sensitive configuration fields.
// A field that fails to decrypt is left as-is so plain-text development
// configs keep working.
func (cfg *AppConfig) decryptSensitiveFields() error {
	if cfg.API.APIKey != "" {
		decrypted, err := security.Decrypt(cfg.API.APIKey)
		if err != nil {
			decrypted = cfg.API.APIKey
		}
		cfg.API.APIKey = decrypted
	}

	return nil
}
