// ABOUTME: Sync configuration storage at XDG paths with env overrides
// ABOUTME: Holds timezone, target calendar, and OAuth client credentials
package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// SyncConfig stores user-level synchronization settings.
type SyncConfig struct {
	TimeZone     string `json:"time_zone"`
	CalendarID   string `json:"calendar_id,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	AutoSync     bool   `json:"auto_sync"`
}

// SyncConfigDir returns the XDG-compliant directory for configuration.
func SyncConfigDir() string {
	return filepath.Join(xdg.DataHome, "calsync")
}

// SyncConfigPath returns the XDG-compliant path for the sync config file.
func SyncConfigPath() string {
	return filepath.Join(SyncConfigDir(), "sync-config.json")
}

// LoadSyncConfig loads the sync configuration from the XDG data directory.
// Returns a config with the default timezone if no file exists.
// Environment variables override file values:
// - CALSYNC_TIMEZONE
// - CALSYNC_CALENDAR_ID
// - CALSYNC_AUTO_SYNC.
func LoadSyncConfig() (*SyncConfig, error) {
	cfg := &SyncConfig{
		TimeZone: DefaultTimeZone,
	}

	f, err := os.Open(SyncConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open sync config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode sync config: %w", err)
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = DefaultTimeZone
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *SyncConfig) {
	if tz := os.Getenv("CALSYNC_TIMEZONE"); tz != "" {
		cfg.TimeZone = tz
	}
	if calID := os.Getenv("CALSYNC_CALENDAR_ID"); calID != "" {
		cfg.CalendarID = calID
	}
	if autoSync := os.Getenv("CALSYNC_AUTO_SYNC"); autoSync != "" {
		cfg.AutoSync = autoSync == "true" || autoSync == "1"
	}
}

// SaveSyncConfig saves the sync configuration with restricted permissions;
// the file may hold the OAuth client secret.
func SaveSyncConfig(cfg *SyncConfig) error {
	path := SyncConfigPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create sync config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create sync config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode sync config: %w", err)
	}

	return nil
}
