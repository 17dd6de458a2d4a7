// ABOUTME: OAuth configuration and token management for Google Calendar
// ABOUTME: Handles OAuth flow config, token storage at XDG paths, and auto-refresh
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// CalendarScope grants read/write access to the user's calendars, which
// create/update/delete against the events collection requires.
const CalendarScope = "https://www.googleapis.com/auth/calendar"

// NewOAuthConfig creates the OAuth2 config for the Google Calendar API.
// Client credentials come from the environment, falling back to values
// stored in the sync config by `calsync auth init`.
func NewOAuthConfig() *oauth2.Config {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")

	if clientID == "" || clientSecret == "" {
		if cfg, err := LoadSyncConfig(); err == nil {
			if clientID == "" {
				clientID = cfg.ClientID
			}
			if clientSecret == "" {
				clientSecret = cfg.ClientSecret
			}
		}
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  "http://localhost:8080/oauth/callback",
		Scopes:       []string{CalendarScope},
		Endpoint:     google.Endpoint,
	}
}

// TokenPath returns the XDG-compliant path for the stored OAuth token.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "calsync", "google-credentials.json")
}

// SaveToken persists an OAuth token with restricted permissions.
func SaveToken(token *oauth2.Token) error {
	path := TokenPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

// LoadToken loads the stored OAuth token, or nil when none exists.
func LoadToken() (*oauth2.Token, error) {
	f, err := os.Open(TokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return &token, nil
}

// GetAccessToken returns the stored token, or nil when the user has not
// authenticated yet. Refresh is handled transparently by the oauth2 client.
func GetAccessToken() *oauth2.Token {
	token, err := LoadToken()
	if err != nil {
		return nil
	}
	return token
}

// HasCalendarPermissions reports whether a usable token is on disk.
func HasCalendarPermissions() bool {
	token, err := LoadToken()
	return err == nil && token != nil && token.RefreshToken != ""
}

// GetClient validates OAuth credentials and returns the config for the
// authorization flow.
func GetClient(ctx context.Context) (*oauth2.Config, error) {
	config := NewOAuthConfig()

	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or run 'calsync auth init'")
	}

	return config, nil
}
