// ABOUTME: Tests for sync configuration management
// ABOUTME: Covers XDG path handling, persistence, defaults, and env overrides
package sync

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncConfigPath(t *testing.T) {
	path := SyncConfigPath()

	expectedBase := filepath.Join(xdg.DataHome, "calsync")
	assert.True(t, strings.HasPrefix(path, expectedBase), "path should be under XDG data home")
	assert.Equal(t, "sync-config.json", filepath.Base(path))
}

func TestLoadSyncConfig_NotFound(t *testing.T) {
	origHome := xdg.DataHome
	xdg.DataHome = t.TempDir()
	defer func() { xdg.DataHome = origHome }()

	cfg, err := LoadSyncConfig()
	require.NoError(t, err, "missing file should not be an error")
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultTimeZone, cfg.TimeZone, "should fall back to the default timezone")
	assert.Empty(t, cfg.CalendarID)
	assert.False(t, cfg.AutoSync)
}

func TestSaveAndLoadSyncConfig(t *testing.T) {
	origHome := xdg.DataHome
	xdg.DataHome = t.TempDir()
	defer func() { xdg.DataHome = origHome }()

	original := &SyncConfig{
		TimeZone:     "Europe/Madrid",
		CalendarID:   "work@example.com",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AutoSync:     true,
	}

	require.NoError(t, SaveSyncConfig(original))

	loaded, err := LoadSyncConfig()
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadSyncConfig_EnvOverrides(t *testing.T) {
	origHome := xdg.DataHome
	xdg.DataHome = t.TempDir()
	defer func() { xdg.DataHome = origHome }()

	require.NoError(t, SaveSyncConfig(&SyncConfig{
		TimeZone:   "Europe/Madrid",
		CalendarID: "work@example.com",
	}))

	t.Setenv("CALSYNC_TIMEZONE", "Asia/Tokyo")
	t.Setenv("CALSYNC_CALENDAR_ID", "personal@example.com")
	t.Setenv("CALSYNC_AUTO_SYNC", "true")

	cfg, err := LoadSyncConfig()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Tokyo", cfg.TimeZone)
	assert.Equal(t, "personal@example.com", cfg.CalendarID)
	assert.True(t, cfg.AutoSync)
}

func TestLoadSyncConfig_EmptyTimeZoneGetsDefault(t *testing.T) {
	origHome := xdg.DataHome
	xdg.DataHome = t.TempDir()
	defer func() { xdg.DataHome = origHome }()

	require.NoError(t, SaveSyncConfig(&SyncConfig{CalendarID: "work@example.com"}))

	cfg, err := LoadSyncConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeZone, cfg.TimeZone)
}
