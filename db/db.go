// ABOUTME: SQLite connection management for the task store
// ABOUTME: Resolves the XDG database path and applies the schema on open
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDatabasePath is where the task database lives unless the caller
// overrides it.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, "calsync", "calsync.db")
}

// OpenDatabase opens the task database at path, creating it and its parent
// directory as needed. An empty path resolves to DefaultDatabasePath. The
// schema is applied on every open.
func OpenDatabase(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultDatabasePath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection avoids SQLite database-locked errors
	database.SetMaxOpenConns(1)

	if err := InitSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}
