// ABOUTME: Badger-backed index mapping task ids to calendar event ids
// ABOUTME: Fast lookup cache; identity recovery from events stays the source of truth
package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/dgraph-io/badger/v3"
)

// Link records where a task's calendar event lives. The calendar service
// keeps no foreign key between the two records, so this index can go stale;
// callers fall back to scanning events for the embedded task id.
type Link struct {
	CalendarID string `json:"calendar_id"`
	EventID    string `json:"event_id"`
}

// LinkIndex is a persistent task-id to event-id mapping.
type LinkIndex struct {
	db *badger.DB
}

// DefaultLinkIndexPath returns the XDG-compliant link index directory.
func DefaultLinkIndexPath() string {
	return filepath.Join(xdg.DataHome, "calsync", "links")
}

// OpenLinkIndex opens (or creates) the link index at path.
func OpenLinkIndex(path string) (*LinkIndex, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open link index: %w", err)
	}
	return &LinkIndex{db: db}, nil
}

// Get returns the link for a task, or nil when none is recorded.
func (idx *LinkIndex) Get(taskID string) (*Link, error) {
	var link Link
	err := idx.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(taskID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &link)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read link for task %s: %w", taskID, err)
	}
	return &link, nil
}

// Set records the link for a task.
func (idx *LinkIndex) Set(taskID string, link Link) error {
	value, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("failed to encode link: %w", err)
	}
	err = idx.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(taskID), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write link for task %s: %w", taskID, err)
	}
	return nil
}

// Delete removes the link for a task. Deleting a missing link is a no-op.
func (idx *LinkIndex) Delete(taskID string) error {
	err := idx.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(taskID))
	})
	if err != nil {
		return fmt.Errorf("failed to delete link for task %s: %w", taskID, err)
	}
	return nil
}

// Close closes the underlying store.
func (idx *LinkIndex) Close() error {
	return idx.db.Close()
}
