// Package state loads and saves the three persisted bookkeeping records and
// normalizes older data shapes on the way in. In-memory state is the source
// of truth for a running session; storage failures are logged, never fatal.
package state

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/accountant-ai/bookkeeper/internal/domain"
	"github.com/accountant-ai/bookkeeper/internal/kvstore"
)

// Record keys in the key-value store.
const (
	KeyAccountBooks = "accountBooks"
	KeyActiveBookID = "activeAccountBookId"
	KeyActivityLog  = "activityLog"
)

// Snapshot is the full persisted application state: the book collection, the
// id of the active book (empty when none), and the activity log.
type Snapshot struct {
	Books        []domain.AccountBook
	ActiveBookID string
	ActivityLog  []domain.ActivityLogEntry
}

// Load reads the three records from the store. A missing or malformed record
// is logged and treated as absent without aborting the other two. Loaded
// books pass through MigrateBooks, and the stored active id is validated
// against the collection: an unknown or missing id falls back to the first
// book when any books exist.
func Load(store kvstore.Store, log zerolog.Logger) Snapshot {
	var snap Snapshot

	if data, ok := readRecord(store, KeyAccountBooks, log); ok {
		var books []domain.AccountBook
		if err := json.Unmarshal(data, &books); err != nil {
			log.Error().Err(err).Str("record", KeyAccountBooks).Msg("Failed to parse stored record")
		} else {
			snap.Books = MigrateBooks(books)
		}
	}

	if data, ok := readRecord(store, KeyActiveBookID, log); ok {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			log.Error().Err(err).Str("record", KeyActiveBookID).Msg("Failed to parse stored record")
		} else {
			snap.ActiveBookID = id
		}
	}
	snap.ActiveBookID = resolveActiveID(snap.Books, snap.ActiveBookID)

	if data, ok := readRecord(store, KeyActivityLog, log); ok {
		var entries []domain.ActivityLogEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			log.Error().Err(err).Str("record", KeyActivityLog).Msg("Failed to parse stored record")
		} else {
			snap.ActivityLog = entries
		}
	}

	return snap
}

// Save serializes and writes all three records. When no book is active the
// active-id record is removed rather than written. Returns the first error
// encountered; callers log it and keep the in-memory state regardless.
func Save(store kvstore.Store, snap Snapshot) error {
	books := snap.Books
	if books == nil {
		books = []domain.AccountBook{}
	}
	data, err := json.Marshal(books)
	if err != nil {
		return err
	}
	if err := store.Set(KeyAccountBooks, data); err != nil {
		return err
	}

	if snap.ActiveBookID == "" {
		if err := store.Delete(KeyActiveBookID); err != nil {
			return err
		}
	} else {
		data, err := json.Marshal(snap.ActiveBookID)
		if err != nil {
			return err
		}
		if err := store.Set(KeyActiveBookID, data); err != nil {
			return err
		}
	}

	entries := snap.ActivityLog
	if entries == nil {
		entries = []domain.ActivityLogEntry{}
	}
	data, err = json.Marshal(entries)
	if err != nil {
		return err
	}
	return store.Set(KeyActivityLog, data)
}

func readRecord(store kvstore.Store, key string, log zerolog.Logger) ([]byte, bool) {
	data, err := store.Get(key)
	if err == kvstore.ErrNotFound {
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("record", key).Msg("Failed to read stored record")
		return nil, false
	}
	return data, true
}

func resolveActiveID(books []domain.AccountBook, id string) string {
	for _, b := range books {
		if b.ID == id {
			return id
		}
	}
	if len(books) > 0 {
		return books[0].ID
	}
	return ""
}
