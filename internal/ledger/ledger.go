// Package ledger implements the bookkeeping state manager: the account book
// collection, the active book selection, and the bounded activity log.
//
// Every mutation rebuilds the affected slices instead of editing them in
// place, so snapshots handed to callers stay stable, then persists the full
// state synchronously. Mutations that need an active book degrade to a no-op
// and report ErrNoActiveBook instead of failing hard.
package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/accountant-ai/bookkeeper/internal/domain"
	"github.com/accountant-ai/bookkeeper/internal/kvstore"
	"github.com/accountant-ai/bookkeeper/internal/state"
)

// ActivityLogCap bounds the activity log; the oldest entries are evicted
// once a batch add pushes the log past it.
const ActivityLogCap = 20

// ErrNoActiveBook reports that an operation needing an active account book
// ran while none was selected. The operation changed nothing.
var ErrNoActiveBook = errors.New("no active account book")

// Manager owns the in-memory bookkeeping state and the store it persists to.
// It is safe for concurrent use.
type Manager struct {
	mu    sync.Mutex
	store kvstore.Store
	log   zerolog.Logger
	snap  state.Snapshot
	now   func() time.Time
	newID func() string
}

// New creates a Manager seeded from the records in store.
func New(store kvstore.Store, log zerolog.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log,
		snap:  state.Load(store, log),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// AddAccountBook creates a new empty account book and appends it to the
// collection. If no book was active before the call, the new book becomes
// active. Returns the new book's id.
func (m *Manager) AddAccountBook(name, currency string, bookType domain.BookType) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	book := domain.AccountBook{
		ID:           m.newID(),
		Name:         name,
		Currency:     currency,
		Transactions: []domain.Transaction{},
		BookType:     bookType,
	}

	books := make([]domain.AccountBook, 0, len(m.snap.Books)+1)
	books = append(books, m.snap.Books...)
	m.snap.Books = append(books, book)

	if m.snap.ActiveBookID == "" {
		m.snap.ActiveBookID = book.ID
	}

	m.persist()
	return book.ID
}

// SelectAccountBook sets the active book id unconditionally; callers are
// expected to pass ids of known books.
func (m *Manager) SelectAccountBook(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap.ActiveBookID = id
	m.persist()
}

// AddTransactionsBatch assigns a fresh id to each input transaction, prepends
// the batch to the active book (newest first), and records one activity log
// entry, truncating the log to ActivityLogCap. Returns the transactions as
// stored, or ErrNoActiveBook.
func (m *Manager) AddTransactionsBatch(txs []domain.Transaction, source domain.BatchSource) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active, ok := m.activeBookLocked()
	if !ok {
		return nil, ErrNoActiveBook
	}

	added := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		tx.ID = m.newID()
		added[i] = tx
	}

	entry := domain.ActivityLogEntry{
		ID:           m.newID(),
		Timestamp:    m.now(),
		Source:       source,
		Transactions: added,
	}
	entries := make([]domain.ActivityLogEntry, 0, len(m.snap.ActivityLog)+1)
	entries = append(entries, entry)
	entries = append(entries, m.snap.ActivityLog...)
	if len(entries) > ActivityLogCap {
		entries = entries[:ActivityLogCap]
	}
	m.snap.ActivityLog = entries

	m.snap.Books = m.mapActiveBook(func(book domain.AccountBook) domain.AccountBook {
		merged := make([]domain.Transaction, 0, len(added)+len(book.Transactions))
		merged = append(merged, added...)
		merged = append(merged, book.Transactions...)
		book.Transactions = merged
		return book
	})

	m.log.Info().
		Str("book_id", active.ID).
		Str("source", string(source)).
		Int("count", len(added)).
		Msg("Transaction batch added")

	m.persist()
	return added, nil
}

// UpdateTransaction replaces the fields of the transaction with the given id
// in the active book, preserving the id. An unmatched id leaves the book
// unchanged; other books are never touched.
func (m *Manager) UpdateTransaction(id string, fields domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.activeBookLocked(); !ok {
		return ErrNoActiveBook
	}

	m.snap.Books = m.mapActiveBook(func(book domain.AccountBook) domain.AccountBook {
		txs := make([]domain.Transaction, len(book.Transactions))
		for i, tx := range book.Transactions {
			if tx.ID == id {
				fields.ID = id
				txs[i] = fields
			} else {
				txs[i] = tx
			}
		}
		book.Transactions = txs
		return book
	})

	m.persist()
	return nil
}

// DeleteTransaction removes the transaction with the given id from the
// active book, preserving the order of the rest. An unmatched id is a no-op.
func (m *Manager) DeleteTransaction(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.activeBookLocked(); !ok {
		return ErrNoActiveBook
	}

	m.snap.Books = m.mapActiveBook(func(book domain.AccountBook) domain.AccountBook {
		txs := make([]domain.Transaction, 0, len(book.Transactions))
		for _, tx := range book.Transactions {
			if tx.ID != id {
				txs = append(txs, tx)
			}
		}
		book.Transactions = txs
		return book
	})

	m.persist()
	return nil
}

// ClearActivityLog empties the activity log unconditionally.
func (m *Manager) ClearActivityLog() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap.ActivityLog = []domain.ActivityLogEntry{}
	m.persist()
}

// Books returns the account book collection in insertion order.
func (m *Manager) Books() []domain.AccountBook {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Books
}

// ActiveBookID returns the active book id, empty when none is active.
func (m *Manager) ActiveBookID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.ActiveBookID
}

// ActiveBook returns the active account book. The second result is false
// when no book is active or the active id matches no book, in which case the
// presentation layer shows its onboarding state.
func (m *Manager) ActiveBook() (domain.AccountBook, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeBookLocked()
}

// ActivityLog returns the batch-add history, newest first.
func (m *Manager) ActivityLog() []domain.ActivityLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.ActivityLog
}

// NeedsOnboarding reports whether there is no active book to show.
func (m *Manager) NeedsOnboarding() bool {
	_, ok := m.ActiveBook()
	return !ok
}

func (m *Manager) activeBookLocked() (domain.AccountBook, bool) {
	if m.snap.ActiveBookID == "" {
		return domain.AccountBook{}, false
	}
	for _, book := range m.snap.Books {
		if book.ID == m.snap.ActiveBookID {
			return book, true
		}
	}
	return domain.AccountBook{}, false
}

// mapActiveBook rebuilds the book collection, applying fn to the active book
// and copying every other book through unchanged.
func (m *Manager) mapActiveBook(fn func(domain.AccountBook) domain.AccountBook) []domain.AccountBook {
	books := make([]domain.AccountBook, len(m.snap.Books))
	for i, book := range m.snap.Books {
		if book.ID == m.snap.ActiveBookID {
			books[i] = fn(book)
		} else {
			books[i] = book
		}
	}
	return books
}

// persist writes the full snapshot. A write failure is logged and swallowed;
// the in-memory state remains authoritative for the session.
func (m *Manager) persist() {
	if err := state.Save(m.store, m.snap); err != nil {
		m.log.Error().Err(err).Msg("Failed to persist state")
	}
}
