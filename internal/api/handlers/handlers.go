// Package handlers implements the HTTP endpoints the presentation layer
// calls. Handlers never touch the store directly; every mutation goes
// through the ledger manager.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/accountant-ai/bookkeeper/internal/api/middleware"
	"github.com/accountant-ai/bookkeeper/internal/domain"
	"github.com/accountant-ai/bookkeeper/internal/ledger"
	"github.com/accountant-ai/bookkeeper/internal/report"
)

// BooksHandler handles account-book endpoints.
type BooksHandler struct {
	manager *ledger.Manager
	log     zerolog.Logger
}

// NewBooksHandler creates a new books handler.
func NewBooksHandler(manager *ledger.Manager, log zerolog.Logger) *BooksHandler {
	return &BooksHandler{manager: manager, log: log}
}

// ListBooks handles GET /api/books
func (h *BooksHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books := h.manager.Books()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"books":          books,
		"active_book_id": h.manager.ActiveBookID(),
		"count":          len(books),
	})
}

// CreateBook handles POST /api/books
func (h *BooksHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Currency string `json:"currency"`
		BookType string `json:"bookType"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if !report.ValidCurrency(req.Currency) {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown currency code")
		return
	}

	bookType := domain.BookTypeGeneral
	if req.BookType != "" {
		parsed, err := domain.ParseBookType(req.BookType)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Unknown book type")
			return
		}
		bookType = parsed
	}

	id := h.manager.AddAccountBook(req.Name, req.Currency, bookType)

	h.log.Info().
		Str("book_id", id).
		Str("name", req.Name).
		Str("currency", req.Currency).
		Msg("Account book created")

	middleware.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// SelectBook handles POST /api/books/select
func (h *BooksHandler) SelectBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Book ID is required")
		return
	}

	h.manager.SelectAccountBook(req.ID)
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"active_book_id": req.ID})
}

// GetActiveBook handles GET /api/books/active
func (h *BooksHandler) GetActiveBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.manager.ActiveBook()
	if !ok {
		middleware.WriteJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":      "No active account book",
			"onboarding": true,
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, book)
}

// GetSummary handles GET /api/summary
func (h *BooksHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	book, ok := h.manager.ActiveBook()
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "No active account book")
		return
	}

	s := report.Summarize(book.Transactions)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"book_id":  book.ID,
		"currency": book.Currency,
		"summary":  s,
		"display": map[string]string{
			"income":  report.FormatAmount(s.Income, book.Currency),
			"expense": report.FormatAmount(s.Expense, book.Currency),
			"net":     report.FormatAmount(s.Net, book.Currency),
		},
	})
}

// TransactionsHandler handles transaction endpoints.
type TransactionsHandler struct {
	manager *ledger.Manager
	log     zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(manager *ledger.Manager, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{manager: manager, log: log}
}

// AddBatch handles POST /api/transactions/batch
func (h *TransactionsHandler) AddBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source       string               `json:"source"`
		Transactions []domain.Transaction `json:"transactions"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	source, err := domain.ParseBatchSource(req.Source)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Source must be \"voice\" or \"receipt\"")
		return
	}
	if len(req.Transactions) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "At least one transaction is required")
		return
	}
	for _, tx := range req.Transactions {
		if _, err := domain.ParseTransactionType(string(tx.Type)); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction type must be \"income\" or \"expense\"")
			return
		}
	}

	added, err := h.manager.AddTransactionsBatch(req.Transactions, source)
	if errors.Is(err, ledger.ErrNoActiveBook) {
		middleware.WriteError(w, http.StatusConflict, "No active account book")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"transactions": added,
		"count":        len(added),
	})
}

// UpdateTransaction handles PUT /api/transactions/:id
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var fields domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := domain.ParseTransactionType(string(fields.Type)); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Transaction type must be \"income\" or \"expense\"")
		return
	}

	if err := h.manager.UpdateTransaction(id, fields); errors.Is(err, ledger.ErrNoActiveBook) {
		middleware.WriteError(w, http.StatusConflict, "No active account book")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "updated"})
}

// DeleteTransaction handles DELETE /api/transactions/:id
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.manager.DeleteTransaction(id); errors.Is(err, ledger.ErrNoActiveBook) {
		middleware.WriteError(w, http.StatusConflict, "No active account book")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// ActivityLogHandler handles activity-log endpoints.
type ActivityLogHandler struct {
	manager *ledger.Manager
	log     zerolog.Logger
}

// NewActivityLogHandler creates a new activity-log handler.
func NewActivityLogHandler(manager *ledger.Manager, log zerolog.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{manager: manager, log: log}
}

// GetLog handles GET /api/activity-log
func (h *ActivityLogHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	entries := h.manager.ActivityLog()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// ClearLog handles DELETE /api/activity-log
func (h *ActivityLogHandler) ClearLog(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearActivityLog()
	h.log.Info().Msg("Activity log cleared")

	w.WriteHeader(http.StatusNoContent)
}
