package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/accountant-ai/bookkeeper/internal/domain"
	"github.com/accountant-ai/bookkeeper/internal/kvstore"
	"github.com/accountant-ai/bookkeeper/internal/ledger"
	"github.com/accountant-ai/bookkeeper/internal/logger"
)

func newTestManager() *ledger.Manager {
	return ledger.New(kvstore.NewMemory(), logger.Nop())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func TestCreateBook(t *testing.T) {
	m := newTestManager()
	h := NewBooksHandler(m, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/books",
		strings.NewReader(`{"name":"Cafe","currency":"USD","bookType":"SALES"}`))
	rec := httptest.NewRecorder()

	h.CreateBook(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want 201: %s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	if body["id"] == "" {
		t.Error("Expected a book id in the response")
	}

	books := m.Books()
	if len(books) != 1 || books[0].BookType != domain.BookTypeSales {
		t.Errorf("Manager books = %+v", books)
	}
}

func TestCreateBook_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"currency":"USD"}`},
		{"unknown currency", `{"name":"Cafe","currency":"NOPE"}`},
		{"unknown book type", `{"name":"Cafe","currency":"USD","bookType":"WEIRD"}`},
		{"invalid json", `{broken`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager()
			h := NewBooksHandler(m, logger.Nop())

			req := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.CreateBook(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Status = %d, want 400", rec.Code)
			}
			if len(m.Books()) != 0 {
				t.Error("Expected no book created on validation failure")
			}
		})
	}
}

func TestCreateBook_DefaultsToGeneral(t *testing.T) {
	m := newTestManager()
	h := NewBooksHandler(m, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/books",
		strings.NewReader(`{"name":"Cafe","currency":"USD"}`))
	rec := httptest.NewRecorder()

	h.CreateBook(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want 201", rec.Code)
	}
	if m.Books()[0].BookType != domain.BookTypeGeneral {
		t.Errorf("BookType = %q, want GENERAL", m.Books()[0].BookType)
	}
}

func TestGetActiveBook_Onboarding(t *testing.T) {
	h := NewBooksHandler(newTestManager(), logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/books/active", nil)
	rec := httptest.NewRecorder()

	h.GetActiveBook(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Status = %d, want 404", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["onboarding"] != true {
		t.Errorf("Expected onboarding flag, got %+v", body)
	}
}

func TestGetActiveBook(t *testing.T) {
	m := newTestManager()
	id := m.AddAccountBook("Cafe", "USD", domain.BookTypeGeneral)
	h := NewBooksHandler(m, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/books/active", nil)
	rec := httptest.NewRecorder()

	h.GetActiveBook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["id"] != id {
		t.Errorf("Active book id = %v, want %q", body["id"], id)
	}
}

func TestSelectBook(t *testing.T) {
	m := newTestManager()
	m.AddAccountBook("Cafe", "USD", domain.BookTypeGeneral)
	second := m.AddAccountBook("Bakery", "EUR", domain.BookTypeSales)
	h := NewBooksHandler(m, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/books/select",
		strings.NewReader(`{"id":"`+second+`"}`))
	rec := httptest.NewRecorder()

	h.SelectBook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if m.ActiveBookID() != second {
		t.Errorf("ActiveBookID = %q, want %q", m.ActiveBookID(), second)
	}
}

func TestAddBatch(t *testing.T) {
	m := newTestManager()
	m.AddAccountBook("Cafe", "USD", domain.BookTypeGeneral)
	h := NewTransactionsHandler(m, logger.Nop())

	payload := `{
		"source": "receipt",
		"transactions": [
			{"date":"2024-01-01T00:00:00Z","description":"Coffee sale","amount":5,"type":"income","category":"Sales"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/batch", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	h.AddBatch(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want 201: %s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}

	book, _ := m.ActiveBook()
	if len(book.Transactions) != 1 || book.Transactions[0].ID == "" {
		t.Errorf("Book transactions = %+v", book.Transactions)
	}
	if len(m.ActivityLog()) != 1 || m.ActivityLog()[0].Source != domain.SourceReceipt {
		t.Errorf("Activity log = %+v", m.ActivityLog())
	}
}

func TestAddBatch_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown source", `{"source":"email","transactions":[{"type":"income"}]}`},
		{"empty batch", `{"source":"voice","transactions":[]}`},
		{"unknown transaction type", `{"source":"voice","transactions":[{"type":"transfer"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager()
			m.AddAccountBook("Cafe", "USD", domain.BookTypeGeneral)
			h := NewTransactionsHandler(m, logger.Nop())

			req := httptest.NewRequest(http.MethodPost, "/api/transactions/batch", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.AddBatch(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestAddBatch_NoActiveBook(t *testing.T) {
	h := NewTransactionsHandler(newTestManager(), logger.Nop())

	payload := `{"source":"voice","transactions":[{"type":"income"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/batch", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	h.AddBatch(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Status = %d, want 409", rec.Code)
	}
}

func TestUpdateTransaction(t *testing.T) {
	m := newTestManager()
	m.AddAccountBook("Cafe", "USD", domain.BookTypeGeneral)
	added, _ := m.AddTransactionsBatch([]domain.Transaction{{Description: "coffee", Type: domain.Income}}, domain.SourceVoice)
	h := NewTransactionsHandler(m, logger.Nop())

	payload := `{"description":"espresso","amount":6,"type":"expense","category":"Food"}`
	req := httptest.NewRequest(http.MethodPut, "/api/transactions/"+added[0].ID, strings.NewReader(payload))
	rec := httptest.NewRecorder()

	h.UpdateTransaction(rec, req, added[0].ID)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body)
	}
	book, _ := m.ActiveBook()
	if book.Transactions[0].Description != "espresso" || book.Transactions[0].ID != added[0].ID {
		t.Errorf("Transaction after update = %+v", book.Transactions[0])
	}
}

func TestUpdateTransaction_NoActiveBook(t *testing.T) {
	h := NewTransactionsHandler(newTestManager(), logger.Nop())

	req := httptest.NewRequest(http.MethodPut, "/api/transactions/tx-1", strings.NewReader(`{"type":"income"}`))
	rec := httptest.NewRecorder()

	h.UpdateTransaction(rec, req, "tx-1")

	if rec.Code != http.StatusConflict {
		t.Errorf("Status = %d, want 409", rec.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	m := newTestManager()
	m.AddAccountBook("Cafe", "USD", domain.BookTypeGeneral)
	added, _ := m.AddTransactionsBatch([]domain.Transaction{{Description: "coffee", Type: domain.Income}}, domain.SourceVoice)
	h := NewTransactionsHandler(m, logger.Nop())

	req := httptest.NewRequest(http.MethodDelete, "/api/transactions/"+added[0].ID, nil)
	rec := httptest.NewRecorder()

	h.DeleteTransaction(rec, req, added[0].ID)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	book, _ := m.ActiveBook()
	if len(book.Transactions) != 0 {
		t.Errorf("Transactions = %+v, want empty", book.Transactions)
	}
}

func TestActivityLog_GetAndClear(t *testing.T) {
	m := newTestManager()
	m.AddAccountBook("Cafe", "USD", domain.BookTypeGeneral)
	m.AddTransactionsBatch([]domain.Transaction{{Description: "coffee", Type: domain.Income}}, domain.SourceVoice)
	h := NewActivityLogHandler(m, logger.Nop())

	rec := httptest.NewRecorder()
	h.GetLog(rec, httptest.NewRequest(http.MethodGet, "/api/activity-log", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GetLog status = %d, want 200", rec.Code)
	}
	if body := decodeBody(t, rec); body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}

	rec = httptest.NewRecorder()
	h.ClearLog(rec, httptest.NewRequest(http.MethodDelete, "/api/activity-log", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("ClearLog status = %d, want 204", rec.Code)
	}
	if len(m.ActivityLog()) != 0 {
		t.Error("Expected empty activity log after clear")
	}
}

func TestGetSummary(t *testing.T) {
	m := newTestManager()
	m.AddAccountBook("Cafe", "USD", domain.BookTypeGeneral)
	h := NewBooksHandler(m, logger.Nop())

	payload := `{
		"source": "receipt",
		"transactions": [
			{"date":"2024-01-01T00:00:00Z","description":"Coffee sale","amount":5,"type":"income","category":"Sales"},
			{"date":"2024-01-02T00:00:00Z","description":"Beans","amount":2,"type":"expense","category":"Supplies"}
		]
	}`
	th := NewTransactionsHandler(m, logger.Nop())
	th.AddBatch(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/transactions/batch", strings.NewReader(payload)))

	rec := httptest.NewRecorder()
	h.GetSummary(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	display, ok := body["display"].(map[string]interface{})
	if !ok {
		t.Fatalf("Missing display block: %+v", body)
	}
	if display["net"] != "$3.00" {
		t.Errorf("display.net = %v, want $3.00", display["net"])
	}
}

func TestGetSummary_NoActiveBook(t *testing.T) {
	h := NewBooksHandler(newTestManager(), logger.Nop())

	rec := httptest.NewRecorder()
	h.GetSummary(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", rec.Code)
	}
}
