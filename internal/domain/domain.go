// Package domain holds the bookkeeping entities shared by the state core,
// the API layer, and the CLI. The JSON tags define the persisted record
// layout, so changing them requires a load-time migration.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts persist as plain JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType classifies an entry as money in or money out.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// ParseTransactionType parses a string into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// BookType classifies an account book as a general-purpose, sales-focused,
// or purchase-focused ledger.
type BookType string

const (
	BookTypeGeneral  BookType = "GENERAL"
	BookTypeSales    BookType = "SALES"
	BookTypePurchase BookType = "PURCHASE"
)

// ParseBookType parses a string into a BookType.
func ParseBookType(s string) (BookType, error) {
	switch BookType(s) {
	case BookTypeGeneral:
		return BookTypeGeneral, nil
	case BookTypeSales:
		return BookTypeSales, nil
	case BookTypePurchase:
		return BookTypePurchase, nil
	default:
		return "", fmt.Errorf("unknown book type: %q", s)
	}
}

// BatchSource tags where a batch of transactions came from.
type BatchSource string

const (
	SourceVoice   BatchSource = "voice"
	SourceReceipt BatchSource = "receipt"
)

// ParseBatchSource parses a string into a BatchSource.
func ParseBatchSource(s string) (BatchSource, error) {
	switch BatchSource(s) {
	case SourceVoice:
		return SourceVoice, nil
	case SourceReceipt:
		return SourceReceipt, nil
	default:
		return "", fmt.Errorf("unknown batch source: %q", s)
	}
}

// Transaction is a single income or expense entry. Amount is the total value;
// the taxable/tax split is optional and caller-determined, the core does not
// validate that the parts sum to the total.
type Transaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`

	CustomerName    string           `json:"customerName,omitempty"`
	CustomerAddress string           `json:"customerAddress,omitempty"`
	TaxableAmount   *decimal.Decimal `json:"taxableAmount,omitempty"`
	TaxAmount       *decimal.Decimal `json:"gstAmount,omitempty"`
	IsSaving        bool             `json:"isSaving,omitempty"`
}

// AccountBook is a named ledger with its own currency and transaction list.
// Transactions are ordered most-recently-added first and are owned
// exclusively by their book.
type AccountBook struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Transactions []Transaction `json:"transactions"`
	BookType     BookType      `json:"bookType"`
}

// ActivityLogEntry records one batch add: when it happened, where the batch
// came from, and the transactions it carried. It does not record the owning
// book; book association is implicit by recency.
type ActivityLogEntry struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Source       BatchSource   `json:"source"`
	Transactions []Transaction `json:"transactions"`
}
