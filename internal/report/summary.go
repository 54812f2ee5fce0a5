// Package report computes summaries over a book's transactions.
package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/accountant-ai/bookkeeper/internal/domain"
)

// Summary aggregates a transaction list: income and expense totals, their
// net, the tax recorded across entries, and the slice of expenses flagged as
// savings.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	Tax     decimal.Decimal `json:"tax"`
	Savings decimal.Decimal `json:"savings"`
	Count   int             `json:"count"`
}

// Summarize computes the Summary for a list of transactions.
func Summarize(txs []domain.Transaction) Summary {
	s := Summary{Count: len(txs)}
	for _, tx := range txs {
		switch tx.Type {
		case domain.Income:
			s.Income = s.Income.Add(tx.Amount)
		case domain.Expense:
			s.Expense = s.Expense.Add(tx.Amount)
		}
		if tx.TaxAmount != nil {
			s.Tax = s.Tax.Add(*tx.TaxAmount)
		}
		if tx.IsSaving {
			s.Savings = s.Savings.Add(tx.Amount)
		}
	}
	s.Net = s.Income.Sub(s.Expense)
	return s
}

// ValidCurrency reports whether code is a known ISO 4217 currency code.
func ValidCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// FormatAmount renders an amount in the book's currency, e.g. "$12.50" for
// USD. An unknown currency code falls back to "<amount> <code>".
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.String() + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, currency).Display()
}
