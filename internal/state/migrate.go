package state

import "github.com/accountant-ai/bookkeeper/internal/domain"

// MigrateBooks normalizes books loaded from storage that predate the
// bookType attribute: a book with an empty bookType becomes GENERAL, a
// present value is preserved. Pure and idempotent.
func MigrateBooks(books []domain.AccountBook) []domain.AccountBook {
	migrated := make([]domain.AccountBook, len(books))
	for i, book := range books {
		if book.BookType == "" {
			book.BookType = domain.BookTypeGeneral
		}
		migrated[i] = book
	}
	return migrated
}
