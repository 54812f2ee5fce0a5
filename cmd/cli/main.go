package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/accountant-ai/bookkeeper/internal/domain"
	"github.com/accountant-ai/bookkeeper/internal/kvstore"
	"github.com/accountant-ai/bookkeeper/internal/ledger"
	"github.com/accountant-ai/bookkeeper/internal/logger"
	"github.com/accountant-ai/bookkeeper/internal/report"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "books":
		runBooks(log)
	case "add-book":
		runAddBook(log)
	case "select":
		runSelect(log)
	case "add":
		runAdd(log)
	case "summary":
		runSummary(log)
	case "log":
		runLog(log)
	case "clear-log":
		runClearLog(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Bookkeeper CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  books      List account books")
	fmt.Println("  add-book   Create a new account book")
	fmt.Println("  select     Select the active account book")
	fmt.Println("  add        Add a transaction to the active book")
	fmt.Println("  summary    Show totals for the active book")
	fmt.Println("  log        Show the recent batch-add activity")
	fmt.Println("  clear-log  Clear the activity log")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func openManager(fs *flag.FlagSet, log zerolog.Logger) *ledger.Manager {
	dataDir := fs.Lookup("data").Value.String()
	store, err := kvstore.NewDir(dataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open data directory")
	}
	return ledger.New(store, log)
}

func dataFlag(fs *flag.FlagSet) {
	dir := os.Getenv("BOOKKEEPER_DATA")
	if dir == "" {
		dir = "data"
	}
	fs.String("data", dir, "Directory for persisted records")
}

func runBooks(log zerolog.Logger) {
	fs := flag.NewFlagSet("books", flag.ExitOnError)
	dataFlag(fs)
	fs.Parse(os.Args[2:])

	m := openManager(fs, log)
	books := m.Books()
	if len(books) == 0 {
		fmt.Println("No account books yet. Create one with 'cli add-book'.")
		return
	}

	activeID := m.ActiveBookID()
	for _, b := range books {
		marker := " "
		if b.ID == activeID {
			marker = "*"
		}
		fmt.Printf("%s %s  %-20s %s  %-8s %d transactions\n", marker, b.ID, b.Name, b.Currency, b.BookType, len(b.Transactions))
	}
}

func runAddBook(log zerolog.Logger) {
	fs := flag.NewFlagSet("add-book", flag.ExitOnError)
	dataFlag(fs)
	name := fs.String("name", "", "Book display name")
	currency := fs.String("currency", "USD", "ISO 4217 currency code")
	bookType := fs.String("type", "GENERAL", "Book type: GENERAL, SALES or PURCHASE")
	fs.Parse(os.Args[2:])

	if *name == "" {
		log.Fatal().Msg("Error: --name is required")
	}
	if !report.ValidCurrency(*currency) {
		log.Fatal().Str("currency", *currency).Msg("Error: unknown currency code")
	}
	bt, err := domain.ParseBookType(*bookType)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid book type")
	}

	m := openManager(fs, log)
	id := m.AddAccountBook(*name, *currency, bt)
	fmt.Printf("Created account book %s\n", id)
}

func runSelect(log zerolog.Logger) {
	fs := flag.NewFlagSet("select", flag.ExitOnError)
	dataFlag(fs)
	id := fs.String("id", "", "Account book ID")
	fs.Parse(os.Args[2:])

	if *id == "" {
		log.Fatal().Msg("Error: --id is required")
	}

	m := openManager(fs, log)
	m.SelectAccountBook(*id)
	fmt.Printf("Active book is now %s\n", *id)
}

func runAdd(log zerolog.Logger) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	dataFlag(fs)
	desc := fs.String("desc", "", "Transaction description")
	amount := fs.String("amount", "", "Total amount, e.g. 12.50")
	txType := fs.String("type", "expense", "Transaction type: income or expense")
	category := fs.String("category", "", "Category label")
	date := fs.String("date", time.Now().Format("2006-01-02"), "Transaction date (YYYY-MM-DD)")
	source := fs.String("source", "voice", "Batch source: voice or receipt")
	fs.Parse(os.Args[2:])

	if *desc == "" || *amount == "" {
		log.Fatal().Msg("Error: --desc and --amount are required")
	}
	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid amount")
	}
	tt, err := domain.ParseTransactionType(*txType)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid transaction type")
	}
	day, err := time.Parse("2006-01-02", *date)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid date")
	}
	src, err := domain.ParseBatchSource(*source)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid source")
	}

	m := openManager(fs, log)
	added, err := m.AddTransactionsBatch([]domain.Transaction{{
		Date:        day,
		Description: *desc,
		Amount:      amt,
		Type:        tt,
		Category:    *category,
	}}, src)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: create and select an account book first")
	}

	fmt.Printf("Added transaction %s\n", added[0].ID)
}

func runSummary(log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	dataFlag(fs)
	fs.Parse(os.Args[2:])

	m := openManager(fs, log)
	book, ok := m.ActiveBook()
	if !ok {
		fmt.Println("No active account book.")
		os.Exit(1)
	}

	s := report.Summarize(book.Transactions)
	fmt.Printf("%s (%s, %s)\n", book.Name, book.Currency, book.BookType)
	fmt.Printf("  Income:   %s\n", report.FormatAmount(s.Income, book.Currency))
	fmt.Printf("  Expense:  %s\n", report.FormatAmount(s.Expense, book.Currency))
	fmt.Printf("  Net:      %s\n", report.FormatAmount(s.Net, book.Currency))
	fmt.Printf("  Tax:      %s\n", report.FormatAmount(s.Tax, book.Currency))
	fmt.Printf("  Savings:  %s\n", report.FormatAmount(s.Savings, book.Currency))
	fmt.Printf("  Entries:  %d\n", s.Count)
}

func runLog(log zerolog.Logger) {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	dataFlag(fs)
	fs.Parse(os.Args[2:])

	m := openManager(fs, log)
	entries := m.ActivityLog()
	if len(entries) == 0 {
		fmt.Println("Activity log is empty.")
		return
	}

	for _, e := range entries {
		fmt.Printf("%s  %-7s %d transactions\n", e.Timestamp.Format(time.RFC3339), e.Source, len(e.Transactions))
	}
}

func runClearLog(log zerolog.Logger) {
	fs := flag.NewFlagSet("clear-log", flag.ExitOnError)
	dataFlag(fs)
	fs.Parse(os.Args[2:])

	m := openManager(fs, log)
	m.ClearActivityLog()
	fmt.Println("Activity log cleared.")
}
