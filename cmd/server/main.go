package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/accountant-ai/bookkeeper/internal/api/handlers"
	"github.com/accountant-ai/bookkeeper/internal/api/middleware"
	"github.com/accountant-ai/bookkeeper/internal/kvstore"
	"github.com/accountant-ai/bookkeeper/internal/ledger"
	"github.com/accountant-ai/bookkeeper/internal/logger"
)

func main() {
	// Parse command-line flags
	var (
		port    = flag.String("port", "8080", "HTTP server port")
		dataDir = flag.String("data-dir", defaultDataDir(), "Directory for persisted records (or set BOOKKEEPER_DATA env)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	// Initialize persistence and the state manager
	store, err := kvstore.NewDir(*dataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open data directory")
	}

	manager := ledger.New(store, log)
	log.Info().
		Str("data_dir", *dataDir).
		Int("books", len(manager.Books())).
		Msg("State loaded")

	// Initialize handlers
	booksHandler := handlers.NewBooksHandler(manager, log)
	transactionsHandler := handlers.NewTransactionsHandler(manager, log)
	activityLogHandler := handlers.NewActivityLogHandler(manager, log)

	// Create router
	mux := http.NewServeMux()

	// Books endpoints
	mux.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			booksHandler.ListBooks(w, r)
		case http.MethodPost:
			booksHandler.CreateBook(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/books/select", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			booksHandler.SelectBook(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/books/active", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			booksHandler.GetActiveBook(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Transactions endpoints
	mux.HandleFunc("/api/transactions/batch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			transactionsHandler.AddBatch(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		// Extract transaction ID from path
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			transactionsHandler.UpdateTransaction(w, r, id)
		case http.MethodDelete:
			transactionsHandler.DeleteTransaction(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Activity log endpoints
	mux.HandleFunc("/api/activity-log", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			activityLogHandler.GetLog(w, r)
		case http.MethodDelete:
			activityLogHandler.ClearLog(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Summary endpoint
	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			booksHandler.GetSummary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:    ":" + *port,
		Handler: handler,
	}

	// Start server in background
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Server stopped")
}

func defaultDataDir() string {
	if dir := os.Getenv("BOOKKEEPER_DATA"); dir != "" {
		return dir
	}
	return "data"
}
