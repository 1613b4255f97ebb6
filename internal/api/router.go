// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"custody-wallet/internal/api/handler"
	apimw "custody-wallet/internal/api/middleware"
)

// RouterConfig carries the handlers and settings NewRouter needs.
type RouterConfig struct {
	TransferHandler *handler.TransferHandler
	AdminHandler    *handler.AdminHandler
	Authenticator   *apimw.Authenticator
	AllowedOrigins  []string
	Logger          *slog.Logger
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)                       // Add a request ID to the context
	r.Use(middleware.RealIP)                          // Use the real IP address
	r.Use(apimw.NewStructuredLogger(cfg.Logger))      // Log HTTP requests
	r.Use(middleware.Recoverer)                       // Recover from panics and return 500
	r.Use(middleware.Timeout(handler.DefaultTimeout)) // Set a default timeout for requests
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(cfg.Authenticator.Middleware)

		// Wallet owner routes
		r.Route("/wallets/{walletID}", func(r chi.Router) {
			r.Get("/", cfg.TransferHandler.GetWallet)
			r.Post("/transfers", cfg.TransferHandler.InitiateTransfer)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", cfg.TransferHandler.ListTransactions)
			r.Get("/{transactionID}", cfg.TransferHandler.GetTransaction)
		})

		// Admin routes; the services enforce the admin capability
		r.Route("/admin", func(r chi.Router) {
			r.Get("/transactions", cfg.AdminHandler.ListTransactions)
			r.Get("/transactions/{transactionID}", cfg.AdminHandler.GetTransaction)
			r.Post("/transactions/{transactionID}/approve", cfg.AdminHandler.ApproveTransaction)
			r.Get("/payments", cfg.AdminHandler.ListPayments)
			r.Get("/payments/{paymentID}", cfg.AdminHandler.GetPayment)
			r.Get("/payment-summaries", cfg.AdminHandler.ListSummaries)
			r.Post("/payment-summaries", cfg.AdminHandler.GenerateSummary)
		})
	})

	return r
}
