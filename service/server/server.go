package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hernandor/solpay/service/auth"
	"github.com/hernandor/solpay/service/config"
	"github.com/hernandor/solpay/service/db"
	"github.com/hernandor/solpay/service/events"
	"github.com/hernandor/solpay/service/metrics"
	"github.com/hernandor/solpay/service/solanapay"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server for the payment service.
type Server struct {
	addr      string
	cfg       *config.Config
	store     *db.Store
	verifier  *solanapay.Verifier
	issuer    *auth.TokenIssuer
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	server    *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The publisher is optional - if nil, payment events are not published.
// The metrics is optional - if nil, the metrics endpoint won't be available.
func New(addr string, cfg *config.Config, store *db.Store, verifier *solanapay.Verifier, issuer *auth.TokenIssuer, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:      addr,
		cfg:       cfg,
		store:     store,
		verifier:  verifier,
		issuer:    issuer,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Handler builds the full route table. Exposed separately from Start so
// tests can drive the server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	authed := auth.Middleware(s.issuer)

	// Auth routes
	mux.Handle("POST /api/v1/auth/register", handleRegister(s.store, s.logger))
	mux.Handle("POST /api/v1/auth/login", handleLogin(s.store, s.issuer, s.logger))
	mux.Handle("PUT /api/v1/auth/wallet-key", authed(handleUpdateWalletKey(s.store, s.logger)))

	// Product catalog routes
	mux.Handle("POST /api/v1/products", authed(handleCreateProduct(s.store, s.logger)))
	mux.Handle("GET /api/v1/products", handleListProducts(s.store, s.logger))
	mux.Handle("GET /api/v1/products/{id}", handleGetProduct(s.store, s.logger))
	mux.Handle("PUT /api/v1/products/{id}", authed(handleUpdateProduct(s.store, s.logger)))
	mux.Handle("DELETE /api/v1/products/{id}", authed(handleDeleteProduct(s.store, s.logger)))

	// Checkout routes
	mux.Handle("POST /api/v1/checkout/payment-url", authed(handlePaymentURL(s.store, s.publisher, s.cfg, s.metrics, s.logger)))
	mux.Handle("POST /api/v1/checkout/verify-payment", authed(handleVerifyPayment(s.store, s.verifier, s.publisher, s.metrics, s.logger)))
	mux.Handle("GET /api/v1/checkout/balance/{address}", authed(handleGetBalance(s.verifier, s.logger)))

	// Audit trail
	mux.Handle("GET /api/v1/audit", authed(handleListAudit(s.store, s.logger)))

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint (if metrics collector is configured)
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	var handler http.Handler = mux
	if s.metrics != nil {
		handler = metrics.HTTPMetricsMiddleware(s.metrics, "api")(handler)
	}
	return corsMiddleware(handler)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers to all responses and handles OPTIONS preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
