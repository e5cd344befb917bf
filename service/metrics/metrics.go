package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC Metrics
	solanaRPCCallsTotal   *prometheus.CounterVec
	solanaRPCCallDuration *prometheus.HistogramVec

	// Payment Metrics
	paymentURLsGeneratedTotal *prometheus.CounterVec
	qrCodesGeneratedTotal     *prometheus.CounterVec
	verificationsTotal        *prometheus.CounterVec
	balanceLookupsTotal       *prometheus.CounterVec

	// Database Metrics
	dbOperationsTotal *prometheus.CounterVec

	// HTTP Metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	// Event Publishing Metrics
	eventsPublishedTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		paymentURLsGeneratedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_urls_generated_total",
				Help: "Total number of Solana Pay URLs generated",
			},
			[]string{"status"},
		),
		qrCodesGeneratedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qr_codes_generated_total",
				Help: "Total number of payment QR codes generated",
			},
			[]string{"status"},
		),
		verificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_verifications_total",
				Help: "Total number of payment verification attempts by outcome",
			},
			[]string{"outcome"},
		),
		balanceLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balance_lookups_total",
				Help: "Total number of balance lookups by status",
			},
			[]string{"status"},
		),
		dbOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_operations_total",
				Help: "Total number of database operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"handler", "method"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by handler, method, and status class",
			},
			[]string{"handler", "method", "status"},
		),
		eventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_events_published_total",
				Help: "Total number of payment events published by type and status",
			},
			[]string{"type", "status"},
		),
	}
}

// RecordRPCCall records a Solana RPC call with its outcome and duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, durationSeconds float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordPaymentURLGenerated records a payment URL generation attempt.
func (m *Metrics) RecordPaymentURLGenerated(status string) {
	m.paymentURLsGeneratedTotal.WithLabelValues(status).Inc()
}

// RecordQRCodeGenerated records a QR code generation attempt.
func (m *Metrics) RecordQRCodeGenerated(status string) {
	m.qrCodesGeneratedTotal.WithLabelValues(status).Inc()
}

// RecordVerification records a payment verification attempt by outcome
// (verified, not_found, chain_error, invalid_signature, rpc_failure).
func (m *Metrics) RecordVerification(outcome string) {
	m.verificationsTotal.WithLabelValues(outcome).Inc()
}

// RecordBalanceLookup records a balance lookup by status (success, error).
func (m *Metrics) RecordBalanceLookup(status string) {
	m.balanceLookupsTotal.WithLabelValues(status).Inc()
}

// RecordDBOperation records a database operation by name and status.
func (m *Metrics) RecordDBOperation(operation, status string) {
	m.dbOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, durationSeconds float64) {
	m.httpRequestsTotal.WithLabelValues(handler, method, statusClass(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(handler, method).Observe(durationSeconds)
}

// RecordEventPublished records a payment event publish attempt.
func (m *Metrics) RecordEventPublished(eventType, status string) {
	m.eventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}

// statusClass buckets status codes into class labels (2xx, 4xx, 5xx) to keep
// label cardinality low.
func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
