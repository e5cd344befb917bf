package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hernandor/solpay/service/auth"
	"github.com/hernandor/solpay/service/config"
	"github.com/hernandor/solpay/service/db"
	"github.com/hernandor/solpay/service/events"
	"github.com/hernandor/solpay/service/metrics"
	"github.com/hernandor/solpay/service/solanapay"
)

// handlePaymentURL returns a handler that builds a Solana Pay URL for a
// checkout and optionally renders it as a QR code data URI.
// POST /api/v1/checkout/payment-url
func handlePaymentURL(store *db.Store, publisher events.Publisher, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := auth.UsernameFromContext(r.Context())
		if !ok {
			writeError(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Recipient string  `json:"recipient"`
			Amount    float64 `json:"amount"`
			SPLToken  string  `json:"spl_token"`
			Reference string  `json:"reference"`
			Label     string  `json:"label"`
			Message   string  `json:"message"`
			Memo      string  `json:"memo"`
			ProductID int64   `json:"product_id"`
			QRCode    bool    `json:"qr_code"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		// Fall back to the configured merchant wallet when the request
		// does not name a recipient.
		if req.Recipient == "" {
			req.Recipient = cfg.MerchantWallet
		}

		// A product-backed request is a checkout session: the catalog entry
		// supplies the amount and label unless the request overrides them.
		var product *db.Product
		if req.ProductID > 0 {
			var err error
			product, err = store.GetProduct(r.Context(), req.ProductID)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					writeError(w, "product not found", http.StatusNotFound)
					return
				}
				logger.Error("failed to load product", "product_id", req.ProductID, "error", err)
				writeError(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if req.Amount <= 0 {
				req.Amount = product.Price
			}
			if req.Label == "" {
				req.Label = product.Name
			}
		}

		for _, field := range []struct{ name, value string }{
			{"label", req.Label},
			{"message", req.Message},
			{"memo", req.Memo},
		} {
			if err := validateField(field.name, field.value); err != nil {
				writeError(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		paymentURL, err := solanapay.BuildPaymentURL(solanapay.PaymentRequest{
			Recipient: req.Recipient,
			Amount:    req.Amount,
			SPLToken:  req.SPLToken,
			Reference: req.Reference,
			Label:     req.Label,
			Message:   req.Message,
			Memo:      req.Memo,
		})
		if err != nil {
			if errors.Is(err, solanapay.ErrInvalidAddress) {
				if m != nil {
					m.RecordPaymentURLGenerated("invalid_address")
				}
				writeError(w, "invalid recipient: not a base58 Solana address", http.StatusBadRequest)
				return
			}
			logger.Error("failed to build payment URL", "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if m != nil {
			m.RecordPaymentURLGenerated("ok")
		}

		resp := map[string]string{
			"payment_url": paymentURL,
		}

		if req.QRCode {
			qr, err := solanapay.EncodeQR(paymentURL)
			if err != nil {
				if errors.Is(err, solanapay.ErrPayloadTooLarge) {
					if m != nil {
						m.RecordQRCodeGenerated("too_large")
					}
					writeError(w, "payment URL too large to encode as QR code", http.StatusUnprocessableEntity)
					return
				}
				logger.Error("failed to encode QR code", "error", err)
				writeError(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if m != nil {
				m.RecordQRCodeGenerated("ok")
			}
			resp["qr_code"] = qr
		}

		if product != nil {
			recordAudit(r, store, m, logger, db.AuditCheckoutSession, map[string]interface{}{
				"product_id": product.ID,
				"product":    product.Name,
				"recipient":  req.Recipient,
				"amount":     req.Amount,
				"url":        paymentURL,
			}, username)
		} else {
			recordAudit(r, store, m, logger, db.AuditPaymentURLGenerated, map[string]interface{}{
				"recipient": req.Recipient,
				"amount":    req.Amount,
				"url":       paymentURL,
			}, username)
		}

		publishEvent(r, publisher, m, logger, &events.PaymentEvent{
			Type:        events.EventPaymentURLGenerated,
			Username:    username,
			Recipient:   req.Recipient,
			Amount:      strconv.FormatFloat(req.Amount, 'f', -1, 64),
			PaymentURL:  paymentURL,
			PublishedAt: time.Now().UTC(),
		})

		logger.Info("payment URL generated", "username", username, "recipient", req.Recipient)
		writeJSON(w, resp, http.StatusOK)
	})
}

// handleVerifyPayment returns a handler that checks a transaction signature
// on chain. The response is always HTTP 200 with a verified flag; lookup and
// transport failures are reported in the body, not as HTTP errors.
// POST /api/v1/checkout/verify-payment
func handleVerifyPayment(store *db.Store, verifier *solanapay.Verifier, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := auth.UsernameFromContext(r.Context())
		if !ok {
			writeError(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Signature         string  `json:"signature"`
			ExpectedRecipient string  `json:"expected_recipient"`
			ExpectedAmount    float64 `json:"expected_amount"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		result := verifier.Verify(r.Context(), req.Signature, solanapay.VerifyOptions{
			ExpectedRecipient: req.ExpectedRecipient,
			ExpectedAmount:    req.ExpectedAmount,
		})

		recordAudit(r, store, m, logger, db.AuditPaymentVerification, map[string]interface{}{
			"signature": req.Signature,
			"verified":  result.Verified,
			"error":     result.Error,
		}, username)

		if result.Verified {
			publishEvent(r, publisher, m, logger, &events.PaymentEvent{
				Type:        events.EventPaymentVerified,
				Username:    username,
				Signature:   result.Signature,
				Verified:    true,
				Slot:        result.Slot,
				PublishedAt: time.Now().UTC(),
			})
		}

		writeJSON(w, result, http.StatusOK)
	})
}

// handleGetBalance returns a handler that looks up an address's SOL balance.
// The balance field is null when the lookup fails for any reason.
// GET /api/v1/checkout/balance/{address}
func handleGetBalance(verifier *solanapay.Verifier, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := r.PathValue("address")

		balance := verifier.GetBalance(r.Context(), address)

		writeJSON(w, map[string]interface{}{
			"address": address,
			"balance": balance,
		}, http.StatusOK)
	})
}

// handleListAudit returns a handler that lists the caller's audit trail,
// newest first.
// GET /api/v1/audit?limit={n}&offset={n}
func handleListAudit(store *db.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := auth.UsernameFromContext(r.Context())
		if !ok {
			writeError(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit, offset, err := parsePagination(r)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		records, err := store.ListAuditRecords(r.Context(), db.ListAuditRecordsParams{
			Username: username,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			logger.Error("failed to list audit records", "username", username, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		type auditResponse struct {
			ID        string `json:"id"`
			Type      string `json:"type"`
			Details   string `json:"details"`
			CreatedAt string `json:"created_at"`
		}
		resp := make([]auditResponse, len(records))
		for i, rec := range records {
			resp[i] = auditResponse{
				ID:        rec.ID.String(),
				Type:      rec.Type,
				Details:   rec.Details,
				CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
			}
		}

		writeJSON(w, map[string]interface{}{
			"records": resp,
		}, http.StatusOK)
	})
}

// recordAudit appends an audit record. Audit failures are logged but never
// fail the request they describe.
func recordAudit(r *http.Request, store *db.Store, m *metrics.Metrics, logger *slog.Logger, auditType string, details map[string]interface{}, username string) {
	if store == nil {
		return
	}
	payload, err := json.Marshal(details)
	if err != nil {
		logger.Error("failed to marshal audit details", "type", auditType, "error", err)
		return
	}
	_, err = store.CreateAuditRecord(r.Context(), db.CreateAuditRecordParams{
		Type:     auditType,
		Details:  string(payload),
		Username: username,
	})
	if m != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.RecordDBOperation("create_audit_record", status)
	}
	if err != nil {
		logger.Error("failed to record audit entry", "type", auditType, "username", username, "error", err)
	}
}

// publishEvent publishes a payment event. Publish failures are logged but
// never fail the request.
func publishEvent(r *http.Request, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger, event *events.PaymentEvent) {
	if publisher == nil {
		return
	}
	err := publisher.PublishPaymentEvent(r.Context(), event)
	if m != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.RecordEventPublished(event.Type, status)
	}
	if err != nil {
		logger.Error("failed to publish payment event", "type", event.Type, "error", err)
	}
}
