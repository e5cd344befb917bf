package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Audit record types written by the checkout layer.
const (
	AuditPaymentURLGenerated = "PAYMENT_URL_GENERATED"
	AuditPaymentVerification = "PAYMENT_VERIFICATION"
	AuditCheckoutSession     = "CHECKOUT_SESSION"
)

// AuditRecord is an append-only trail entry for payment operations.
// The payment component itself never persists verification results; callers
// record them here for bookkeeping.
type AuditRecord struct {
	ID        uuid.UUID
	Type      string
	Details   string
	Username  string
	CreatedAt time.Time
}

// CreateAuditRecordParams contains the parameters for creating an audit record.
type CreateAuditRecordParams struct {
	Type     string
	Details  string
	Username string
}

// ListAuditRecordsParams contains pagination parameters.
type ListAuditRecordsParams struct {
	Username string
	Limit    int32
	Offset   int32
}

// CreateAuditRecord appends a new audit record.
func (s *Store) CreateAuditRecord(ctx context.Context, params CreateAuditRecordParams) (*AuditRecord, error) {
	query := `
		INSERT INTO audit_records (id, type, details, username)
		VALUES ($1, $2, $3, $4)
		RETURNING id, type, details, username, created_at
	`

	var r AuditRecord
	err := s.pool.QueryRow(ctx, query,
		uuid.New(), params.Type, params.Details, params.Username,
	).Scan(&r.ID, &r.Type, &r.Details, &r.Username, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert audit record: %w", err)
	}

	return &r, nil
}

// ListAuditRecords retrieves audit records for a user, newest first.
func (s *Store) ListAuditRecords(ctx context.Context, params ListAuditRecordsParams) ([]*AuditRecord, error) {
	query := `
		SELECT id, type, details, username, created_at
		FROM audit_records
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, query, params.Username, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var records []*AuditRecord
	for rows.Next() {
		var r AuditRecord
		if err := rows.Scan(&r.ID, &r.Type, &r.Details, &r.Username, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}

	return records, nil
}
