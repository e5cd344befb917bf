package events

import (
	"time"
)

// PaymentEvent represents a payment lifecycle event published to NATS.
// Events are published to the subject "payments.{username}" in JetStream.
type PaymentEvent struct {
	// Event classification
	Type string `json:"type"`

	// Account the event belongs to
	Username string `json:"username"`

	// Payment details
	Recipient  string `json:"recipient,omitempty"`
	Amount     string `json:"amount,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`

	// Verification details, set for verification events
	Signature string `json:"signature,omitempty"`
	Verified  bool   `json:"verified,omitempty"`
	Slot      uint64 `json:"slot,omitempty"`

	// Metadata
	PublishedAt time.Time `json:"published_at"`
}

// Event types.
const (
	EventPaymentURLGenerated = "payment_url_generated"
	EventPaymentVerified     = "payment_verified"
)
