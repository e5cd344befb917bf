package solanapay

import "errors"

// Sentinel errors for payment URL construction and QR encoding.
// Verification and balance lookups never return errors directly; their
// failure modes are normalized into VerificationResult and a nil balance.
var (
	// ErrInvalidAddress indicates a recipient that is not a well-formed
	// base58-encoded public key.
	ErrInvalidAddress = errors.New("invalid recipient address")

	// ErrInvalidSignature indicates a malformed transaction signature string.
	ErrInvalidSignature = errors.New("invalid transaction signature")

	// ErrPayloadTooLarge indicates a URI that exceeds the QR format's
	// absolute capacity.
	ErrPayloadTooLarge = errors.New("payload exceeds QR code capacity")
)
