// Package solanapay implements the Solana Pay payment primitives: building
// spec-compliant payment URLs, rendering them as QR codes, and verifying
// transaction signatures against a Solana RPC node.
//
// See https://docs.solanapay.com/spec for the URL scheme.
package solanapay

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gagliardetto/solana-go"
)

// PaymentRequest describes a requested transfer. Recipient and Amount are the
// primary fields; everything else is optional and omitted from the URL when
// empty. The value is immutable once constructed.
type PaymentRequest struct {
	Recipient string  // base58-encoded public key of the payee
	Amount    float64 // amount in SOL (or token units when SPLToken is set)
	SPLToken  string  // optional mint address for SPL token payments
	Reference string  // optional reference key for transaction lookup
	Label     string  // optional label shown by wallet apps
	Message   string  // optional message shown by wallet apps
	Memo      string  // optional memo included in the transaction
}

// BuildPaymentURL constructs a Solana Pay URL from the request.
// Format: solana:{recipient}?amount={amount}&spl-token={mint}&reference={ref}&label={label}&message={message}&memo={memo}
//
// The recipient must be a well-formed base58 public key; no on-chain
// existence check is performed. A zero or negative amount is omitted from the
// URL rather than rejected, producing an address-only payment request. When no
// query parameters apply the result is exactly "solana:{recipient}" with no
// trailing "?".
func BuildPaymentURL(req PaymentRequest) (string, error) {
	if _, err := solana.PublicKeyFromBase58(req.Recipient); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, req.Recipient)
	}

	params := url.Values{}

	if req.Amount > 0 {
		// Shortest representation that round-trips, so 0.1 stays "0.1".
		params.Set("amount", strconv.FormatFloat(req.Amount, 'f', -1, 64))
	}
	if req.SPLToken != "" {
		params.Set("spl-token", req.SPLToken)
	}
	if req.Reference != "" {
		params.Set("reference", req.Reference)
	}
	if req.Label != "" {
		params.Set("label", req.Label)
	}
	if req.Message != "" {
		params.Set("message", req.Message)
	}
	if req.Memo != "" {
		params.Set("memo", req.Memo)
	}

	if len(params) == 0 {
		return "solana:" + req.Recipient, nil
	}

	return fmt.Sprintf("solana:%s?%s", req.Recipient, params.Encode()), nil
}
