package solanapay

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRecipient = "11111111111111111111111111111112"
	testMint      = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func TestBuildPaymentURL_AddressOnly(t *testing.T) {
	// No amount and no optional fields produce exactly solana:<recipient>
	// with no trailing "?".
	u, err := BuildPaymentURL(PaymentRequest{Recipient: testRecipient})
	require.NoError(t, err)
	assert.Equal(t, "solana:"+testRecipient, u)
	assert.False(t, strings.Contains(u, "?"))
}

func TestBuildPaymentURL_ExampleScenario(t *testing.T) {
	u, err := BuildPaymentURL(PaymentRequest{
		Recipient: testRecipient,
		Amount:    0.1,
		Label:     "Demo",
		Message:   "test",
	})
	require.NoError(t, err)

	// url.Values.Encode sorts keys, so the full string is deterministic.
	assert.Equal(t, "solana:"+testRecipient+"?amount=0.1&label=Demo&message=test", u)
}

func TestBuildPaymentURL_AmountPreservedExactly(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0.1, "0.1"},
		{1, "1"},
		{0.000000001, "0.000000001"},
		{2.5, "2.5"},
		{1000000, "1000000"},
	}

	for _, tt := range tests {
		u, err := BuildPaymentURL(PaymentRequest{Recipient: testRecipient, Amount: tt.amount})
		require.NoError(t, err)

		params := parseQuery(t, u)
		assert.Equal(t, tt.want, params.Get("amount"), "amount %v", tt.amount)
	}
}

func TestBuildPaymentURL_NonPositiveAmountOmitted(t *testing.T) {
	// Zero or negative amounts are omitted rather than rejected: a caller
	// requesting a free payment gets an address-only URL.
	for _, amount := range []float64{0, -1, -0.5} {
		u, err := BuildPaymentURL(PaymentRequest{Recipient: testRecipient, Amount: amount})
		require.NoError(t, err)
		assert.Equal(t, "solana:"+testRecipient, u, "amount %v", amount)

		// Rebuilding is idempotent: the amount stays omitted.
		again, err := BuildPaymentURL(PaymentRequest{Recipient: testRecipient, Amount: amount})
		require.NoError(t, err)
		assert.Equal(t, u, again)
	}
}

func TestBuildPaymentURL_NonPositiveAmountKeepsOptionalFields(t *testing.T) {
	u, err := BuildPaymentURL(PaymentRequest{
		Recipient: testRecipient,
		Amount:    0,
		Label:     "Free",
	})
	require.NoError(t, err)

	params := parseQuery(t, u)
	assert.Empty(t, params.Get("amount"))
	assert.Equal(t, "Free", params.Get("label"))
}

func TestBuildPaymentURL_InvalidRecipient(t *testing.T) {
	for _, recipient := range []string{
		"not-a-valid-address",
		"",
		"0OIl", // characters outside the base58 alphabet
		"tooshort",
	} {
		u, err := BuildPaymentURL(PaymentRequest{Recipient: recipient, Amount: 1})
		require.Error(t, err, "recipient %q", recipient)
		assert.ErrorIs(t, err, ErrInvalidAddress)
		assert.Empty(t, u, "no partial output on failure")
	}
}

func TestBuildPaymentURL_OptionalFieldsPercentEncoded(t *testing.T) {
	req := PaymentRequest{
		Recipient: testRecipient,
		Amount:    0.25,
		SPLToken:  testMint,
		Reference: testRecipient,
		Label:     "Coffee & Cake",
		Message:   "thanks for the order!",
		Memo:      "order #42",
	}

	u, err := BuildPaymentURL(req)
	require.NoError(t, err)

	// Raw string must not contain unencoded reserved characters from values.
	assert.NotContains(t, u, "Coffee & Cake")
	assert.NotContains(t, u, "#42")

	// Round-trip: parsing yields back the original values.
	params := parseQuery(t, u)
	assert.Equal(t, "0.25", params.Get("amount"))
	assert.Equal(t, testMint, params.Get("spl-token"))
	assert.Equal(t, testRecipient, params.Get("reference"))
	assert.Equal(t, "Coffee & Cake", params.Get("label"))
	assert.Equal(t, "thanks for the order!", params.Get("message"))
	assert.Equal(t, "order #42", params.Get("memo"))
	assert.Len(t, params, 6, "no extra parameters")
}

func TestBuildPaymentURL_RoundTripRecipient(t *testing.T) {
	u, err := BuildPaymentURL(PaymentRequest{Recipient: testRecipient, Amount: 1.5, Memo: "hi"})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(u, "solana:"))
	rest := strings.TrimPrefix(u, "solana:")
	recipient, _, _ := strings.Cut(rest, "?")
	assert.Equal(t, testRecipient, recipient)
}

// parseQuery splits a solana: URL and parses its query component.
func parseQuery(t *testing.T, u string) url.Values {
	t.Helper()

	require.True(t, strings.HasPrefix(u, "solana:"), "URL %q must use the solana scheme", u)
	_, query, found := strings.Cut(u, "?")
	if !found {
		return url.Values{}
	}
	params, err := url.ParseQuery(query)
	require.NoError(t, err)
	return params
}
