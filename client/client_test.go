package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req["username"])

		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	token, err := c.Login(context.Background(), "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	assert.Equal(t, "tok-123", c.token)
}

func TestGeneratePaymentURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/checkout/payment-url", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var req PaymentURLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 0.1, req.Amount)

		json.NewEncoder(w).Encode(PaymentURLResponse{
			PaymentURL: "solana:11111111111111111111111111111112?amount=0.1",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	c.SetToken("tok-123")

	resp, err := c.GeneratePaymentURL(context.Background(), PaymentURLRequest{
		Recipient: "11111111111111111111111111111112",
		Amount:    0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, "solana:11111111111111111111111111111112?amount=0.1", resp.PaymentURL)
}

func TestVerifyPaymentNotVerifiedIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VerificationResult{
			Verified: false,
			Error:    "transaction not found",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	result, err := c.VerifyPayment(context.Background(), "somesig")
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "transaction not found", result.Error)
}

func TestBalanceNullIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address":"abc","balance":null}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	balance, err := c.Balance(context.Background(), "abc")
	require.NoError(t, err)
	assert.Nil(t, balance)
}

func TestBalancePathEscaped(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"address":"x","balance":1.5}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	balance, err := c.Balance(context.Background(), "abc/../etc")
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, 1.5, *balance)
	assert.Contains(t, gotPath, "%2F")
}

func TestErrorResponseParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid recipient: not a base58 Solana address"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	_, err := c.GeneratePaymentURL(context.Background(), PaymentURLRequest{Recipient: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.Write([]byte("OK"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	assert.NoError(t, c.Health(context.Background()))
}
