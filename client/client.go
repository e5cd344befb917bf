// Package client provides an HTTP client for the solpay payment service API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client is the HTTP client for the payment service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new payment service client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// SetToken sets the bearer token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Register creates an account on the server.
func (c *Client) Register(ctx context.Context, username, password, email, fullName string) error {
	reqBody := map[string]string{
		"username":  username,
		"password":  password,
		"email":     email,
		"full_name": fullName,
	}

	var resp map[string]string
	if err := c.doJSON(ctx, "POST", "/api/v1/auth/register", reqBody, &resp, http.StatusCreated); err != nil {
		return err
	}

	c.logger.Debug("account registered", "username", username)
	return nil
}

// Login authenticates and stores the returned token on the client for
// subsequent calls. The token is also returned for callers that persist it.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	reqBody := map[string]string{
		"username": username,
		"password": password,
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, "POST", "/api/v1/auth/login", reqBody, &resp, http.StatusOK); err != nil {
		return "", err
	}

	c.token = resp.Token
	c.logger.Debug("login succeeded", "username", username)
	return resp.Token, nil
}

// PaymentURLRequest describes a payment URL generation request.
type PaymentURLRequest struct {
	Recipient string  `json:"recipient,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	SPLToken  string  `json:"spl_token,omitempty"`
	Reference string  `json:"reference,omitempty"`
	Label     string  `json:"label,omitempty"`
	Message   string  `json:"message,omitempty"`
	Memo      string  `json:"memo,omitempty"`
	QRCode    bool    `json:"qr_code,omitempty"`
}

// PaymentURLResponse is the server's payment URL response.
type PaymentURLResponse struct {
	PaymentURL string `json:"payment_url"`
	QRCode     string `json:"qr_code,omitempty"`
}

// GeneratePaymentURL asks the server to build a Solana Pay URL.
func (c *Client) GeneratePaymentURL(ctx context.Context, req PaymentURLRequest) (*PaymentURLResponse, error) {
	var resp PaymentURLResponse
	if err := c.doJSON(ctx, "POST", "/api/v1/checkout/payment-url", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerificationResult is the server's verification response. On failure only
// Verified and Error are populated.
type VerificationResult struct {
	Verified     bool       `json:"verified"`
	Signature    string     `json:"signature,omitempty"`
	Slot         uint64     `json:"slot,omitempty"`
	BlockTime    *time.Time `json:"block_time,omitempty"`
	Fee          uint64     `json:"fee,omitempty"`
	PreBalances  []uint64   `json:"pre_balances,omitempty"`
	PostBalances []uint64   `json:"post_balances,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// VerifyPayment asks the server to verify a transaction signature on chain.
// A non-verified outcome is not an error; check the Verified field.
func (c *Client) VerifyPayment(ctx context.Context, signature string) (*VerificationResult, error) {
	reqBody := map[string]string{
		"signature": signature,
	}

	var resp VerificationResult
	if err := c.doJSON(ctx, "POST", "/api/v1/checkout/verify-payment", reqBody, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Balance retrieves the SOL balance of an address. The returned pointer is
// nil when the server could not determine the balance.
func (c *Client) Balance(ctx context.Context, address string) (*float64, error) {
	var resp struct {
		Address string   `json:"address"`
		Balance *float64 `json:"balance"`
	}
	path := "/api/v1/checkout/balance/" + url.PathEscape(address)
	if err := c.doJSON(ctx, "GET", path, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Balance, nil
}

// Product is a catalog entry returned by the server.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Quantity int64   `json:"quantity"`
}

// ListProducts retrieves the product catalog, newest first.
func (c *Client) ListProducts(ctx context.Context) ([]*Product, error) {
	var resp struct {
		Products []*Product `json:"products"`
	}
	if err := c.doJSON(ctx, "GET", "/api/v1/products", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// doJSON performs a JSON request/response round trip against the API.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody interface{}, wantStatus int) error {
	var reader io.Reader
	if reqBody != nil {
		body, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.parseErrorResponse(resp)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// parseErrorResponse attempts to parse an error response from the server.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("request failed: %s", errResp.Error)
}
