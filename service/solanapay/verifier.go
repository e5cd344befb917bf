package solanapay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hernandor/solpay/service/metrics"
)

// lamportsPerSOL converts the chain's smallest unit to whole SOL.
const lamportsPerSOL = 1e9

// RPCClient is the subset of Solana RPC operations the verifier needs.
// Injecting it lets tests substitute a fake instead of a live endpoint, and
// lets multiple independently configured instances (mainnet vs devnet)
// coexist.
type RPCClient interface {
	GetTransaction(
		ctx context.Context,
		signature solana.Signature,
		opts *rpc.GetTransactionOpts,
	) (*rpc.GetTransactionResult, error)

	GetBalance(
		ctx context.Context,
		account solana.PublicKey,
		commitment rpc.CommitmentType,
	) (*rpc.GetBalanceResult, error)
}

// Verifier checks transaction signatures against a remote ledger node.
// It is stateless between calls; the only shared resource is the reusable
// RPC client.
type Verifier struct {
	rpc      RPCClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string // RPC endpoint identifier for metrics labeling
}

// NewVerifier creates a new Verifier. The endpoint parameter is used for
// metrics labeling (e.g., "mainnet", "devnet", or the RPC hostname). If
// metrics is nil, no metrics are recorded.
func NewVerifier(rpcClient RPCClient, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Verifier {
	return &Verifier{
		rpc:      rpcClient,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
	}
}

// VerifyOptions carries optional hints for a stricter verification.
//
// ExpectedRecipient and ExpectedAmount are accepted but the cross-check
// against parsed instruction data is not implemented: verification success
// depends only on the transaction existing and carrying no on-chain error.
type VerifyOptions struct {
	ExpectedRecipient string
	ExpectedAmount    float64
}

// VerificationResult is the normalized outcome of a verification call.
// On failure only Verified and Error are populated.
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

// Verify fetches the transaction identified by signature and reports its
// outcome. Every failure mode (malformed input, not found, on-chain error,
// transport exception) is normalized into the result shape; Verify never
// panics and never returns an error.
//
// A malformed signature fails fast without a network call. Exactly one RPC
// attempt is made per call; retry policy belongs to the caller.
func (v *Verifier) Verify(ctx context.Context, signature string, opts VerifyOptions) VerificationResult {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		v.logger.DebugContext(ctx, "malformed signature", "signature", signature, "error", err)
		v.recordVerification("invalid_signature")
		return VerificationResult{
			Verified: false,
			Error:    fmt.Sprintf("%s: %v", ErrInvalidSignature.Error(), err),
		}
	}

	maxVersion := uint64(0)
	txnOpts := &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		MaxSupportedTransactionVersion: &maxVersion,
	}

	start := time.Now()
	result, err := v.rpc.GetTransaction(ctx, sig, txnOpts)
	duration := time.Since(start).Seconds()

	// The RPC client signals an unknown signature with rpc.ErrNotFound
	// rather than a nil result; the node itself answered, so that is a
	// lookup miss, not a transport failure.
	notFound := errors.Is(err, rpc.ErrNotFound)

	status := "success"
	if err != nil && !notFound {
		status = "error"
	}
	if v.metrics != nil {
		v.metrics.RecordRPCCall("GetTransaction", status, v.endpoint, duration)
	}

	if notFound || (err == nil && result == nil) {
		v.recordVerification("not_found")
		return VerificationResult{
			Verified: false,
			Error:    "transaction not found",
		}
	}

	if err != nil {
		v.logger.WarnContext(ctx, "failed to fetch transaction",
			"signature", signature,
			"error", err,
		)
		v.recordVerification("rpc_failure")
		return VerificationResult{
			Verified: false,
			Error:    fmt.Sprintf("verification failed: %v", err),
		}
	}

	if result.Meta != nil && result.Meta.Err != nil {
		v.recordVerification("chain_error")
		return VerificationResult{
			Verified: false,
			Error:    fmt.Sprintf("transaction failed: %v", result.Meta.Err),
		}
	}

	res := VerificationResult{
		Verified:  true,
		Signature: signature,
		Slot:      result.Slot,
	}
	if result.BlockTime != nil {
		bt := result.BlockTime.Time()
		res.BlockTime = &bt
	}
	if result.Meta != nil {
		res.Fee = result.Meta.Fee
		res.PreBalances = result.Meta.PreBalances
		res.PostBalances = result.Meta.PostBalances
	}

	// The recipient/amount cross-check would require parsing the transfer
	// instructions; until then the hints in opts are accepted but unused.
	_ = opts
	v.recordVerification("verified")
	return res
}

// GetBalance fetches the current balance of an address in SOL.
//
// It returns nil (not zero, and not an error) when the address is malformed
// or the RPC call fails. Failures are logged, never propagated.
func (v *Verifier) GetBalance(ctx context.Context, address string) *float64 {
	pub, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		v.logger.DebugContext(ctx, "malformed address for balance lookup", "address", address, "error", err)
		v.recordBalanceLookup("error")
		return nil
	}

	start := time.Now()
	out, err := v.rpc.GetBalance(ctx, pub, rpc.CommitmentFinalized)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if v.metrics != nil {
		v.metrics.RecordRPCCall("GetBalance", status, v.endpoint, duration)
	}

	if err != nil {
		v.logger.WarnContext(ctx, "failed to get balance", "address", address, "error", err)
		v.recordBalanceLookup("error")
		return nil
	}
	if out == nil {
		v.recordBalanceLookup("error")
		return nil
	}

	balance := float64(out.Value) / lamportsPerSOL
	v.recordBalanceLookup("success")
	return &balance
}

func (v *Verifier) recordVerification(outcome string) {
	if v.metrics != nil {
		v.metrics.RecordVerification(outcome)
	}
}

func (v *Verifier) recordBalanceLookup(status string) {
	if v.metrics != nil {
		v.metrics.RecordBalanceLookup(status)
	}
}
