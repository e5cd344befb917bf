package solanapay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSignature = "5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7"

// mockRPCClient implements RPCClient for testing. It counts calls so tests
// can assert that malformed input never reaches the network.
type mockRPCClient struct {
	getTransactionCalls int
	getBalanceCalls     int

	txResult *rpc.GetTransactionResult
	txErr    error

	balResult *rpc.GetBalanceResult
	balErr    error
}

func (m *mockRPCClient) GetTransaction(
	ctx context.Context,
	signature solana.Signature,
	opts *rpc.GetTransactionOpts,
) (*rpc.GetTransactionResult, error) {
	m.getTransactionCalls++
	if m.txErr != nil {
		return nil, m.txErr
	}
	return m.txResult, nil
}

func (m *mockRPCClient) GetBalance(
	ctx context.Context,
	account solana.PublicKey,
	commitment rpc.CommitmentType,
) (*rpc.GetBalanceResult, error) {
	m.getBalanceCalls++
	if m.balErr != nil {
		return nil, m.balErr
	}
	return m.balResult, nil
}

func newTestVerifier(mock *mockRPCClient) *Verifier {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewVerifier(mock, "test", nil, logger)
}

func TestVerify_MalformedSignature(t *testing.T) {
	ctx := context.Background()
	mock := &mockRPCClient{}
	verifier := newTestVerifier(mock)

	for _, signature := range []string{
		"not-a-signature",
		"",
		"0OIl+/=",
	} {
		result := verifier.Verify(ctx, signature, VerifyOptions{})

		assert.False(t, result.Verified, "signature %q", signature)
		assert.Contains(t, result.Error, ErrInvalidSignature.Error())
	}

	// Malformed input must fail fast, before any network I/O.
	assert.Equal(t, 0, mock.getTransactionCalls)
}

func TestVerify_NotFound(t *testing.T) {
	// The RPC client reports an unknown signature as rpc.ErrNotFound, not as
	// a nil result. That must classify as a lookup miss, not a transport
	// failure.
	ctx := context.Background()
	mock := &mockRPCClient{txErr: rpc.ErrNotFound}
	verifier := newTestVerifier(mock)

	result := verifier.Verify(ctx, testSignature, VerifyOptions{})

	assert.False(t, result.Verified)
	assert.Equal(t, "transaction not found", result.Error)
	assert.Equal(t, 1, mock.getTransactionCalls)
}

func TestVerify_NotFoundWrappedError(t *testing.T) {
	ctx := context.Background()
	mock := &mockRPCClient{txErr: fmt.Errorf("getTransaction: %w", rpc.ErrNotFound)}
	verifier := newTestVerifier(mock)

	result := verifier.Verify(ctx, testSignature, VerifyOptions{})

	assert.False(t, result.Verified)
	assert.Equal(t, "transaction not found", result.Error)
}

func TestVerify_NotFoundNilResult(t *testing.T) {
	// A client that signals absence with (nil, nil) gets the same outcome.
	ctx := context.Background()
	mock := &mockRPCClient{txResult: nil}
	verifier := newTestVerifier(mock)

	result := verifier.Verify(ctx, testSignature, VerifyOptions{})

	assert.False(t, result.Verified)
	assert.Equal(t, "transaction not found", result.Error)
}

func TestVerify_ChainError(t *testing.T) {
	ctx := context.Background()
	mock := &mockRPCClient{
		txResult: &rpc.GetTransactionResult{
			Slot: 100,
			Meta: &rpc.TransactionMeta{
				Err: map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
			},
		},
	}
	verifier := newTestVerifier(mock)

	result := verifier.Verify(ctx, testSignature, VerifyOptions{})

	assert.False(t, result.Verified)
	assert.Contains(t, result.Error, "transaction failed")
}

func TestVerify_Success(t *testing.T) {
	ctx := context.Background()
	blockTime := solana.UnixTimeSeconds(time.Now().Add(-time.Minute).Unix())
	mock := &mockRPCClient{
		txResult: &rpc.GetTransactionResult{
			Slot:      12345,
			BlockTime: &blockTime,
			Meta: &rpc.TransactionMeta{
				Fee:          5000,
				PreBalances:  []uint64{1000000000, 0},
				PostBalances: []uint64{899995000, 100000000},
			},
		},
	}
	verifier := newTestVerifier(mock)

	result := verifier.Verify(ctx, testSignature, VerifyOptions{})

	require.True(t, result.Verified)
	assert.Empty(t, result.Error)
	assert.Equal(t, testSignature, result.Signature)
	assert.Equal(t, uint64(12345), result.Slot)
	require.NotNil(t, result.BlockTime)
	assert.Equal(t, blockTime.Time().Unix(), result.BlockTime.Unix())
	assert.Equal(t, uint64(5000), result.Fee)
	assert.Equal(t, []uint64{1000000000, 0}, result.PreBalances)
	assert.Equal(t, []uint64{899995000, 100000000}, result.PostBalances)
}

func TestVerify_TransportErrorNormalized(t *testing.T) {
	ctx := context.Background()
	mock := &mockRPCClient{txErr: errors.New("connection refused")}
	verifier := newTestVerifier(mock)

	// Must not panic or propagate; the failure is folded into the result.
	result := verifier.Verify(ctx, testSignature, VerifyOptions{})

	assert.False(t, result.Verified)
	assert.Contains(t, result.Error, "connection refused")
}

func TestVerify_ExpectedHintsAccepted(t *testing.T) {
	// The hints are accepted but do not affect the outcome; success still
	// depends only on existence and the absence of an on-chain error.
	ctx := context.Background()
	mock := &mockRPCClient{
		txResult: &rpc.GetTransactionResult{
			Slot: 1,
			Meta: &rpc.TransactionMeta{Fee: 5000},
		},
	}
	verifier := newTestVerifier(mock)

	result := verifier.Verify(ctx, testSignature, VerifyOptions{
		ExpectedRecipient: testRecipient,
		ExpectedAmount:    99.0,
	})

	assert.True(t, result.Verified)
}

func TestGetBalance_Success(t *testing.T) {
	ctx := context.Background()
	mock := &mockRPCClient{
		balResult: &rpc.GetBalanceResult{Value: 2500000000},
	}
	verifier := newTestVerifier(mock)

	balance := verifier.GetBalance(ctx, testRecipient)

	require.NotNil(t, balance)
	assert.Equal(t, 2.5, *balance)
}

func TestGetBalance_ZeroIsPresent(t *testing.T) {
	// A true zero balance is a value, distinguished from absence.
	ctx := context.Background()
	mock := &mockRPCClient{
		balResult: &rpc.GetBalanceResult{Value: 0},
	}
	verifier := newTestVerifier(mock)

	balance := verifier.GetBalance(ctx, testRecipient)

	require.NotNil(t, balance)
	assert.Equal(t, 0.0, *balance)
}

func TestGetBalance_RPCFailure(t *testing.T) {
	ctx := context.Background()
	mock := &mockRPCClient{balErr: errors.New("node unreachable")}
	verifier := newTestVerifier(mock)

	balance := verifier.GetBalance(ctx, testRecipient)

	assert.Nil(t, balance, "unreachable RPC yields no value, not an error")
	assert.Equal(t, 1, mock.getBalanceCalls)
}

func TestGetBalance_MalformedAddress(t *testing.T) {
	ctx := context.Background()
	mock := &mockRPCClient{}
	verifier := newTestVerifier(mock)

	balance := verifier.GetBalance(ctx, "not-an-address")

	assert.Nil(t, balance)
	assert.Equal(t, 0, mock.getBalanceCalls, "malformed address should not hit the RPC")
}
