package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccounts(t *testing.T) {
	SkipIfNoTestDB(t)

	ts := NewTestStore(t)
	defer ts.Close()
	ts.Cleanup(t)
	defer ts.Cleanup(t)

	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		created, err := ts.CreateAccount(ctx, CreateAccountParams{
			Username:     "alice",
			PasswordHash: "$2a$10$notarealhashbutlongenough",
			Email:        "alice@example.com",
			FullName:     "Alice Example",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", created.Username)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := ts.GetAccount(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, created.Email, got.Email)
		assert.Equal(t, created.PasswordHash, got.PasswordHash)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := ts.CreateAccount(ctx, CreateAccountParams{
			Username:     "alice",
			PasswordHash: "hash",
			Email:        "other@example.com",
		})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := ts.CreateAccount(ctx, CreateAccountParams{
			Username:     "bob",
			PasswordHash: "hash",
			Email:        "alice@example.com",
		})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := ts.GetAccount(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update wallet key", func(t *testing.T) {
		err := ts.UpdateAccountWalletKey(ctx, "alice", "11111111111111111111111111111112")
		require.NoError(t, err)

		got, err := ts.GetAccount(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "11111111111111111111111111111112", got.WalletKey)
	})

	t.Run("update wallet key missing account", func(t *testing.T) {
		err := ts.UpdateAccountWalletKey(ctx, "nobody", "11111111111111111111111111111112")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestProducts(t *testing.T) {
	SkipIfNoTestDB(t)

	ts := NewTestStore(t)
	defer ts.Close()
	ts.Cleanup(t)
	defer ts.Cleanup(t)

	ctx := context.Background()

	created, err := ts.CreateProduct(ctx, CreateProductParams{
		Name:     "Sticker Pack",
		Price:    0.1,
		Image:    "https://cdn.example.com/stickers.png",
		Quantity: 100,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	t.Run("get", func(t *testing.T) {
		got, err := ts.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sticker Pack", got.Name)
		assert.Equal(t, 0.1, got.Price)
		assert.Equal(t, int64(100), got.Quantity)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := ts.GetProduct(ctx, created.ID+1000)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := ts.CreateProduct(ctx, CreateProductParams{
				Name:     fmt.Sprintf("Item %d", i),
				Price:    float64(i) + 1,
				Quantity: 10,
			})
			require.NoError(t, err)
		}

		products, err := ts.ListProducts(ctx, ListProductsParams{Limit: 10})
		require.NoError(t, err)
		require.Len(t, products, 4)
		assert.Equal(t, "Item 2", products[0].Name)

		page, err := ts.ListProducts(ctx, ListProductsParams{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, page, 2)
	})

	t.Run("update", func(t *testing.T) {
		updated, err := ts.UpdateProduct(ctx, UpdateProductParams{
			ID:       created.ID,
			Name:     "Sticker Pack v2",
			Price:    0.25,
			Image:    created.Image,
			Quantity: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, "Sticker Pack v2", updated.Name)
		assert.Equal(t, 0.25, updated.Price)
	})

	t.Run("adjust quantity", func(t *testing.T) {
		adjusted, err := ts.AdjustProductQuantity(ctx, created.ID, -10)
		require.NoError(t, err)
		assert.Equal(t, int64(40), adjusted.Quantity)
	})

	t.Run("adjust quantity below zero", func(t *testing.T) {
		_, err := ts.AdjustProductQuantity(ctx, created.ID, -1000)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, ts.DeleteProduct(ctx, created.ID))

		_, err := ts.GetProduct(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		err = ts.DeleteProduct(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAuditRecords(t *testing.T) {
	SkipIfNoTestDB(t)

	ts := NewTestStore(t)
	defer ts.Close()
	ts.Cleanup(t)
	defer ts.Cleanup(t)

	ctx := context.Background()

	_, err := ts.CreateAccount(ctx, CreateAccountParams{
		Username:     "carol",
		PasswordHash: "hash",
		Email:        "carol@example.com",
	})
	require.NoError(t, err)

	first, err := ts.CreateAuditRecord(ctx, CreateAuditRecordParams{
		Type:     AuditPaymentURLGenerated,
		Details:  `{"recipient":"11111111111111111111111111111112","amount":0.1}`,
		Username: "carol",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", first.ID.String())

	_, err = ts.CreateAuditRecord(ctx, CreateAuditRecordParams{
		Type:     AuditPaymentVerification,
		Details:  `{"verified":true}`,
		Username: "carol",
	})
	require.NoError(t, err)

	records, err := ts.ListAuditRecords(ctx, ListAuditRecordsParams{
		Username: "carol",
		Limit:    10,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, AuditPaymentVerification, records[0].Type)
	assert.Equal(t, AuditPaymentURLGenerated, records[1].Type)

	t.Run("other user sees nothing", func(t *testing.T) {
		records, err := ts.ListAuditRecords(ctx, ListAuditRecordsParams{
			Username: "dave",
			Limit:    10,
		})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
