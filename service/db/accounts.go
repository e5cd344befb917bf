package db

import (
	"context"
	"fmt"
	"time"
)

// Account represents a registered user of the payment service.
// PasswordHash holds a bcrypt hash, never the plaintext password.
type Account struct {
	Username     string
	PasswordHash string
	Email        string
	FullName     string
	WalletKey    string // Solana wallet public key, optional
	CreatedAt    time.Time
}

// CreateAccountParams contains the parameters for creating an account.
type CreateAccountParams struct {
	Username     string
	PasswordHash string
	Email        string
	FullName     string
	WalletKey    string
}

// CreateAccount inserts a new account. Returns ErrDuplicate if the username
// or email is already taken.
func (s *Store) CreateAccount(ctx context.Context, params CreateAccountParams) (*Account, error) {
	query := `
		INSERT INTO accounts (username, password_hash, email, full_name, wallet_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING username, password_hash, email, full_name, wallet_key, created_at
	`

	var a Account
	err := s.pool.QueryRow(ctx, query,
		params.Username, params.PasswordHash, params.Email, params.FullName, params.WalletKey,
	).Scan(&a.Username, &a.PasswordHash, &a.Email, &a.FullName, &a.WalletKey, &a.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return &a, nil
}

// GetAccount retrieves an account by username. Returns ErrNotFound if no such
// account exists.
func (s *Store) GetAccount(ctx context.Context, username string) (*Account, error) {
	query := `
		SELECT username, password_hash, email, full_name, wallet_key, created_at
		FROM accounts
		WHERE username = $1
	`

	var a Account
	err := s.pool.QueryRow(ctx, query, username).
		Scan(&a.Username, &a.PasswordHash, &a.Email, &a.FullName, &a.WalletKey, &a.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &a, nil
}

// UpdateAccountWalletKey sets the Solana wallet key for an account.
func (s *Store) UpdateAccountWalletKey(ctx context.Context, username, walletKey string) error {
	query := `UPDATE accounts SET wallet_key = $2 WHERE username = $1`

	tag, err := s.pool.Exec(ctx, query, username, walletKey)
	if err != nil {
		return fmt.Errorf("update wallet key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
