package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/hernandor/solpay/service/auth"
	"github.com/hernandor/solpay/service/db"
)

const minPasswordLength = 8

// handleRegister returns a handler that creates a new account.
// POST /api/v1/auth/register
func handleRegister(store *db.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Email    string `json:"email"`
			FullName string `json:"full_name"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := validateUsername(req.Username); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Password) < minPasswordLength {
			writeError(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			writeError(w, "invalid email address", http.StatusBadRequest)
			return
		}
		if err := validateField("full_name", req.FullName); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			logger.Error("failed to hash password", "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		account, err := store.CreateAccount(r.Context(), db.CreateAccountParams{
			Username:     req.Username,
			PasswordHash: hash,
			Email:        req.Email,
			FullName:     req.FullName,
		})
		if err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				writeError(w, "username or email already registered", http.StatusConflict)
				return
			}
			logger.Error("failed to create account", "username", req.Username, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		logger.Info("account registered", "username", account.Username)
		writeJSON(w, map[string]string{
			"username": account.Username,
			"email":    account.Email,
		}, http.StatusCreated)
	})
}

// handleLogin returns a handler that checks credentials and issues a token.
// POST /api/v1/auth/login
func handleLogin(store *db.Store, issuer *auth.TokenIssuer, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := validateUsername(req.Username); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		account, err := store.GetAccount(r.Context(), req.Username)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				// Same response as a bad password so usernames can't be probed.
				writeError(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			logger.Error("failed to load account", "username", req.Username, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if err := auth.CheckPassword(account.PasswordHash, req.Password); err != nil {
			logger.Debug("login failed", "username", req.Username)
			writeError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := issuer.GenerateToken(account.Username)
		if err != nil {
			logger.Error("failed to issue token", "username", req.Username, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		logger.Info("login succeeded", "username", account.Username)
		writeJSON(w, map[string]string{
			"token": token,
		}, http.StatusOK)
	})
}

// handleUpdateWalletKey returns a handler that stores the caller's wallet
// public key.
// PUT /api/v1/auth/wallet-key
func handleUpdateWalletKey(store *db.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := auth.UsernameFromContext(r.Context())
		if !ok {
			writeError(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			WalletKey string `json:"wallet_key"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if _, err := solanago.PublicKeyFromBase58(req.WalletKey); err != nil {
			writeError(w, "invalid wallet key: not a base58 public key", http.StatusBadRequest)
			return
		}

		if err := store.UpdateAccountWalletKey(r.Context(), username, req.WalletKey); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				writeError(w, "account not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to update wallet key", "username", username, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		logger.Info("wallet key updated", "username", username)
		writeJSON(w, map[string]string{
			"username":   username,
			"wallet_key": req.WalletKey,
		}, http.StatusOK)
	})
}
