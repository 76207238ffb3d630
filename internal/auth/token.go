package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const tokenBytes = 32 // 256-bit tokens

// TokenPrefix starts every issued token.
const TokenPrefix = "yt_"

// ErrInvalidToken is returned when a bearer token does not resolve to a user.
var ErrInvalidToken = errors.New("invalid token")

// Token is the stored representation of a bearer token (no raw value).
type Token struct {
	ID         int64      `db:"id"`
	UserID     int64      `db:"user_id"`
	KeyPrefix  string     `db:"key_prefix"` // first 8 chars for identification
	CreatedAt  time.Time  `db:"created_at"`
	LastUsedAt *time.Time `db:"last_used_at"`
}

// TokenStore manages bearer tokens in SQLite. Tokens do not expire; they
// stay valid until revoked.
type TokenStore struct {
	db *sqlx.DB
}

// NewTokenStore creates a token store.
func NewTokenStore(db *sqlx.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Create issues a new token for the user.
// Returns the raw token (shown once) and the stored record.
func (s *TokenStore) Create(ctx context.Context, userID int64) (string, *Token, error) {
	raw, err := generateToken()
	if err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}

	prefix := raw[:8]
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO api_tokens (user_id, key_prefix, key_hash) VALUES (?, ?, ?)",
		userID, prefix, hashToken(raw),
	)
	if err != nil {
		return "", nil, fmt.Errorf("storing token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return "", nil, fmt.Errorf("getting token id: %w", err)
	}

	return raw, &Token{ID: id, UserID: userID, KeyPrefix: prefix, CreatedAt: time.Now().UTC()}, nil
}

// Resolve returns the user a raw token belongs to and updates last_used_at.
func (s *TokenStore) Resolve(ctx context.Context, raw string) (*User, error) {
	hash := hashToken(raw)

	var u User
	err := s.db.GetContext(ctx, &u, `
		SELECT u.id, u.username, u.password_hash, u.created_at, u.last_login
		FROM api_tokens t JOIN users u ON u.id = t.user_id
		WHERE t.key_hash = ?`, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("resolving token: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE api_tokens SET last_used_at = ? WHERE key_hash = ?",
		time.Now().UTC(), hash,
	); err != nil {
		return nil, fmt.Errorf("touching token: %w", err)
	}

	return &u, nil
}

// ListForUser returns a user's tokens, newest first.
func (s *TokenStore) ListForUser(ctx context.Context, userID int64) ([]Token, error) {
	var tokens []Token
	if err := s.db.SelectContext(ctx, &tokens,
		"SELECT id, user_id, key_prefix, created_at, last_used_at FROM api_tokens WHERE user_id = ? ORDER BY id DESC",
		userID,
	); err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	return tokens, nil
}

// RevokeForUser deletes every token of a user and returns how many were removed.
func (s *TokenStore) RevokeForUser(ctx context.Context, userID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM api_tokens WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("revoking tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking affected rows: %w", err)
	}
	return rows, nil
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return TokenPrefix + hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
