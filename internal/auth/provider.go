// Package auth provides username/password authentication, opaque bearer
// tokens, and the ownership policy for mutating content.
package auth

import (
	"context"
	"fmt"
)

// Provider exchanges credentials for bearer tokens and resolves tokens back
// to users.
type Provider struct {
	users  *UserStore
	tokens *TokenStore
}

// NewProvider creates a provider over the given stores.
func NewProvider(users *UserStore, tokens *TokenStore) *Provider {
	return &Provider{users: users, tokens: tokens}
}

// ObtainToken issues a token for valid credentials.
// Returns ErrInvalidCredentials otherwise.
func (p *Provider) ObtainToken(ctx context.Context, username, password string) (string, error) {
	u, err := p.users.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	raw, _, err := p.tokens.Create(ctx, u.ID)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}
	return raw, nil
}

// Resolve returns the user behind a raw token, or ErrInvalidToken.
func (p *Provider) Resolve(ctx context.Context, raw string) (*User, error) {
	return p.tokens.Resolve(ctx, raw)
}

// CanModify reports whether actor may update or delete content authored by
// authorID. Only the author may.
func CanModify(actor *User, authorID int64) bool {
	return actor != nil && actor.ID == authorID
}
