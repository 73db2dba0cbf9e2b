// Package auth validates the bearer tokens that identify API callers.
// Tokens are issued by the identity service; this package only needs the
// shared HMAC secret.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenTypeAccess is the only token type accepted by the API.
const TokenTypeAccess = "access"

// JWTService issues and validates access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for userID. The API never
	// calls it; it backs `recallctl token` and tests.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies signature, expiry and token type and returns
	// the claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the fields the API reads from a validated token.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	TokenType string    `json:"type,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
