package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token TTL constants. A provisional token is issued after a successful
// password check on a 2FA-enabled account and is only good for completing
// the second factor, so it lives half as long.
const (
	// SessionTokenTTL is the lifetime of a full session token.
	SessionTokenTTL = 10 * time.Minute

	// ProvisionalTokenTTL is the lifetime of a pre-2FA provisional token.
	ProvisionalTokenTTL = 5 * time.Minute
)

// Claims are the session-token claims shared across the service.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated user, for display and logging.
	Username string `json:"username,omitempty"`

	// Provisional marks a token minted after the password check but before
	// second-factor verification. A provisional token never grants access to
	// protected operations.
	Provisional bool `json:"provisional,omitempty"`
}

// NewSessionClaims builds claims for a full session token.
func NewSessionClaims(subject, username, issuer string, ttl time.Duration, now time.Time) Claims {
	return newClaims(subject, username, issuer, ttl, now, false)
}

// NewProvisionalClaims builds claims for a pre-2FA provisional token.
func NewProvisionalClaims(subject, username, issuer string, ttl time.Duration, now time.Time) Claims {
	return newClaims(subject, username, issuer, ttl, now, true)
}

func newClaims(subject, username, issuer string, ttl time.Duration, now time.Time, provisional bool) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username:    username,
		Provisional: provisional,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
