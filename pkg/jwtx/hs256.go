package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for token verification. Every failure mode collapses to one
// of these so callers can fail closed without leaking which check tripped.
var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
)

// ErrSecretTooShort rejects signing secrets below 256 bits.
var ErrSecretTooShort = errors.New("jwtx: signing secret must be at least 32 bytes")

// Signer signs claims into compact JWTs.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a JWT and returns the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256 signs and verifies tokens with a single process-wide symmetric
// secret. The secret comes from configuration and is handed to this
// component explicitly; it is never logged.
type HS256 struct {
	secret []byte
	issuer string
}

// NewHS256 builds an HS256 signer/verifier. The secret must carry at least
// 256 bits so the HMAC is not the weakest link.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}
	return &HS256{secret: secret, issuer: issuer}, nil
}

// Sign produces a compact HS256-signed token for the claims.
func (s *HS256) Sign(c Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and verifies a compact token. Verification fails closed:
// signature mismatch, malformed input, algorithm confusion, wrong issuer, or
// an expired token all yield an error and zero claims.
func (s *HS256) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidSig, t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenUsedBeforeIssued), errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return Claims{}, ErrIssuer
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, ErrMalformed
		}
	}

	parsed, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrMalformed
	}
	if parsed.Subject == "" {
		return Claims{}, ErrMalformed
	}

	return *parsed, nil
}
