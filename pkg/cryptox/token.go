package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// BackupCodeLength is the fixed length of generated backup codes.
const BackupCodeLength = 8

// GenerateToken creates a cryptographically secure random token of the
// specified byte length, base64url-encoded without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateBackupCode produces a fixed-length uppercase alphanumeric code.
// The alphabet gives slightly over 41 bits of entropy at 8 characters, which
// is plenty for a single-use secondary credential behind rate limiting.
func GenerateBackupCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, BackupCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate backup code: %w", err)
		}
		code[i] = charset[n.Int64()]
	}
	return string(code), nil
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token.
// Backup codes are stored as fingerprints so a database leak does not expose
// usable credentials; lookup happens by recomputing the fingerprint.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
