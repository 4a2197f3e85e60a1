package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// User is the identity record for a registered plant owner.
type User struct {
	ID             string
	FirstName      string
	SecondName     string
	LastName       string
	SecondLastName string
	Username       string // derived, unique, immutable after creation
	Email          string // unique secondary lookup key
	PasswordHash   string // argon2id PHC encoded, never returned to clients

	// TwoFactorEnabled is the confirmation timestamp (nullable). A non-nil
	// value implies TwoFactorSecret is non-empty.
	TwoFactorEnabled *time.Time

	// TwoFactorSecret is the base32 TOTP secret (nullable). When set while
	// TwoFactorEnabled is nil the secret is pending: provisioned by the
	// setup step but not yet confirmed by a valid code.
	TwoFactorSecret *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TwoFactorActive reports whether the second factor is confirmed and usable.
func (u User) TwoFactorActive() bool {
	return u.TwoFactorEnabled != nil && u.TwoFactorSecret != nil && *u.TwoFactorSecret != ""
}

// PendingSecret returns the provisioned-but-unconfirmed TOTP secret, or "".
func (u User) PendingSecret() string {
	if u.TwoFactorEnabled != nil || u.TwoFactorSecret == nil {
		return ""
	}
	return *u.TwoFactorSecret
}

// Summary is the non-sensitive projection of a user returned to clients.
type Summary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
}

// Summary projects the identity fields that are safe to return.
func (u User) Summary() Summary {
	return Summary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
	}
}

// DeriveUsername computes the canonical username: the first character of the
// first name followed by the last name, lowercased. Collisions are rejected
// at registration, never auto-disambiguated.
func DeriveUsername(firstName, lastName string) string {
	first, _ := utf8.DecodeRuneInString(firstName)
	if first == utf8.RuneError {
		return ""
	}
	return strings.ToLower(string(first) + lastName)
}
