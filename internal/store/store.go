package store

import (
	"context"
	"errors"

	"github.com/serplantas/serplantas/internal/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// ErrUsernameTaken and ErrEmailTaken surface UNIQUE-constraint
	// violations. They are how a losing concurrent registration is told
	// apart from a crash: the driver maps the violated index back to the
	// field so the service can answer with the right duplicate error.
	ErrUsernameTaken = errors.New("store: username already exists")
	ErrEmailTaken    = errors.New("store: email already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users
	BackupCodes() BackupCodes
	AIHistory() AIHistory

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back if fn errors and
	// committing otherwise. This is the recommended way to run multi-step
	// mutations (e.g. enabling 2FA together with replacing backup codes).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new identity record (id is provided by app via
	// ULID). UNIQUE violations map to ErrUsernameTaken / ErrEmailTaken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is the login lookup.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is the registration duplicate pre-check.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// SetPendingTwoFactorSecret stores a provisioned-but-unconfirmed TOTP
	// secret and bumps updated_at. The enabled timestamp is left untouched.
	SetPendingTwoFactorSecret(ctx context.Context, userID string, secret string) error

	// ConfirmTwoFactor marks the pending secret as confirmed by setting the
	// enabled timestamp and bumps updated_at.
	ConfirmTwoFactor(ctx context.Context, userID string) error
}

type BackupCodes interface {
	// CreateBackupCode stores one backup code fingerprint for a user.
	CreateBackupCode(ctx context.Context, userID string, codeHash string) error

	// ConsumeBackupCode atomically removes the code if present and reports
	// whether it was there. Two concurrent calls with the same code cannot
	// both succeed: the DELETE's affected-row count decides.
	ConsumeBackupCode(ctx context.Context, userID string, codeHash string) (bool, error)

	// DeleteAllBackupCodes removes every code for a user; each enrollment
	// replaces the prior set.
	DeleteAllBackupCodes(ctx context.Context, userID string) error

	// CountUserBackupCodes returns how many unused codes remain.
	CountUserBackupCodes(ctx context.Context, userID string) (int, error)
}

type AIHistory interface {
	// CreateInteraction stores one prompt/response exchange.
	CreateInteraction(ctx context.Context, it domain.AIInteraction) error

	// ListRecentByUser returns the newest interactions first, capped at limit.
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]domain.AIInteraction, error)

	// DeleteByUserAndKind clears one kind of history (chat wipes leave
	// diagnoses untouched).
	DeleteByUserAndKind(ctx context.Context, userID string, kind domain.InteractionKind) error
}
