package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/serplantas/serplantas/internal/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, first_name, second_name, last_name, second_last_name,
	username, email, password_hash, two_factor_secret, two_factor_enabled_at,
	created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, first_name, second_name, last_name, second_last_name,
			username, email, password_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.SecondName, u.LastName, u.SecondLastName,
		u.Username, u.Email, u.PasswordHash,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) SetPendingTwoFactorSecret(ctx context.Context, userID string, secret string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET two_factor_secret = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		secret, userID,
	)
	return err
}

func (r *usersRepo) ConfirmTwoFactor(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET two_factor_enabled_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	return err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var secret sql.NullString
	var enabledAt sql.NullTime

	err := row.Scan(
		&u.ID, &u.FirstName, &u.SecondName, &u.LastName, &u.SecondLastName,
		&u.Username, &u.Email, &u.PasswordHash, &secret, &enabledAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.TwoFactorSecret = mapNullStringPtr(secret)
	u.TwoFactorEnabled = mapNullTimePtr(enabledAt)
	return u, nil
}
