package sqlite

import (
	"context"

	"github.com/serplantas/serplantas/pkg/idx"
)

type backupCodesRepo struct {
	db dbtx
}

func (r *backupCodesRepo) CreateBackupCode(ctx context.Context, userID string, codeHash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO backup_codes (id, user_id, code_hash) VALUES (?, ?, ?)`,
		idx.New().String(), userID, codeHash,
	)
	return err
}

// ConsumeBackupCode deletes the code if it exists and reports whether a row
// was removed. A single conditional DELETE keeps the check and the burn in
// one statement, so the same code can never be spent twice.
func (r *backupCodesRepo) ConsumeBackupCode(ctx context.Context, userID string, codeHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM backup_codes WHERE user_id = ? AND code_hash = ?`,
		userID, codeHash,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *backupCodesRepo) DeleteAllBackupCodes(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM backup_codes WHERE user_id = ?`, userID)
	return err
}

func (r *backupCodesRepo) CountUserBackupCodes(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM backup_codes WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
