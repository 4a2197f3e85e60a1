package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/serplantas/serplantas/internal/domain"
)

type aiHistoryRepo struct {
	db dbtx
}

func (r *aiHistoryRepo) CreateInteraction(ctx context.Context, it domain.AIInteraction) error {
	var metadata sql.NullString
	if len(it.Metadata) > 0 {
		raw, err := json.Marshal(it.Metadata)
		if err != nil {
			return err
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ai_history (id, user_id, kind, input, output, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`,
		it.ID, it.UserID, string(it.Kind), it.Input, it.Output, metadata,
	)
	return err
}

func (r *aiHistoryRepo) ListRecentByUser(ctx context.Context, userID string, limit int) ([]domain.AIInteraction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, input, output, metadata, created_at
		FROM ai_history
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AIInteraction
	for rows.Next() {
		var it domain.AIInteraction
		var kind string
		var metadata sql.NullString

		if err := rows.Scan(&it.ID, &it.UserID, &kind, &it.Input, &it.Output, &metadata, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.Kind = domain.InteractionKind(kind)

		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &it.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *aiHistoryRepo) DeleteByUserAndKind(ctx context.Context, userID string, kind domain.InteractionKind) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM ai_history WHERE user_id = ? AND kind = ?`,
		userID, string(kind),
	)
	return err
}
