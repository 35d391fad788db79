package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kickoffhq/clubpush/internal/domain/history"
)

var _ history.Repo = (*HistoryRepo)(nil)

// HistoryRepo is insert-only apart from the recent-entries listing; rows are
// an audit trail, never updated.
type HistoryRepo struct{ db *DB }

func NewHistoryRepo(db *DB) *HistoryRepo { return &HistoryRepo{db: db} }

const (
	qHistInsert = `
INSERT INTO notification_history (title, content, training_id, target_group, sport, sent_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
RETURNING id, sent_at;`

	qHistRecent = `
SELECT id, title, content, training_id, target_group, sport, sent_at
FROM notification_history
ORDER BY sent_at DESC
LIMIT $1;`
)

func (r *HistoryRepo) Create(ctx context.Context, e *history.Entry) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var sentAt any
	if !e.SentAt.IsZero() {
		sentAt = e.SentAt
	}
	if err := r.db.Pool.QueryRow(ctx, qHistInsert,
		e.Title,
		e.Content,
		e.TrainingID,
		e.TargetGroup,
		nullStr(e.Sport),
		sentAt,
	).Scan(&e.ID, &e.SentAt); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (r *HistoryRepo) ListRecent(ctx context.Context, limit int) ([]*history.Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qHistRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]*history.Entry, 0, limit)
	for rows.Next() {
		var (
			e     history.Entry
			sport sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Content, &e.TrainingID, &e.TargetGroup, &sport, &e.SentAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.Sport = sport.String
		ec := e
		out = append(out, &ec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
