package postgres

import (
	"context"
	"fmt"

	"github.com/kickoffhq/clubpush/internal/domain/preference"
)

var _ preference.Repo = (*PreferenceRepo)(nil)

type PreferenceRepo struct{ db *DB }

func NewPreferenceRepo(db *DB) *PreferenceRepo { return &PreferenceRepo{db: db} }

const (
	// Lazy creation on first load. The conflict arm is a no-op update so the
	// statement returns the existing row instead of nothing.
	qPrefGetOrCreate = `
INSERT INTO notification_preferences (member_id, push_enabled)
VALUES ($1, FALSE)
ON CONFLICT (member_id) DO UPDATE
SET member_id = EXCLUDED.member_id
RETURNING member_id, push_enabled, updated_at;`

	qPrefSet = `
INSERT INTO notification_preferences (member_id, push_enabled)
VALUES ($1, $2)
ON CONFLICT (member_id) DO UPDATE
SET push_enabled = EXCLUDED.push_enabled,
    updated_at   = NOW()
RETURNING member_id, push_enabled, updated_at;`
)

func (r *PreferenceRepo) GetOrCreate(ctx context.Context, memberID int64) (*preference.Preference, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p preference.Preference
	if err := r.db.Pool.QueryRow(ctx, qPrefGetOrCreate, memberID).
		Scan(&p.MemberID, &p.PushEnabled, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("get or create preference: %w", err)
	}
	return &p, nil
}

func (r *PreferenceRepo) Set(ctx context.Context, memberID int64, enabled bool) (*preference.Preference, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p preference.Preference
	if err := r.db.Pool.QueryRow(ctx, qPrefSet, memberID, enabled).
		Scan(&p.MemberID, &p.PushEnabled, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("set preference: %w", err)
	}
	return &p, nil
}
