package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kickoffhq/clubpush/internal/domain/subscription"
)

var _ subscription.Repo = (*SubscriptionRepo)(nil)

type SubscriptionRepo struct{ db *DB }

func NewSubscriptionRepo(db *DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

const (
	// Conflict on (member_id, device_id): a re-registration from the same
	// device replaces the delivery target. Last write wins.
	qSubUpsert = `
INSERT INTO push_subscriptions
    (member_id, device_id, device_type, token, endpoint, p256dh, auth, device_name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (member_id, device_id) DO UPDATE
SET device_type = EXCLUDED.device_type,
    token       = EXCLUDED.token,
    endpoint    = EXCLUDED.endpoint,
    p256dh      = EXCLUDED.p256dh,
    auth        = EXCLUDED.auth,
    device_name = EXCLUDED.device_name,
    updated_at  = NOW()
RETURNING id, created_at, updated_at;`

	qSubSelect = `
SELECT s.id, s.member_id, s.device_id, s.device_type,
       s.token, s.endpoint, s.p256dh, s.auth, s.device_name,
       s.created_at, s.updated_at
FROM push_subscriptions s`

	qSubDelete         = `DELETE FROM push_subscriptions WHERE id = $1;`
	qSubDeleteByMember = `DELETE FROM push_subscriptions WHERE member_id = $1;`
)

func (r *SubscriptionRepo) Upsert(ctx context.Context, s *subscription.Subscription) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qSubUpsert,
		s.MemberID,
		s.DeviceID,
		s.DeviceType,
		nullStr(s.Token),
		nullStr(s.Endpoint),
		nullStr(s.P256dh),
		nullStr(s.Auth),
		nullStr(s.DeviceName),
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) ListAll(ctx context.Context) ([]*subscription.Subscription, error) {
	return r.list(ctx, qSubSelect+` ORDER BY s.id;`)
}

func (r *SubscriptionRepo) ListBySport(ctx context.Context, sport string) ([]*subscription.Subscription, error) {
	q := qSubSelect + `
JOIN members m ON m.id = s.member_id
WHERE m.sport = $1
ORDER BY s.id;`
	return r.list(ctx, q, sport)
}

func (r *SubscriptionRepo) ListByMember(ctx context.Context, memberID int64) ([]*subscription.Subscription, error) {
	return r.list(ctx, qSubSelect+` WHERE s.member_id = $1 ORDER BY s.id;`, memberID)
}

func (r *SubscriptionRepo) list(ctx context.Context, q string, args ...any) ([]*subscription.Subscription, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var out []*subscription.Subscription
	for rows.Next() {
		var s subscription.Subscription
		if err := scanSubscription(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *SubscriptionRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qSubDelete, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepo) DeleteByMember(ctx context.Context, memberID int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qSubDeleteByMember, memberID); err != nil {
		return fmt.Errorf("delete member subscriptions: %w", err)
	}
	return nil
}

func scanSubscription(row pgx.Row, s *subscription.Subscription) error {
	var token, endpoint, p256dh, auth, name sql.NullString
	if err := row.Scan(
		&s.ID,
		&s.MemberID,
		&s.DeviceID,
		&s.DeviceType,
		&token,
		&endpoint,
		&p256dh,
		&auth,
		&name,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return fmt.Errorf("scan subscription: %w", err)
	}
	s.Token = token.String
	s.Endpoint = endpoint.String
	s.P256dh = p256dh.String
	s.Auth = auth.String
	s.DeviceName = name.String
	return nil
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
