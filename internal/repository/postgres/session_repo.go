package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kickoffhq/clubpush/internal/domain/session"
)

var _ session.Repo = (*SessionRepo)(nil)

// SessionRepo reads training sessions and their registrations. Sessions are
// owned by the scheduling part of the application; nothing here writes them.
type SessionRepo struct{ db *DB }

func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

const (
	qSessionsUpcoming = `
SELECT id, sport, starts_at, ends_at,
       reminder_template, missing_players_template, day_before_template
FROM training_sessions
WHERE starts_at >= $1 AND starts_at < $2
ORDER BY starts_at;`

	qSessionByID = `
SELECT id, sport, starts_at, ends_at,
       reminder_template, missing_players_template, day_before_template
FROM training_sessions
WHERE id = $1;`

	qRegistrationsFor = `
SELECT r.id, r.training_id, r.member_id, m.role, r.created_at
FROM registrations r
JOIN members m ON m.id = r.member_id
WHERE r.training_id = ANY($1)
ORDER BY r.training_id, r.id;`
)

func (r *SessionRepo) ListUpcoming(ctx context.Context, from, to time.Time) ([]*session.Session, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qSessionsUpcoming, from, to)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var (
		out []*session.Session
		ids []int64
	)
	for rows.Next() {
		var s session.Session
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, &s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	if err := r.attachRegistrations(ctx, out, ids); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id int64) (*session.Session, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var s session.Session
	if err := scanSession(r.db.Pool.QueryRow(ctx, qSessionByID, id), &s); err != nil {
		return nil, err
	}
	if err := r.attachRegistrations(ctx, []*session.Session{&s}, []int64{id}); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) attachRegistrations(ctx context.Context, sessions []*session.Session, ids []int64) error {
	rows, err := r.db.Pool.Query(ctx, qRegistrationsFor, ids)
	if err != nil {
		return fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*session.Session, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
	}
	for rows.Next() {
		var reg session.Registration
		if err := rows.Scan(&reg.ID, &reg.TrainingID, &reg.MemberID, &reg.Role, &reg.CreatedAt); err != nil {
			return fmt.Errorf("scan registration: %w", err)
		}
		if s, ok := byID[reg.TrainingID]; ok {
			s.Registrations = append(s.Registrations, reg)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	return nil
}

func scanSession(row pgx.Row, s *session.Session) error {
	var reminderTpl, missingTpl, dayTpl sql.NullString
	if err := row.Scan(
		&s.ID,
		&s.Sport,
		&s.StartsAt,
		&s.EndsAt,
		&reminderTpl,
		&missingTpl,
		&dayTpl,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan session: %w", err)
	}
	s.ReminderTemplate = reminderTpl.String
	s.MissingPlayersTemplate = missingTpl.String
	s.DayBeforeTemplate = dayTpl.String
	return nil
}
