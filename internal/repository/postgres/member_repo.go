package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kickoffhq/clubpush/internal/domain/member"
)

var _ member.Repo = (*MemberRepo)(nil)

type MemberRepo struct{ db *DB }

func NewMemberRepo(db *DB) *MemberRepo { return &MemberRepo{db: db} }

const qMemberByID = `
SELECT id, name, role, sport, team, created_at, updated_at
FROM members
WHERE id = $1;`

func (r *MemberRepo) GetByID(ctx context.Context, id int64) (*member.Member, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var m member.Member
	if err := r.db.Pool.QueryRow(ctx, qMemberByID, id).
		Scan(&m.ID, &m.Name, &m.Role, &m.Sport, &m.Team, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan member: %w", err)
	}
	return &m, nil
}
