package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/kickoffhq/clubpush/internal/domain/attendance"
)

var _ attendance.Repo = (*AttendanceRepo)(nil)

type AttendanceRepo struct{ db *DB }

func NewAttendanceRepo(db *DB) *AttendanceRepo { return &AttendanceRepo{db: db} }

const qAttendanceAggregate = `
SELECT m.id,
       m.name,
       m.sport,
       COUNT(a.id)                                   AS sessions,
       COUNT(a.id) FILTER (WHERE a.present)          AS attended
FROM attendance_records a
JOIN members m           ON m.id = a.member_id
JOIN training_sessions t ON t.id = a.training_id
WHERE t.starts_at >= $1 AND t.starts_at < $2
  AND ($3 = '' OR t.sport = $3)
GROUP BY m.id, m.name, m.sport
ORDER BY m.name;`

func (r *AttendanceRepo) Aggregate(ctx context.Context, from, to time.Time, sport string) ([]*attendance.MemberStat, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qAttendanceAggregate, from, to, sport)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	var out []*attendance.MemberStat
	for rows.Next() {
		var s attendance.MemberStat
		if err := rows.Scan(&s.MemberID, &s.MemberName, &s.Sport, &s.Sessions, &s.Attended); err != nil {
			return nil, fmt.Errorf("scan attendance stat: %w", err)
		}
		if s.Sessions > 0 {
			s.Percent = 100 * float64(s.Attended) / float64(s.Sessions)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
