package session

import (
	"time"

	"github.com/kickoffhq/clubpush/internal/domain/member"
)

// Session is a scheduled training event. It is owned by the scheduling part
// of the application; this subsystem only reads it.
type Session struct {
	ID       int64     `json:"id"`
	Sport    string    `json:"sport"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`

	// Optional per-session template overrides; empty means use the default.
	ReminderTemplate       string `json:"reminder_template"`
	MissingPlayersTemplate string `json:"missing_players_template"`
	DayBeforeTemplate      string `json:"day_before_template"`

	Registrations []Registration `json:"registrations"`
}

type Registration struct {
	ID         int64     `json:"id"`
	TrainingID int64     `json:"training_id"`
	MemberID   int64     `json:"member_id"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlayerCount counts registrants signed up as players; referees and coaches
// do not count toward the minimum-players threshold.
func (s *Session) PlayerCount() int {
	n := 0
	for _, r := range s.Registrations {
		if r.Role == member.RolePlayer {
			n++
		}
	}
	return n
}

func (s *Session) HoursUntil(now time.Time) float64 {
	return s.StartsAt.Sub(now).Hours()
}
