package member

import "time"

const (
	RolePlayer  = "player"
	RoleReferee = "referee"
	RoleCoach   = "coach"
	RoleAdmin   = "admin"
)

type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Sport     string    `json:"sport"`
	Team      string    `json:"team"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Member) IsAdmin() bool { return m.Role == RoleAdmin }
