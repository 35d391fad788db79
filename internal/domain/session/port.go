package session

import (
	"context"
	"time"
)

type Repo interface {
	// ListUpcoming returns sessions with starts_at in [from, to), each with
	// its registrations loaded.
	ListUpcoming(ctx context.Context, from, to time.Time) ([]*Session, error)
	GetByID(ctx context.Context, id int64) (*Session, error)
}
