package preference

import "context"

type Repo interface {
	// GetOrCreate returns the member's row, creating a disabled one on first
	// load.
	GetOrCreate(ctx context.Context, memberID int64) (*Preference, error)
	// Set upserts the bit; at most one row per member.
	Set(ctx context.Context, memberID int64, enabled bool) (*Preference, error)
}
