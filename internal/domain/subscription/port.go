package subscription

import "context"

type Repo interface {
	// Upsert inserts the subscription or, when a row for the same
	// (member_id, device_id) exists, replaces its delivery target.
	// Last write wins.
	Upsert(ctx context.Context, s *Subscription) error
	ListAll(ctx context.Context) ([]*Subscription, error)
	// ListBySport restricts to subscriptions of members whose sport matches.
	ListBySport(ctx context.Context, sport string) ([]*Subscription, error)
	ListByMember(ctx context.Context, memberID int64) ([]*Subscription, error)
	Delete(ctx context.Context, id int64) error
	DeleteByMember(ctx context.Context, memberID int64) error
}
