package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/kickoffhq/clubpush/internal/domain/history"
	"github.com/kickoffhq/clubpush/internal/domain/member"
	"github.com/kickoffhq/clubpush/internal/domain/preference"
	"github.com/kickoffhq/clubpush/internal/domain/reminder"
	"github.com/kickoffhq/clubpush/internal/domain/subscription"
	"github.com/kickoffhq/clubpush/internal/obs"
)

var ErrValidation = errors.New("validation failed")

// Usecase backs the HTTP surface: subscription lifecycle, the preference
// bit, history reads and admin broadcasts.
type Usecase struct {
	Members member.Repo
	Subs    subscription.Repo
	Prefs   preference.Repo
	History history.Repo
	Events  reminder.Events
	Log     *zap.Logger
	Clock   func() time.Time
}

func NewUC(members member.Repo, subs subscription.Repo, prefs preference.Repo, hist history.Repo, events reminder.Events, log *zap.Logger) *Usecase {
	return &Usecase{Members: members, Subs: subs, Prefs: prefs, History: hist, Events: events, Log: log, Clock: time.Now}
}

// Profile returns the caller's membership record.
func (u *Usecase) Profile(ctx context.Context, memberID int64) (*member.Member, error) {
	return u.Members.GetByID(ctx, memberID)
}

// SaveSubscription stores or replaces the caller's registration for one
// device. A repeat call with the same device id overwrites the previous
// credentials, so a refreshed token never leaves a stale row behind.
func (u *Usecase) SaveSubscription(ctx context.Context, sub *subscription.Subscription) error {
	ctx, span := otel.Tracer("api").Start(ctx, "api.save_subscription")
	defer span.End()

	if err := validateSubscription(sub); err != nil {
		return err
	}
	if err := u.Subs.Upsert(ctx, sub); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}

	// Registering a device implies the member wants pushes.
	if _, err := u.Prefs.Set(ctx, sub.MemberID, true); err != nil {
		obs.WithTrace(ctx, u.Log).Warn("enable preference after subscribe", zap.Error(err))
	}
	return nil
}

func validateSubscription(sub *subscription.Subscription) error {
	if sub.DeviceID == "" {
		return fmt.Errorf("%w: device_id is required", ErrValidation)
	}
	if !subscription.ValidDeviceType(sub.DeviceType) {
		return fmt.Errorf("%w: device_type must be web, android or ios", ErrValidation)
	}
	if sub.IsWeb() {
		if sub.Endpoint == "" || sub.P256dh == "" || sub.Auth == "" {
			return fmt.Errorf("%w: web subscriptions need endpoint, p256dh and auth", ErrValidation)
		}
		return nil
	}
	if sub.Token == "" {
		return fmt.Errorf("%w: native subscriptions need a token", ErrValidation)
	}
	return nil
}

// RemoveSubscriptions drops every device registration the member holds.
func (u *Usecase) RemoveSubscriptions(ctx context.Context, memberID int64) error {
	ctx, span := otel.Tracer("api").Start(ctx, "api.remove_subscriptions")
	defer span.End()

	if err := u.Subs.DeleteByMember(ctx, memberID); err != nil {
		return fmt.Errorf("delete subscriptions: %w", err)
	}
	return nil
}

func (u *Usecase) ListSubscriptions(ctx context.Context, memberID int64) ([]*subscription.Subscription, error) {
	return u.Subs.ListByMember(ctx, memberID)
}

func (u *Usecase) GetPreference(ctx context.Context, memberID int64) (*preference.Preference, error) {
	return u.Prefs.GetOrCreate(ctx, memberID)
}

// SetPreference flips the push switch. Disabling removes the subscription
// rows first: the rows drive delivery, so once they are gone no push can go
// out even if flipping the bit fails afterwards.
func (u *Usecase) SetPreference(ctx context.Context, memberID int64, enabled bool) (*preference.Preference, error) {
	ctx, span := otel.Tracer("api").Start(ctx, "api.set_preference")
	defer span.End()

	if !enabled {
		if err := u.Subs.DeleteByMember(ctx, memberID); err != nil {
			return nil, fmt.Errorf("delete subscriptions: %w", err)
		}
	}
	pref, err := u.Prefs.Set(ctx, memberID, enabled)
	if err != nil {
		return nil, fmt.Errorf("set preference: %w", err)
	}
	return pref, nil
}

func (u *Usecase) RecentHistory(ctx context.Context, limit int) ([]*history.Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return u.History.ListRecent(ctx, limit)
}

// Broadcast publishes an admin announcement. With a sport set, only members
// of that section receive it.
func (u *Usecase) Broadcast(ctx context.Context, title, body, sport string) error {
	ctx, span := otel.Tracer("api").Start(ctx, "api.broadcast")
	defer span.End()

	if title == "" && body == "" {
		return fmt.Errorf("%w: title or body is required", ErrValidation)
	}

	ev := &reminder.Dispatch{
		Title:       title,
		Body:        body,
		Sport:       sport,
		TargetGroup: reminder.TargetAll,
		RequestedAt: u.Clock(),
	}
	if sport != "" {
		ev.TargetGroup = reminder.TargetSport
	}
	if err := u.Events.PublishDispatch(ctx, ev); err != nil {
		return fmt.Errorf("publish broadcast: %w", err)
	}
	return nil
}
