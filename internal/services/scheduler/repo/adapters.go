package repo

import (
	"context"

	"go.uber.org/zap"

	"github.com/kickoffhq/clubpush/internal/domain/reminder"
	"github.com/kickoffhq/clubpush/internal/obs/retry"
)

// Events wraps the Kafka publisher with the publish retry policy so the
// usecase stays free of backoff concerns.
type Events struct {
	P   reminder.Events
	Pol retry.Policy
}

func NewEvents(p reminder.Events, log *zap.Logger) Events {
	return Events{P: p, Pol: retry.DefaultPublishPolicy(log)}
}

func (e Events) PublishDispatch(ctx context.Context, d *reminder.Dispatch) error {
	return retry.Do(ctx, func() error { return e.P.PublishDispatch(ctx, d) }, e.Pol)
}
