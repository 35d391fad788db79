package kafka

import (
	"context"

	"github.com/kickoffhq/clubpush/internal/domain/reminder"
)

// DispatchEventsKafka publishes reminder dispatch requests keyed by training
// id (broadcasts key on zero, landing on one partition; volume is tiny).
type DispatchEventsKafka struct {
	p *Producer
}

func NewDispatchEventsKafka(p *Producer) *DispatchEventsKafka { return &DispatchEventsKafka{p: p} }

var _ reminder.Events = (*DispatchEventsKafka)(nil)

func (e *DispatchEventsKafka) PublishDispatch(ctx context.Context, d *reminder.Dispatch) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(d.TrainingID), d)
}
