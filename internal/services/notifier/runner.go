package notifier

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/kickoffhq/clubpush/internal/domain/reminder"
	kafkax "github.com/kickoffhq/clubpush/internal/repository/kafka"
)

type Runner struct {
	log  *zap.Logger
	cons *kafkax.Consumer
	disp *Dispatcher

	mConsumed prometheus.Counter
	mSent     prometheus.Counter
	mFailed   prometheus.Counter
	mRemoved  prometheus.Counter
	mErrors   prometheus.Counter
}

func NewRunner(log *zap.Logger, cons *kafkax.Consumer, disp *Dispatcher) *Runner {
	return &Runner{
		log:  log,
		cons: cons,
		disp: disp,
		mConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_events_consumed_total",
			Help: "Dispatch events consumed",
		}),
		mSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_pushes_sent_total",
			Help: "Pushes delivered",
		}),
		mFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_pushes_failed_total",
			Help: "Pushes that failed delivery",
		}),
		mRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_subscriptions_removed_total",
			Help: "Stale subscriptions removed after delivery errors",
		}),
		mErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_errors_total",
			Help: "Errors",
		}),
	}
}

func (r *Runner) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(
		func(ctx context.Context, _ []byte, ev *reminder.Dispatch) error {
			r.mConsumed.Inc()
			if ev.Title == "" && ev.Body == "" {
				r.log.Warn("empty dispatch event ignored")
				return nil
			}
			return r.handle(ctx, ev)
		},
	)

	if err := r.cons.Consume(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		r.mErrors.Inc()
		r.log.Warn("kafka consume", zap.Error(err))
		return err
	}
	return ctx.Err()
}

func (r *Runner) handle(ctx context.Context, ev *reminder.Dispatch) error {
	res, err := r.disp.Dispatch(ctx, ev)
	if err != nil {
		r.mErrors.Inc()
		return err
	}
	r.mSent.Add(float64(res.Sent))
	r.mFailed.Add(float64(res.Failed))
	r.mRemoved.Add(float64(res.Removed))
	r.log.Info("dispatched",
		zap.Int64("training_id", ev.TrainingID),
		zap.String("band", string(ev.Band)),
		zap.Int("targets", res.Targets),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
		zap.Int("removed", res.Removed),
	)
	return nil
}
