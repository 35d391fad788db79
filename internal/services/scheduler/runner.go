package scheduler

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	config "github.com/kickoffhq/clubpush/internal/config/scheduler"
)

type Runner struct {
	Log *zap.Logger
	UC  *Usecase
	Cfg *config.SchedCfg

	mFetched   prometheus.Counter
	mPublished prometheus.Counter
	mSkipped   prometheus.Counter
	mErr       prometheus.Counter
	mLoopDur   prometheus.Histogram
}

func New(log *zap.Logger, uc *Usecase, cfg *config.SchedCfg) *Runner {
	return &Runner{
		Log: log,
		UC:  uc,
		Cfg: cfg,
		mFetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_sessions_fetched_total", Help: "Upcoming sessions fetched from DB",
		}),
		mPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_reminders_published_total", Help: "Dispatch events published to Kafka",
		}),
		mSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_reminders_skipped_total", Help: "Band hits skipped as already claimed",
		}),
		mErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_errors_total", Help: "Errors in scheduler loop",
		}),
		mLoopDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "scheduler_loop_duration_seconds", Help: "Scheduler tick duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	res, err := r.UC.Tick(ctx)
	if err != nil {
		r.mErr.Inc()
		r.Log.Warn("tick error", zap.Error(err))
	}
	if res.Fetched > 0 {
		r.mFetched.Add(float64(res.Fetched))
		r.mPublished.Add(float64(res.Published))
		r.mSkipped.Add(float64(res.Skipped))
		if res.Errors > 0 {
			r.mErr.Add(float64(res.Errors))
		}
		r.Log.Debug("evaluated sessions",
			zap.Int("fetched", res.Fetched),
			zap.Int("published", res.Published),
			zap.Int("skipped", res.Skipped),
			zap.Int("errors", res.Errors),
		)
	}
	r.mLoopDur.Observe(time.Since(start).Seconds())
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Cfg.Tick)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}
