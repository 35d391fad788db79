package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kickoffhq/clubpush/internal/domain/reminder"
	"github.com/kickoffhq/clubpush/internal/domain/session"
	"github.com/kickoffhq/clubpush/internal/notify"
)

// fetchWindow covers the whole week band: 168h target + 1h tolerance.
const fetchWindow = 169 * time.Hour

// Usecase decides which reminders are due and publishes dispatch events. One
// Tick evaluates every upcoming session once; the reminder log keeps repeated
// ticks inside a tolerance band from resending.
type Usecase struct {
	Sessions   session.Repo
	Log        reminder.Log
	Events     reminder.Events
	Clock      func() time.Time
	MinPlayers int
}

func NewUC(sessions session.Repo, log reminder.Log, events reminder.Events, clock func() time.Time, minPlayers int) *Usecase {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if minPlayers <= 0 {
		minPlayers = 6
	}
	return &Usecase{Sessions: sessions, Log: log, Events: events, Clock: clock, MinPlayers: minPlayers}
}

type TickResult struct {
	Fetched   int
	Published int
	Skipped   int
	Errors    int
}

func (u *Usecase) Tick(ctx context.Context) (TickResult, error) {
	var res TickResult

	tr := otel.Tracer("scheduler.uc")
	ctxTick, span := tr.Start(ctx, "scheduler.tick")
	defer span.End()

	now := u.Clock()
	sessions, err := u.Sessions.ListUpcoming(ctxTick, now, now.Add(fetchWindow))
	if err != nil {
		span.RecordError(err)
		res.Errors++
		return res, fmt.Errorf("list upcoming sessions: %w", err)
	}
	res.Fetched = len(sessions)
	span.SetAttributes(attribute.Int("sessions.fetched", len(sessions)))

	for _, s := range sessions {
		hours := s.HoursUntil(now)

		if reminder.InWeekBand(hours) {
			u.fire(ctxTick, tr, s, reminder.BandWeekBefore, &res)
		}
		if reminder.InDayBand(hours) {
			u.fire(ctxTick, tr, s, reminder.BandDayBefore, &res)
		}
	}

	span.SetAttributes(
		attribute.Int("reminders.published", res.Published),
		attribute.Int("reminders.skipped", res.Skipped),
		attribute.Int("reminders.errors", res.Errors),
	)
	return res, nil
}

func (u *Usecase) fire(ctx context.Context, tr trace.Tracer, s *session.Session, band reminder.Band, res *TickResult) {
	ctx, span := tr.Start(ctx, "scheduler.fire",
		trace.WithAttributes(
			attribute.Int64("training.id", s.ID),
			attribute.String("band", string(band)),
		),
	)
	defer span.End()

	claimed, err := u.Log.Claim(ctx, s.ID, band)
	if err != nil {
		span.RecordError(err)
		res.Errors++
		return
	}
	if !claimed {
		// Already handled by an earlier run inside this band.
		span.SetAttributes(attribute.Bool("duplicate", true))
		res.Skipped++
		return
	}

	enough := s.PlayerCount() >= u.MinPlayers
	title, template := notify.ForBand(s, band, enough)
	body := notify.FormatMessage(template, notify.SessionReplacements(s))

	d := &reminder.Dispatch{
		TrainingID:  s.ID,
		Band:        band,
		Title:       title,
		Body:        body,
		Sport:       s.Sport,
		TargetGroup: reminder.TargetAll,
		RequestedAt: u.Clock(),
	}
	if err := u.Events.PublishDispatch(ctx, d); err != nil {
		span.RecordError(err)
		res.Errors++
		return
	}
	res.Published++
}
