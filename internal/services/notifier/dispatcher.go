package notifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/kickoffhq/clubpush/internal/domain/history"
	"github.com/kickoffhq/clubpush/internal/domain/reminder"
	"github.com/kickoffhq/clubpush/internal/domain/subscription"
	"github.com/kickoffhq/clubpush/internal/obs"
)

// ErrTokenGone marks a delivery target the push service reports as no longer
// registered. The dispatcher removes the row; everything else is logged only.
var ErrTokenGone = errors.New("delivery target no longer registered")

// Dispatcher fans one dispatch event out to every stored subscription.
//
// Delivery is best effort and at-least-once: a failing token never blocks the
// others, nothing is retried, and one history row is appended per event
// regardless of per-token outcomes. Subscription rows are the authority on
// who receives a push; the preference bit is never consulted here.
type Dispatcher struct {
	Subs    subscription.Repo
	History history.Repo
	Web     WebSender
	Native  NativeSender
	Log     *zap.Logger
	Workers int
}

type DispatchResult struct {
	Targets int
	Sent    int
	Failed  int
	Removed int
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev *reminder.Dispatch) (DispatchResult, error) {
	var res DispatchResult

	subs, err := d.loadTargets(ctx, ev)
	if err != nil {
		return res, err
	}
	res.Targets = len(subs)

	n := &Notification{Title: ev.Title, Body: ev.Body, Data: eventData(ev)}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan *subscription.Subscription)
	)

	workers := d.Workers
	if workers <= 0 {
		workers = 4
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				sent, removed := d.deliver(ctx, sub, n)
				mu.Lock()
				switch {
				case sent:
					res.Sent++
				case removed:
					res.Removed++
				default:
					res.Failed++
				}
				mu.Unlock()
			}
		}()
	}
	for _, sub := range subs {
		jobs <- sub
	}
	close(jobs)
	wg.Wait()

	entry := &history.Entry{
		Title:       ev.Title,
		Content:     ev.Body,
		TargetGroup: ev.TargetGroup,
		Sport:       ev.Sport,
	}
	if ev.TrainingID != 0 {
		id := ev.TrainingID
		entry.TrainingID = &id
	}
	if err := d.History.Create(ctx, entry); err != nil {
		// The pushes already went out; the missing audit row is logged, not
		// surfaced, so the event is not redelivered.
		obs.WithTrace(ctx, d.Log).Error("append history entry", zap.Error(err))
	}

	return res, nil
}

func (d *Dispatcher) loadTargets(ctx context.Context, ev *reminder.Dispatch) ([]*subscription.Subscription, error) {
	if ev.TargetGroup == reminder.TargetSport && ev.Sport != "" {
		subs, err := d.Subs.ListBySport(ctx, ev.Sport)
		if err != nil {
			return nil, fmt.Errorf("list subscriptions by sport: %w", err)
		}
		return subs, nil
	}
	subs, err := d.Subs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// deliver sends to a single target and self-heals stale rows.
func (d *Dispatcher) deliver(ctx context.Context, sub *subscription.Subscription, n *Notification) (sent, removed bool) {
	log := obs.WithTrace(ctx, d.Log).With(
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("member_id", sub.MemberID),
		zap.String("device_type", sub.DeviceType),
	)

	var err error
	if sub.IsWeb() {
		var payload []byte
		payload, err = WebPayload(n)
		if err == nil {
			err = d.Web.Send(ctx, sub, payload)
		}
	} else {
		err = d.Native.Send(ctx, sub, n)
	}

	switch {
	case err == nil:
		return true, false
	case errors.Is(err, ErrTokenGone):
		log.Info("removing stale subscription")
		if derr := d.Subs.Delete(ctx, sub.ID); derr != nil {
			log.Error("delete stale subscription", zap.Error(derr))
		}
		return false, true
	default:
		log.Warn("delivery failed", zap.Error(err))
		return false, false
	}
}

func eventData(ev *reminder.Dispatch) map[string]string {
	data := map[string]string{}
	if ev.TrainingID != 0 {
		data["training_id"] = strconv.FormatInt(ev.TrainingID, 10)
	}
	if ev.Band != "" {
		data["band"] = string(ev.Band)
	}
	if len(data) == 0 {
		return nil
	}
	return data
}
