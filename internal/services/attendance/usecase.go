package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	att "github.com/kickoffhq/clubpush/internal/domain/attendance"
	"github.com/kickoffhq/clubpush/internal/obs"
	"github.com/kickoffhq/clubpush/internal/obs/retry"
)

// Summary is the report handed back to the admin UI: the raw per-member
// numbers plus the generated prose.
type Summary struct {
	Period  string           `json:"period"`
	Sport   string           `json:"sport,omitempty"`
	From    time.Time        `json:"from"`
	To      time.Time        `json:"to"`
	Stats   []*att.MemberStat `json:"stats"`
	Summary string           `json:"summary"`
}

type Usecase struct {
	Stats att.Repo
	Gen   att.Summarizer
	Log   *zap.Logger
	Clock func() time.Time
}

func NewUC(stats att.Repo, gen att.Summarizer, log *zap.Logger) *Usecase {
	return &Usecase{Stats: stats, Gen: gen, Log: log, Clock: time.Now}
}

// Report aggregates attendance over the current month or current year and
// asks the generative backend for a prose summary. A summarizer failure does
// not fail the report; the numbers come back with an empty summary.
func (u *Usecase) Report(ctx context.Context, period, sport string) (*Summary, error) {
	ctx, span := otel.Tracer("attendance").Start(ctx, "attendance.report")
	defer span.End()

	if !att.ValidPeriod(period) {
		return nil, fmt.Errorf("unknown period %q", period)
	}

	from, to := reportWindow(u.Clock(), period)
	stats, err := u.Stats.Aggregate(ctx, from, to, sport)
	if err != nil {
		return nil, fmt.Errorf("aggregate attendance: %w", err)
	}

	summary := &Summary{Period: period, Sport: sport, From: from, To: to, Stats: stats}
	if len(stats) == 0 {
		return summary, nil
	}

	prompt := buildPrompt(stats, period, sport)
	err = retry.Do(ctx, func() error {
		text, gerr := u.Gen.Summarize(ctx, prompt)
		if gerr != nil {
			return gerr
		}
		summary.Summary = text
		return nil
	}, retry.DefaultPublishPolicy(u.Log))
	if err != nil {
		obs.WithTrace(ctx, u.Log).Warn("summarizer unavailable", zap.Error(err))
	}

	return summary, nil
}

// reportWindow returns [from, to) covering the calendar month or year that
// contains now.
func reportWindow(now time.Time, period string) (time.Time, time.Time) {
	if period == att.PeriodYear {
		from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(1, 0, 0)
	}
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}

func buildPrompt(stats []*att.MemberStat, period, sport string) string {
	var b strings.Builder
	b.WriteString("Tu es l'assistant d'une association sportive. ")
	b.WriteString("Rédige un court résumé en français des présences aux entraînements")
	if sport != "" {
		fmt.Fprintf(&b, " de la section %s", sport)
	}
	switch period {
	case att.PeriodYear:
		b.WriteString(" sur l'année en cours")
	default:
		b.WriteString(" sur le mois en cours")
	}
	b.WriteString(". Mets en avant les membres assidus et les baisses de participation. Données :\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "- %s (%s) : %d présences sur %d séances (%.0f%%)\n",
			s.MemberName, s.Sport, s.Attended, s.Sessions, s.Percent)
	}
	return b.String()
}
