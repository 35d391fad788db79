package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	att "github.com/kickoffhq/clubpush/internal/domain/attendance"
)

type fakeStats struct {
	rows     []*att.MemberStat
	gotFrom  time.Time
	gotTo    time.Time
	gotSport string
}

func (f *fakeStats) Aggregate(_ context.Context, from, to time.Time, sport string) ([]*att.MemberStat, error) {
	f.gotFrom, f.gotTo, f.gotSport = from, to, sport
	return f.rows, nil
}

type fakeGen struct {
	prompt string
	text   string
	err    error
}

func (f *fakeGen) Summarize(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func fixedClock() time.Time {
	return time.Date(2026, time.September, 15, 10, 0, 0, 0, time.UTC)
}

func TestReport_MonthWindow(t *testing.T) {
	stats := &fakeStats{rows: []*att.MemberStat{
		{MemberID: 1, MemberName: "Léa", Sport: "futsal", Sessions: 8, Attended: 7, Percent: 87.5},
	}}
	gen := &fakeGen{text: "Bonne assiduité ce mois-ci."}
	uc := NewUC(stats, gen, zap.NewNop())
	uc.Clock = fixedClock

	sum, err := uc.Report(context.Background(), att.PeriodMonth, "futsal")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), stats.gotFrom)
	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), stats.gotTo)
	assert.Equal(t, "futsal", stats.gotSport)
	assert.Equal(t, "Bonne assiduité ce mois-ci.", sum.Summary)
	assert.Contains(t, gen.prompt, "Léa")
	assert.Contains(t, gen.prompt, "7 présences sur 8 séances")
}

func TestReport_YearWindow(t *testing.T) {
	stats := &fakeStats{rows: []*att.MemberStat{{MemberName: "Sam", Sessions: 1, Attended: 1, Percent: 100}}}
	uc := NewUC(stats, &fakeGen{}, zap.NewNop())
	uc.Clock = fixedClock

	_, err := uc.Report(context.Background(), att.PeriodYear, "")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), stats.gotFrom)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), stats.gotTo)
}

func TestReport_UnknownPeriod(t *testing.T) {
	uc := NewUC(&fakeStats{}, &fakeGen{}, zap.NewNop())
	uc.Clock = fixedClock

	_, err := uc.Report(context.Background(), "week", "")
	assert.Error(t, err)
}

func TestReport_NoStatsSkipsSummarizer(t *testing.T) {
	gen := &fakeGen{}
	uc := NewUC(&fakeStats{}, gen, zap.NewNop())
	uc.Clock = fixedClock

	sum, err := uc.Report(context.Background(), att.PeriodMonth, "")
	require.NoError(t, err)
	assert.Empty(t, sum.Summary)
	assert.Empty(t, gen.prompt)
}

func TestReport_SummarizerFailureKeepsNumbers(t *testing.T) {
	stats := &fakeStats{rows: []*att.MemberStat{{MemberName: "Sam", Sessions: 4, Attended: 2, Percent: 50}}}
	gen := &fakeGen{err: errors.New("quota exhausted")}
	uc := NewUC(stats, gen, zap.NewNop())
	uc.Clock = fixedClock

	sum, err := uc.Report(context.Background(), att.PeriodMonth, "")
	require.NoError(t, err)
	assert.Empty(t, sum.Summary)
	require.Len(t, sum.Stats, 1)
}
