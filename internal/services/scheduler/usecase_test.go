package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickoffhq/clubpush/internal/domain/member"
	"github.com/kickoffhq/clubpush/internal/domain/reminder"
	"github.com/kickoffhq/clubpush/internal/domain/session"
	"github.com/kickoffhq/clubpush/internal/notify"
)

type fakeSessions struct {
	sessions []*session.Session
}

func (f *fakeSessions) ListUpcoming(_ context.Context, from, to time.Time) ([]*session.Session, error) {
	var out []*session.Session
	for _, s := range f.sessions {
		if !s.StartsAt.Before(from) && s.StartsAt.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessions) GetByID(_ context.Context, id int64) (*session.Session, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

type fakeLog struct {
	claimed map[string]bool
}

func (f *fakeLog) Claim(_ context.Context, trainingID int64, band reminder.Band) (bool, error) {
	if f.claimed == nil {
		f.claimed = map[string]bool{}
	}
	k := fmt.Sprintf("%d/%s", trainingID, band)
	if f.claimed[k] {
		return false, nil
	}
	f.claimed[k] = true
	return true, nil
}

type fakeEvents struct {
	published []*reminder.Dispatch
}

func (f *fakeEvents) PublishDispatch(_ context.Context, d *reminder.Dispatch) error {
	f.published = append(f.published, d)
	return nil
}

func players(n int) []session.Registration {
	regs := make([]session.Registration, n)
	for i := range regs {
		regs[i] = session.Registration{MemberID: int64(i + 1), Role: member.RolePlayer}
	}
	return regs
}

func newTestUC(sessions ...*session.Session) (*Usecase, *fakeEvents, time.Time) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	ev := &fakeEvents{}
	uc := NewUC(&fakeSessions{sessions: sessions}, &fakeLog{}, ev, func() time.Time { return now }, 6)
	return uc, ev, now
}

func TestTick_WeekBand_MissingPlayers(t *testing.T) {
	uc, ev, now := newTestUC(&session.Session{
		ID: 1, Sport: "futsal", StartsAt: now168(t), Registrations: players(5),
	})
	_ = now

	res, err := uc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)

	require.Len(t, ev.published, 1)
	d := ev.published[0]
	assert.Equal(t, reminder.BandWeekBefore, d.Band)
	assert.Equal(t, notify.MissingPlayersTitle, d.Title)
	assert.Contains(t, d.Body, "5 inscrits")
	assert.Equal(t, "futsal", d.Sport)
}

func TestTick_WeekBand_EnoughPlayers(t *testing.T) {
	uc, ev, _ := newTestUC(&session.Session{
		ID: 1, Sport: "futsal", StartsAt: now168(t), Registrations: players(7),
	})

	_, err := uc.Tick(context.Background())
	require.NoError(t, err)

	require.Len(t, ev.published, 1)
	assert.Equal(t, notify.ReminderTitle, ev.published[0].Title)
	for _, d := range ev.published {
		assert.NotEqual(t, notify.MissingPlayersTitle, d.Title)
	}
}

func TestTick_WeekBand_ThresholdIsMutuallyExclusive(t *testing.T) {
	// Exactly at the threshold: the generic reminder, never both.
	uc, ev, _ := newTestUC(&session.Session{
		ID: 1, Sport: "handball", StartsAt: now168(t), Registrations: players(6),
	})

	_, err := uc.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, ev.published, 1)
	assert.Equal(t, notify.ReminderTitle, ev.published[0].Title)
}

func TestTick_DayBand_IgnoresPlayerCount(t *testing.T) {
	uc, ev, now := newTestUC(&session.Session{
		ID: 2, Sport: "futsal", StartsAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC).Add(24 * time.Hour),
	})
	_ = now

	_, err := uc.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, ev.published, 1)
	assert.Equal(t, reminder.BandDayBefore, ev.published[0].Band)
	assert.Equal(t, notify.DayBeforeTitle, ev.published[0].Title)
}

func TestTick_OutsideBands_NothingSent(t *testing.T) {
	uc, ev, now := newTestUC(&session.Session{
		ID: 3, Sport: "futsal", StartsAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC).Add(100 * time.Hour),
	})
	_ = now

	res, err := uc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fetched)
	assert.Empty(t, ev.published)
}

func TestTick_DuplicateRunInsideBand_SkipsResend(t *testing.T) {
	uc, ev, _ := newTestUC(&session.Session{
		ID: 4, Sport: "futsal", StartsAt: now168(t), Registrations: players(7),
	})

	_, err := uc.Tick(context.Background())
	require.NoError(t, err)
	res, err := uc.Tick(context.Background())
	require.NoError(t, err)

	assert.Len(t, ev.published, 1)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Published)
}

func TestTick_CustomTemplateWins(t *testing.T) {
	s := &session.Session{
		ID:                4,
		Sport:             "basket",
		StartsAt:          time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC).Add(24 * time.Hour),
		DayBeforeTemplate: "Demain {sport}, salle B",
	}
	uc, ev, _ := newTestUC(s)

	_, err := uc.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, ev.published, 1)
	assert.Equal(t, "Demain basket, salle B", ev.published[0].Body)
}

func TestTick_BandEdges(t *testing.T) {
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		start time.Time
		sends int
	}{
		{"just inside week band upper edge", base.Add(168*time.Hour + 59*time.Minute), 1},
		{"exactly one hour past target", base.Add(169 * time.Hour), 0},
		{"just inside day band lower edge", base.Add(23*time.Hour + 1*time.Minute), 1},
		{"exactly one hour before target", base.Add(23 * time.Hour), 0},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, ev, _ := newTestUC(&session.Session{
				ID: int64(10 + i), Sport: "futsal", StartsAt: tc.start, Registrations: players(8),
			})
			_, err := uc.Tick(context.Background())
			require.NoError(t, err)
			assert.Len(t, ev.published, tc.sends)
		})
	}
}

func now168(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC).Add(168 * time.Hour)
}
