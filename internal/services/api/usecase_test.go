package api

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kickoffhq/clubpush/internal/domain/history"
	"github.com/kickoffhq/clubpush/internal/domain/member"
	"github.com/kickoffhq/clubpush/internal/domain/preference"
	"github.com/kickoffhq/clubpush/internal/domain/reminder"
	"github.com/kickoffhq/clubpush/internal/domain/subscription"
)

type subKey struct {
	memberID int64
	deviceID string
}

// memSubs mimics the (member_id, device_id) upsert key of the real table.
type memSubs struct {
	rows   map[subKey]*subscription.Subscription
	nextID int64
}

func newMemSubs() *memSubs {
	return &memSubs{rows: map[subKey]*subscription.Subscription{}}
}

func (m *memSubs) Upsert(_ context.Context, s *subscription.Subscription) error {
	k := subKey{s.MemberID, s.DeviceID}
	if prev, ok := m.rows[k]; ok {
		s.ID = prev.ID
	} else {
		m.nextID++
		s.ID = m.nextID
	}
	cp := *s
	m.rows[k] = &cp
	return nil
}

func (m *memSubs) ListAll(context.Context) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, s := range m.rows {
		out = append(out, s)
	}
	return out, nil
}

func (m *memSubs) ListBySport(ctx context.Context, _ string) ([]*subscription.Subscription, error) {
	return m.ListAll(ctx)
}

func (m *memSubs) ListByMember(_ context.Context, memberID int64) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, s := range m.rows {
		if s.MemberID == memberID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSubs) Delete(_ context.Context, id int64) error {
	for k, s := range m.rows {
		if s.ID == id {
			delete(m.rows, k)
			return nil
		}
	}
	return nil
}

func (m *memSubs) DeleteByMember(_ context.Context, memberID int64) error {
	for k, s := range m.rows {
		if s.MemberID == memberID {
			delete(m.rows, k)
		}
	}
	return nil
}

type memPrefs struct {
	bits map[int64]bool
	// ops records the call order so tests can assert delete-before-disable.
	ops *[]string
}

func (m *memPrefs) GetOrCreate(_ context.Context, memberID int64) (*preference.Preference, error) {
	return &preference.Preference{MemberID: memberID, PushEnabled: m.bits[memberID]}, nil
}

func (m *memPrefs) Set(_ context.Context, memberID int64, enabled bool) (*preference.Preference, error) {
	if m.ops != nil {
		*m.ops = append(*m.ops, "pref.set")
	}
	m.bits[memberID] = enabled
	return &preference.Preference{MemberID: memberID, PushEnabled: enabled}, nil
}

type capturedEvents struct {
	published []*reminder.Dispatch
}

func (c *capturedEvents) PublishDispatch(_ context.Context, d *reminder.Dispatch) error {
	c.published = append(c.published, d)
	return nil
}

type memHistory struct{ entries []*history.Entry }

func (m *memHistory) Create(_ context.Context, e *history.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memHistory) ListRecent(_ context.Context, limit int) ([]*history.Entry, error) {
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

type memMembers struct{ rows map[int64]*member.Member }

func (m *memMembers) GetByID(_ context.Context, id int64) (*member.Member, error) {
	if mem, ok := m.rows[id]; ok {
		return mem, nil
	}
	return nil, errors.New("not found")
}

func newTestUC() (*Usecase, *memSubs, *memPrefs, *capturedEvents) {
	subs := newMemSubs()
	prefs := &memPrefs{bits: map[int64]bool{}}
	events := &capturedEvents{}
	members := &memMembers{rows: map[int64]*member.Member{
		10: {ID: 10, Name: "Léa", Role: member.RolePlayer, Sport: "futsal"},
		11: {ID: 11, Name: "Sam", Role: member.RolePlayer, Sport: "handball"},
	}}
	uc := NewUC(members, subs, prefs, &memHistory{}, events, zap.NewNop())
	return uc, subs, prefs, events
}

func webSub(memberID int64, deviceID, endpoint string) *subscription.Subscription {
	return &subscription.Subscription{
		MemberID: memberID, DeviceID: deviceID, DeviceType: subscription.DeviceWeb,
		Endpoint: endpoint, P256dh: "p", Auth: "a",
	}
}

func TestSaveSubscription_ReplacesSameDevice(t *testing.T) {
	uc, subs, _, _ := newTestUC()
	ctx := context.Background()

	require.NoError(t, uc.SaveSubscription(ctx, webSub(10, "dev-1", "https://push/a")))
	require.NoError(t, uc.SaveSubscription(ctx, webSub(10, "dev-1", "https://push/b")))

	rows, err := subs.ListByMember(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "https://push/b", rows[0].Endpoint)
}

func TestSaveSubscription_SecondDeviceAddsRow(t *testing.T) {
	uc, subs, _, _ := newTestUC()
	ctx := context.Background()

	require.NoError(t, uc.SaveSubscription(ctx, webSub(10, "dev-1", "https://push/a")))
	tok := &subscription.Subscription{
		MemberID: 10, DeviceID: "dev-2", DeviceType: subscription.DeviceAndroid, Token: "tok",
	}
	require.NoError(t, uc.SaveSubscription(ctx, tok))

	rows, _ := subs.ListByMember(ctx, 10)
	assert.Len(t, rows, 2)
}

func TestSaveSubscription_EnablesPreference(t *testing.T) {
	uc, _, prefs, _ := newTestUC()

	require.NoError(t, uc.SaveSubscription(context.Background(), webSub(10, "dev-1", "https://push/a")))
	assert.True(t, prefs.bits[10])
}

func TestSaveSubscription_Validation(t *testing.T) {
	uc, _, _, _ := newTestUC()
	ctx := context.Background()

	missingKeys := webSub(10, "dev-1", "https://push/a")
	missingKeys.Auth = ""
	assert.ErrorIs(t, uc.SaveSubscription(ctx, missingKeys), ErrValidation)

	noToken := &subscription.Subscription{MemberID: 10, DeviceID: "d", DeviceType: subscription.DeviceIOS}
	assert.ErrorIs(t, uc.SaveSubscription(ctx, noToken), ErrValidation)

	badType := &subscription.Subscription{MemberID: 10, DeviceID: "d", DeviceType: "desktop"}
	assert.ErrorIs(t, uc.SaveSubscription(ctx, badType), ErrValidation)
}

func TestSetPreference_DisableRemovesSubscriptionsFirst(t *testing.T) {
	uc, subs, prefs, _ := newTestUC()
	ctx := context.Background()
	var ops []string
	prefs.ops = &ops

	require.NoError(t, uc.SaveSubscription(ctx, webSub(10, "dev-1", "https://push/a")))
	require.NoError(t, uc.SaveSubscription(ctx, webSub(11, "dev-1", "https://push/b")))
	ops = ops[:0]

	pref, err := uc.SetPreference(ctx, 10, false)
	require.NoError(t, err)
	assert.False(t, pref.PushEnabled)

	mine, _ := subs.ListByMember(ctx, 10)
	assert.Empty(t, mine)
	theirs, _ := subs.ListByMember(ctx, 11)
	assert.Len(t, theirs, 1)
	assert.Equal(t, []string{"pref.set"}, ops)
}

func TestSetPreference_EnableKeepsRows(t *testing.T) {
	uc, subs, _, _ := newTestUC()
	ctx := context.Background()

	require.NoError(t, uc.SaveSubscription(ctx, webSub(10, "dev-1", "https://push/a")))
	_, err := uc.SetPreference(ctx, 10, true)
	require.NoError(t, err)

	rows, _ := subs.ListByMember(ctx, 10)
	assert.Len(t, rows, 1)
}

func TestBroadcast_TargetsSportWhenGiven(t *testing.T) {
	uc, _, _, events := newTestUC()
	ctx := context.Background()

	require.NoError(t, uc.Broadcast(ctx, "Tournoi", "Inscriptions ouvertes", "handball"))
	require.NoError(t, uc.Broadcast(ctx, "AG", "Samedi 18h", ""))

	require.Len(t, events.published, 2)
	assert.Equal(t, reminder.TargetSport, events.published[0].TargetGroup)
	assert.Equal(t, "handball", events.published[0].Sport)
	assert.Equal(t, reminder.TargetAll, events.published[1].TargetGroup)
}

func TestProfile(t *testing.T) {
	uc, _, _, _ := newTestUC()

	m, err := uc.Profile(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "Léa", m.Name)

	_, err = uc.Profile(context.Background(), 99)
	assert.Error(t, err)
}

func TestBroadcast_EmptyRejected(t *testing.T) {
	uc, _, _, events := newTestUC()

	err := uc.Broadcast(context.Background(), "", "", "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, events.published)
}
