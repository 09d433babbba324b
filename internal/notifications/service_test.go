package notifications

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []Alert
	err    error
}

func (r *recordingAlerter) Alert(_ context.Context, alert Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
	return r.err
}

func (r *recordingAlerter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

type stubPrefs map[string]Preferences

func (s stubPrefs) Preferences(_ context.Context, username string) (Preferences, error) {
	if p, ok := s[username]; ok {
		return p, nil
	}
	return DefaultPreferences(), nil
}

type stubNames map[string]string

func (s stubNames) FullName(_ context.Context, username string) string {
	return s[username]
}

type failingStore struct {
	docstore.Store
	saveErr error
}

func (f failingStore) Save(ctx context.Context, c docstore.Collection, doc []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Store.Save(ctx, c, doc)
}

type countingRecorder struct {
	notifications map[string]int
	alerts        map[string]int
}

func (c *countingRecorder) CountNotification(t, p string) { c.notifications[t+"/"+p]++ }
func (c *countingRecorder) CountAlert(outcome string)    { c.alerts[outcome]++ }

func newTestService(t *testing.T, prefs PreferenceSource) (*Service, *recordingAlerter) {
	t.Helper()
	alerter := &recordingAlerter{}
	svc := NewService(NewRepository(docstore.NewMemory()), prefs, stubNames{"alice": "Alice Admin"}, alerter, nil)
	return svc, alerter
}

func TestNotifyAppendsInOrder(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	first, err := svc.Notify(ctx, Outgoing{To: "bob", Title: "One", Message: "first"})
	require.NoError(t, err)
	second, err := svc.Notify(ctx, Outgoing{To: "bob", Title: "Two", Message: "second", Type: TypeTask, Priority: PriorityHigh})
	require.NoError(t, err)

	assert.Equal(t, TypeInfo, first.Type)
	assert.Equal(t, PriorityNormal, first.Priority)
	assert.False(t, first.Read)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotZero(t, first.Timestamp)

	box, err := svc.Mailbox(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, box, 2)
	assert.Equal(t, "One", box[0].Title)
	assert.Equal(t, "Two", box[1].Title)

	empty, err := svc.Mailbox(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNotifyRejectsUnknownEnums(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Notify(ctx, Outgoing{To: "bob", Type: "gossip"})
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Notify(ctx, Outgoing{To: "bob", Priority: "urgent"})
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Notify(ctx, Outgoing{To: " "})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestNotifySurfacesPersistenceErrors(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewService(NewRepository(failingStore{Store: docstore.NewMemory(), saveErr: boom}), nil, nil, &recordingAlerter{}, nil)
	_, err := svc.Notify(context.Background(), Outgoing{To: "bob", Title: "x"})
	require.ErrorIs(t, err, boom)
}

func TestNotifyAlertsViewerOnce(t *testing.T) {
	svc, alerter := newTestService(t, nil)
	shown := NewShownIDs()
	ctx := WithViewer(context.Background(), Viewer{Username: "bob", Shown: shown})

	n, err := svc.Notify(ctx, Outgoing{To: "bob", Title: "Hello", Type: TypeChat})
	require.NoError(t, err)
	require.Equal(t, 1, alerter.count())
	assert.Equal(t, n.ID, alerter.alerts[0].NotificationID)
	assert.Equal(t, "💬", alerter.alerts[0].Style.Icon)
	assert.True(t, alerter.alerts[0].Sound)

	_, err = svc.Notify(ctx, Outgoing{To: "carol", Title: "Not for the viewer"})
	require.NoError(t, err)
	assert.Equal(t, 1, alerter.count())

	alerts, err := svc.ShowPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts, "already shown")
	assert.Equal(t, 1, alerter.count())
}

func TestNotifyHonoursSettings(t *testing.T) {
	prefs := stubPrefs{
		"quiet":   {Enabled: true, Sound: false, Popup: true},
		"nopopup": {Enabled: true, Sound: true, Popup: false},
		"off":     {Enabled: false, Sound: true, Popup: true},
	}
	svc, alerter := newTestService(t, prefs)

	for _, user := range []string{"quiet", "nopopup", "off"} {
		ctx := WithViewer(context.Background(), Viewer{Username: user, Shown: NewShownIDs()})
		_, err := svc.Notify(ctx, Outgoing{To: user, Title: "hi"})
		require.NoError(t, err)
	}
	require.Equal(t, 1, alerter.count())
	assert.Equal(t, "quiet", alerter.alerts[0].Username)
	assert.False(t, alerter.alerts[0].Sound)
}

func TestAlertFailureDoesNotFailNotify(t *testing.T) {
	alerter := &recordingAlerter{err: errors.New("redis gone")}
	rec := &countingRecorder{notifications: map[string]int{}, alerts: map[string]int{}}
	svc := NewService(NewRepository(docstore.NewMemory()), nil, nil, alerter, nil, WithRecorder(rec))

	ctx := WithViewer(context.Background(), Viewer{Username: "bob", Shown: NewShownIDs()})
	_, err := svc.Notify(ctx, Outgoing{To: "bob", Title: "hi", Type: TypeTask, Priority: PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.notifications["task/high"])
	assert.Equal(t, 1, rec.alerts["failed"])
}

func TestShowPendingAlertsUnreadOnce(t *testing.T) {
	svc, alerter := newTestService(t, nil)
	base := context.Background()

	a, err := svc.Notify(base, Outgoing{To: "bob", Title: "a"})
	require.NoError(t, err)
	_, err = svc.Notify(base, Outgoing{To: "bob", Title: "b"})
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(base, "bob", a.ID))
	assert.Zero(t, alerter.count(), "no viewer, no alert")

	shown := NewShownIDs()
	ctx := WithViewer(base, Viewer{Username: "bob", Shown: shown})
	alerts, err := svc.ShowPending(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "b", alerts[0].Title)

	alerts, err = svc.ShowPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	shown.Reset()
	alerts, err = svc.ShowPending(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts, 1, "reset after logout shows again")

	none, err := svc.ShowPending(base)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestReadStateOperations(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	var created []Notification
	for _, title := range []string{"a", "b", "c"} {
		n, err := svc.Notify(ctx, Outgoing{To: "bob", Title: title})
		require.NoError(t, err)
		created = append(created, n)
	}

	count, err := svc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, svc.MarkRead(ctx, "bob", created[0].ID))
	require.NoError(t, svc.MarkRead(ctx, "bob", created[0].ID))
	count, err = svc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkRead(ctx, "bob", "missing"))
	require.NoError(t, svc.MarkRead(ctx, "nobody", created[1].ID))
	count, err = svc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.Delete(ctx, "bob", created[1].ID))
	require.ErrorIs(t, svc.Delete(ctx, "bob", created[1].ID), shared.ErrNotFound)

	changed, err := svc.MarkAllRead(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	box, err := svc.Mailbox(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, box, 2)
	assert.Equal(t, "a", box[0].Title)
	assert.Equal(t, "c", box[1].Title)
}

func TestPurgeRead(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now.Add(-40 * 24 * time.Hour)
	svc := NewService(NewRepository(docstore.NewMemory()), nil, nil, &recordingAlerter{}, nil, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	old, err := svc.Notify(ctx, Outgoing{To: "bob", Title: "old read"})
	require.NoError(t, err)
	_, err = svc.Notify(ctx, Outgoing{To: "bob", Title: "old unread"})
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(ctx, "bob", old.ID))

	clock = now
	recent, err := svc.Notify(ctx, Outgoing{To: "bob", Title: "recent read"})
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(ctx, "bob", recent.ID))

	removed, err := svc.PurgeRead(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	box, err := svc.Mailbox(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, box, 2)
	assert.Equal(t, "old unread", box[0].Title)
}

func TestConcurrentNotifyKeepsEveryEntry(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Notify(ctx, Outgoing{To: "bob", Title: "ping"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	box, err := svc.Mailbox(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, box, 20)
}

func TestMetaFallsBackToBell(t *testing.T) {
	assert.Equal(t, Style{Icon: "📋", Color: "#4CAF50", Frequency: 800}, Meta(TypeTask))
	assert.Equal(t, Style{Icon: "❌", Color: "#F44336", Frequency: 200}, Meta(TypeError))
	assert.Equal(t, Style{Icon: "🔔", Color: "#2196F3", Frequency: 600}, Meta("unknown"))
	assert.True(t, strings.HasPrefix(Meta(TypeInfo).Icon, "ℹ"))
}
