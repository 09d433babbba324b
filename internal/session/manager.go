// Package session tracks signed-in users. Each login gets a signed token that
// names a server side snapshot; the snapshot is persisted so sessions survive
// a restart and expire after a period without activity.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/shared"
	"github.com/odyssey-erp/teamhub/internal/users"
)

// DefaultTimeout is how long a session stays valid without a refresh.
const DefaultTimeout = 48 * time.Hour

// DefaultPage is where a new session starts.
const DefaultPage = "dashboard"

// Snapshot is the persisted form of a session. A nil timestamp marks a
// session that can never be valid.
type Snapshot struct {
	ID               string   `json:"id"`
	Username         string   `json:"username"`
	SessionTimestamp *float64 `json:"session_timestamp"`
	CurrentPage      string   `json:"current_page"`
}

// Session is a live, validated session.
type Session struct {
	ID          string
	Username    string
	Timestamp   time.Time
	CurrentPage string
	// Shown remembers alerted notifications for this session only.
	Shown *notifications.ShownIDs
}

// clone copies the session for callers outside the lock. Shown stays shared.
func (s *Session) clone() *Session {
	cp := *s
	return &cp
}

// Viewer returns the notification viewer for this session.
func (s *Session) Viewer() notifications.Viewer {
	return notifications.Viewer{Username: s.Username, Shown: s.Shown}
}

// Token is what Login hands back to the client.
type Token struct {
	Value   string   `json:"token"`
	Session *Session `json:"-"`
}

// Authenticator checks credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (users.User, error)
}

// Manager owns live sessions and their snapshots.
type Manager struct {
	store   docstore.Store
	auth    Authenticator
	signer  *Signer
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu   sync.Mutex
	live map[string]*Session
}

// Option customises a Manager.
type Option func(*Manager)

// WithTimeout sets the inactivity timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager constructs a Manager.
func NewManager(store docstore.Store, auth Authenticator, signer *Signer, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		store:   store,
		auth:    auth,
		signer:  signer,
		timeout: DefaultTimeout,
		logger:  logger,
		now:     time.Now,
		live:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Timeout reports the inactivity timeout.
func (m *Manager) Timeout() time.Duration { return m.timeout }

// Login authenticates and opens a session.
func (m *Manager) Login(ctx context.Context, username, password string) (Token, error) {
	user, err := m.auth.Authenticate(ctx, username, password)
	if err != nil {
		return Token{}, err
	}
	now := m.now()
	sess := &Session{
		ID:          ids.New(),
		Username:    user.Username,
		Timestamp:   now,
		CurrentPage: DefaultPage,
		Shown:       notifications.NewShownIDs(),
	}
	value, err := m.signer.Issue(sess.ID, sess.Username, now)
	if err != nil {
		return Token{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.persistLocked(ctx, sess); err != nil {
		return Token{}, err
	}
	m.live[sess.ID] = sess
	m.logger.Info("session opened", slog.String("username", sess.Username), slog.String("session_id", sess.ID))
	return Token{Value: value, Session: sess.clone()}, nil
}

// Validate resolves a token to a copy of its live session. Sessions unknown to this
// process are restored from their snapshot. Expired sessions are erased and
// reported as shared.ErrExpired.
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	claims, err := m.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, err := m.validateLocked(ctx, claims)
	if err != nil {
		return nil, err
	}
	return sess.clone(), nil
}

// Refresh re-stamps the session, sliding its expiry forward.
func (m *Manager) Refresh(ctx context.Context, token string) (*Session, error) {
	claims, err := m.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, err := m.validateLocked(ctx, claims)
	if err != nil {
		return nil, err
	}
	sess.Timestamp = m.now()
	if err := m.persistLocked(ctx, sess); err != nil {
		return nil, err
	}
	return sess.clone(), nil
}

// SetPage records the page the user is on.
func (m *Manager) SetPage(ctx context.Context, token, page string) error {
	claims, err := m.signer.Parse(token)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, err := m.validateLocked(ctx, claims)
	if err != nil {
		return err
	}
	sess.CurrentPage = page
	return m.persistLocked(ctx, sess)
}

// Logout erases the session and its shown-notification memory.
func (m *Manager) Logout(ctx context.Context, token string) error {
	claims, err := m.signer.Parse(token)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.live[claims.ID]; ok {
		sess.Shown.Reset()
		delete(m.live, claims.ID)
	}
	if err := m.deleteLocked(ctx, claims.ID); err != nil {
		return err
	}
	m.logger.Info("session closed", slog.String("username", claims.Subject), slog.String("session_id", claims.ID))
	return nil
}

// Sweep erases every expired snapshot and returns how many were removed.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all, err := m.snapshotsLocked(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for id, snap := range all {
		if m.valid(snap.SessionTimestamp) {
			continue
		}
		delete(all, id)
		delete(m.live, id)
		removed++
	}
	if removed == 0 {
		return 0, nil
	}
	if err := docstore.Write(ctx, m.store, docstore.Sessions, all); err != nil {
		return 0, fmt.Errorf("session: sweep: %w", err)
	}
	return removed, nil
}

func (m *Manager) validateLocked(ctx context.Context, claims *Claims) (*Session, error) {
	if sess, ok := m.live[claims.ID]; ok {
		if m.fresh(sess.Timestamp) {
			return sess, nil
		}
		delete(m.live, claims.ID)
		if err := m.deleteLocked(ctx, claims.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("session %s: %w", claims.ID, shared.ErrExpired)
	}

	all, err := m.snapshotsLocked(ctx)
	if err != nil {
		return nil, err
	}
	snap, ok := all[claims.ID]
	if !ok || snap.Username != claims.Subject {
		return nil, fmt.Errorf("session %s: %w", claims.ID, shared.ErrExpired)
	}
	if !m.valid(snap.SessionTimestamp) {
		if err := m.deleteLocked(ctx, claims.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("session %s: %w", claims.ID, shared.ErrExpired)
	}
	page := snap.CurrentPage
	if page == "" {
		page = DefaultPage
	}
	sess := &Session{
		ID:          snap.ID,
		Username:    snap.Username,
		Timestamp:   fromEpoch(*snap.SessionTimestamp),
		CurrentPage: page,
		Shown:       notifications.NewShownIDs(),
	}
	m.live[sess.ID] = sess
	return sess, nil
}

// valid reports whether a snapshot stamped at ts is younger than the timeout.
func (m *Manager) valid(ts *float64) bool {
	if ts == nil || *ts == 0 {
		return false
	}
	return m.fresh(fromEpoch(*ts))
}

func (m *Manager) fresh(stamped time.Time) bool {
	return m.now().Sub(stamped) < m.timeout
}

func (m *Manager) snapshotsLocked(ctx context.Context) (map[string]Snapshot, error) {
	all, err := docstore.Read[map[string]Snapshot](ctx, m.store, docstore.Sessions)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if all == nil {
		all = make(map[string]Snapshot)
	}
	return all, nil
}

func (m *Manager) persistLocked(ctx context.Context, sess *Session) error {
	all, err := m.snapshotsLocked(ctx)
	if err != nil {
		return err
	}
	ts := toEpoch(sess.Timestamp)
	all[sess.ID] = Snapshot{ID: sess.ID, Username: sess.Username, SessionTimestamp: &ts, CurrentPage: sess.CurrentPage}
	if err := docstore.Write(ctx, m.store, docstore.Sessions, all); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

func (m *Manager) deleteLocked(ctx context.Context, id string) error {
	all, err := m.snapshotsLocked(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[id]; !ok {
		return nil
	}
	delete(all, id)
	if err := docstore.Write(ctx, m.store, docstore.Sessions, all); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

func toEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromEpoch(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}
