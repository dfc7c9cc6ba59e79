// Package session owns the identity state machine: it reconciles the
// persisted credential, the canonical profile held by the MediPro API and
// explicit login/logout actions into one consistent view of who is logged
// in and whether they are still allowed to be.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/medipro/console/internal/credential"
)

// ErrNotAuthenticated indicates an operation that requires a session was
// called without one.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// ProfileFetcher retrieves the canonical profile for the current
// credential. Implemented by the API client.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context) (*Session, error)
}

// Listener observes session replacements. The session argument is nil when
// the user becomes unauthenticated.
type Listener func(*Session)

// Manager is the single source of truth for the authenticated identity.
//
// Replacements are gated on a monotonic sequence: a profile fetch that was
// in flight when an explicit Login or Logout landed resolves against a
// stale sequence and is discarded instead of overwriting newer state.
type Manager struct {
	creds    *credential.Store
	profiles ProfileFetcher
	logger   *slog.Logger
	clock    func() time.Time

	flight singleflight.Group

	mu        sync.Mutex
	current   *Session
	seq       uint64
	listeners map[uint64]Listener
	nextSub   uint64
}

// NewManager constructs a Manager. The session starts unauthenticated until
// Bootstrap or Login runs.
func NewManager(creds *credential.Store, profiles ProfileFetcher, logger *slog.Logger) *Manager {
	return &Manager{
		creds:     creds,
		profiles:  profiles,
		logger:    logger,
		clock:     time.Now,
		listeners: make(map[uint64]Listener),
	}
}

// Bootstrap rebuilds the session from the persisted credential.
//
// A missing credential leaves the manager unauthenticated. A malformed or
// expired token is fatal: the credential is cleared and the manager ends
// unauthenticated, without surfacing an error (these are expected
// conditions, logged only). A valid token yields an optimistic session from
// its claims immediately, then a canonical profile fetch replaces it; if
// the fetch fails the claims-only fallback is retained, because the token
// was valid and only the network call failed.
func (m *Manager) Bootstrap(ctx context.Context) error {
	token, err := m.creds.Get(ctx)
	if err != nil {
		if errors.Is(err, credential.ErrNoCredential) {
			return nil
		}
		return err
	}

	claims, err := credential.DecodeClaims(token, m.clock())
	if err != nil {
		m.logger.Warn("discarding unusable credential", slog.Any("error", err))
		if clearErr := m.creds.Clear(ctx); clearErr != nil {
			m.logger.Error("clear credential", slog.Any("error", clearErr))
		}
		return nil
	}

	fallback := &Session{
		ID:    claims.ID,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}
	seq := m.replace(fallback)

	canonical, err := m.fetchProfile(ctx)
	if err != nil {
		m.logger.Warn("profile fetch failed, keeping claims fallback", slog.Any("error", err))
		return nil
	}
	m.replaceIfSeq(seq, canonical)
	return nil
}

// Login persists the token and installs the profile synchronously. No
// profile re-fetch happens here; the login response already carries the
// user data.
func (m *Manager) Login(ctx context.Context, token string, profile *Session) error {
	if err := m.creds.Set(ctx, token); err != nil {
		return err
	}
	m.replace(profile)
	return nil
}

// Logout clears the credential and the session. Subscribers observe the nil
// session and reset their per-identity state.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.creds.Clear(ctx)
	m.replace(nil)
	return err
}

// RefreshUser re-fetches the canonical profile and replaces the session
// atomically. On failure the prior session is left untouched and the error
// is returned to the caller.
func (m *Manager) RefreshUser(ctx context.Context) error {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	seq := m.seq
	m.mu.Unlock()

	canonical, err := m.fetchProfile(ctx)
	if err != nil {
		return err
	}
	m.replaceIfSeq(seq, canonical)
	return nil
}

// Current returns the session, or nil when unauthenticated.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Authenticated reports whether a session is present.
func (m *Manager) Authenticated() bool {
	return m.Current() != nil
}

// Subscribe registers a listener invoked on every session replacement,
// outside the manager lock. The returned func removes the listener.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// fetchProfile collapses concurrent fetches into one in-flight request.
func (m *Manager) fetchProfile(ctx context.Context) (*Session, error) {
	result, err, _ := m.flight.Do("profile", func() (any, error) {
		return m.profiles.FetchProfile(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Session), nil
}

// replace installs the session unconditionally and bumps the sequence so
// in-flight fetches started before this point are discarded on completion.
func (m *Manager) replace(sess *Session) uint64 {
	m.mu.Lock()
	m.seq++
	seq := m.seq
	m.current = sess
	listeners := m.snapshotListeners()
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(sess)
	}
	return seq
}

// replaceIfSeq installs the session only when no newer replacement landed
// since seq was captured.
func (m *Manager) replaceIfSeq(seq uint64, sess *Session) {
	m.mu.Lock()
	if m.seq != seq {
		m.mu.Unlock()
		m.logger.Debug("ignoring stale profile result")
		return
	}
	m.current = sess
	listeners := m.snapshotListeners()
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(sess)
	}
}

func (m *Manager) snapshotListeners() []Listener {
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	return listeners
}
