// Package notification maintains the ordered, persisted, deduplicated
// collection of user-facing alerts, plus the poller that derives alerts
// from server-side support activity.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medipro/console/internal/storage"
)

// keyPrefix scopes persisted collections. The full key is
// "<prefix>-<identity>", or "<prefix>-guest" when nobody is logged in.
// This is the only place identity leaks into the persistence layer.
const keyPrefix = "medipro-notifications"

// ErrNotFound indicates the notification id is not in the collection.
var ErrNotFound = errors.New("notification: not found")

// Store holds the current identity's notifications, newest first. Every
// mutation re-persists the full collection under the identity's key.
type Store struct {
	kv     storage.KV
	logger *slog.Logger
	clock  func() time.Time
	newID  func() string

	mu       sync.Mutex
	identity string
	items    []Notification
}

// NewStore constructs a Store scoped to the guest bucket until SetIdentity
// is called.
func NewStore(kv storage.KV, logger *slog.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger,
		clock:  time.Now,
		newID:  uuid.NewString,
	}
}

// SetIdentity switches the store to another identity's collection: the
// in-memory copy is discarded and the new key's collection is loaded (or
// started empty). The previous key's persisted data is left intact, since
// that identity may return. An empty identity selects the guest bucket.
func (s *Store) SetIdentity(ctx context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.items = s.load(ctx)
	return nil
}

// Identity returns the identity the store is currently scoped to.
func (s *Store) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Add creates an unread notification with a fresh id and timestamp,
// prepends it and persists.
func (s *Store) Add(ctx context.Context, category Category, title, message, link string) (Notification, error) {
	n := Notification{
		ID:        s.newID(),
		Category:  category,
		Title:     title,
		Message:   message,
		CreatedAt: s.clock().UTC().Format(time.RFC3339),
		Link:      link,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]Notification{n}, s.items...)
	return n, s.persist(ctx)
}

// MarkRead flags one notification as read.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return s.persist(ctx)
		}
	}
	return ErrNotFound
}

// MarkAllRead flags every notification as read.
func (s *Store) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
	return s.persist(ctx)
}

// Delete removes one notification.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persist(ctx)
		}
	}
	return ErrNotFound
}

// Clear removes every notification for the current identity.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return s.persist(ctx)
}

// List returns a copy of the collection, newest first.
func (s *Store) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Notification, len(s.items))
	copy(items, s.items)
	return items
}

// UnreadCount is recomputed from the collection on every call; it is never
// stored redundantly.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for i := range s.items {
		if !s.items[i].Read {
			count++
		}
	}
	return count
}

// HasUnreadMatching reports whether any unread notification's message
// contains the given substring. This is the poller's dedup probe.
func (s *Store) HasUnreadMatching(contains func(message string) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if !s.items[i].Read && contains(s.items[i].Message) {
			return true
		}
	}
	return false
}

func (s *Store) key() string {
	if s.identity == "" {
		return keyPrefix + "-guest"
	}
	return keyPrefix + "-" + s.identity
}

// load reads the current key's collection. Corrupt payloads are treated as
// an empty collection rather than failing.
func (s *Store) load(ctx context.Context) []Notification {
	raw, err := s.kv.Get(ctx, s.key())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("load notifications", slog.String("key", s.key()), slog.Any("error", err))
		}
		return nil
	}
	var items []Notification
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("discarding corrupt notifications", slog.String("key", s.key()), slog.Any("error", err))
		return nil
	}
	return items
}

// persist serializes the full collection under the current key. Callers
// hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return err
	}
	if s.items == nil {
		data = []byte("[]")
	}
	return s.kv.Set(ctx, s.key(), string(data))
}
