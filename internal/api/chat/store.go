package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// SessionFactory builds a new conversation with the given ID.
type SessionFactory func(id string) *Session

type storeEntry struct {
	lock    chan struct{}
	session *Session
}

func newStoreEntry(session *Session) *storeEntry {
	return &storeEntry{lock: make(chan struct{}, 1), session: session}
}

// Store keeps live sessions in memory and expires them after ttl of
// inactivity. Calls on the same session are serialized.
type Store struct {
	sessions *cache.Cache
	factory  SessionFactory
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration, factory SessionFactory) *Store {
	return &Store{
		sessions: cache.New(ttl, ttl/2+time.Second),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session and returns its ID and expiry.
func (s *Store) Create() (string, time.Time) {
	id := uuid.NewString()
	s.sessions.Set(id, newStoreEntry(s.factory(id)), cache.DefaultExpiration)
	return id, s.now().Add(s.ttl)
}

// With runs fn while holding the session's lock and extends its lifetime.
// A caller whose ctx ends while another call holds the lock gets
// ErrSessionBusy.
func (s *Store) With(ctx context.Context, id string, fn func(*Session)) error {
	v, found := s.sessions.Get(id)
	if !found {
		return types.ErrSessionNotFound
	}
	entry := v.(*storeEntry)
	s.sessions.Set(id, entry, cache.DefaultExpiration)

	select {
	case entry.lock <- struct{}{}:
	default:
		select {
		case entry.lock <- struct{}{}:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", types.ErrSessionBusy, ctx.Err())
		}
	}
	defer func() { <-entry.lock }()
	fn(entry.session)
	return nil
}

// Delete removes the session. It reports whether it existed.
func (s *Store) Delete(id string) bool {
	if _, found := s.sessions.Get(id); !found {
		return false
	}
	s.sessions.Delete(id)
	return true
}

func (s *Store) Count() int {
	return s.sessions.ItemCount()
}
