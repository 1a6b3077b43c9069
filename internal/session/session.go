// Package session holds the current identity of the running client.
//
// [Store] is the single owner of the identity: it restores it from local storage on construction, exposes a derived
// IsAuthenticated signal that is always consistent with CurrentUser, mirrors every change back to storage and notifies
// subscribers after each change. Persistence is best effort; the in-memory value is authoritative.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/shared"
	"github.com/desertthunder/watchlist/internal/storage"
)

// StorageKey is the local storage key holding the JSON-encoded current user.
const StorageKey = "currentUser"

const storageTimeout = 5 * time.Second

// Listener is called with the new identity (nil after logout) once a change has been committed.
type Listener func(user *models.User)

// Store is the process-wide session cell.
type Store struct {
	writeMu   sync.Mutex // serializes SetUser so storage matches memory
	mu        sync.RWMutex
	current   *models.User
	storage   storage.Storage
	logger    *log.Logger
	listeners map[int]Listener
	nextID    int
}

// New creates a [Store] and restores the persisted identity from st.
//
// Corrupted data is logged and removed; the store then starts without an identity.
func New(st storage.Storage, logger *log.Logger) *Store {
	if st == nil {
		st = storage.NewMemoryStorage()
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Store{
		storage:   st,
		logger:    shared.WithLogger(logger, "component", "session"),
		listeners: make(map[int]Listener),
	}
	s.current = s.restore()
	return s
}

func (s *Store) restore() *models.User {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	raw, ok, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Warn("could not read stored user", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Error("error parsing stored user, discarding it", "error", err)
		if err := s.storage.Remove(ctx, StorageKey); err != nil {
			s.logger.Warn("could not remove corrupted user", "error", err)
		}
		return nil
	}

	s.logger.Debug("restored session", "user", user.Username)
	return &user
}

// CurrentUser returns a copy of the current identity, or nil when logged out.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	return s.current.Clone()
}

// IsAuthenticated reports whether an identity is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// SetUser replaces the current identity and mirrors it to storage.
// A nil user logs out and deletes the stored entry.
func (s *Store) SetUser(user *models.User) {
	var next *models.User
	if user != nil {
		next = user.Clone()
	}

	s.writeMu.Lock()
	s.mu.Lock()
	s.current = next
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	s.persist(next)
	defer s.writeMu.Unlock()

	for _, l := range listeners {
		if next == nil {
			l(nil)
		} else {
			l(next.Clone())
		}
	}
}

func (s *Store) persist(user *models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	if user == nil {
		if err := s.storage.Remove(ctx, StorageKey); err != nil {
			s.logger.Warn("could not clear stored user", "error", err)
		}
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("could not encode user", "error", err)
		return
	}
	if err := s.storage.Set(ctx, StorageKey, string(data)); err != nil {
		s.logger.Warn("could not persist user", "error", err)
	}
}

// Logout clears the identity.
func (s *Store) Logout() {
	s.SetUser(nil)
}

// UpdateUser replaces the identity after a profile edit. The record must be complete; fields are not merged.
func (s *Store) UpdateUser(user models.User) {
	s.SetUser(&user)
}

// Subscribe registers l for identity changes. Listeners run in subscription order on the goroutine calling SetUser,
// before SetUser returns, so concurrent SetUser calls are seen in the order they were stored. Listeners must not
// call SetUser themselves. The returned func removes the listener.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}
