package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lankahomes/storefront/internal/core/domain"
)

// DefaultMaxValueSize matches what a browser accepts for a single cookie.
const DefaultMaxValueSize = 4096

var (
	ErrValueTooLarge = errors.New("memory storage: value too large")
	ErrDisabled      = errors.New("memory storage: writes disabled")
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Storage is a process-local key-value map with per-entry expiry.
type Storage struct {
	mu       sync.RWMutex
	entries  map[string]entry
	maxValue int
	disabled bool
	now      func() time.Time
}

type Option func(*Storage)

// WithMaxValueSize caps the length of a stored value. n <= 0 removes the cap.
func WithMaxValueSize(n int) Option {
	return func(s *Storage) { s.maxValue = n }
}

// WithClock replaces time.Now, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

func New(opts ...Option) *Storage {
	s := &Storage{
		entries:  make(map[string]entry),
		maxValue: DefaultMaxValueSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return "", domain.ErrStorageMiss
	}
	if e.expired(s.now()) {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return "", domain.ErrStorageMiss
	}
	return e.value, nil
}

func (s *Storage) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if s.maxValue > 0 && len(value) > s.maxValue {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrValueTooLarge, len(value), s.maxValue)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return ErrDisabled
	}

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *Storage) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

// Ping fails once the storage is disabled.
func (s *Storage) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disabled {
		return ErrDisabled
	}
	return nil
}

// Sweep drops expired entries and reports how many it removed. Get only
// drops the entries it reads.
func (s *Storage) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Disable makes every subsequent Set and Ping fail, like a browser with
// storage turned off.
func (s *Storage) Disable() {
	s.mu.Lock()
	s.disabled = true
	s.mu.Unlock()
}

// Len reports the number of live entries.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	n := 0
	for _, e := range s.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}
