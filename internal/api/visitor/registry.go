// Package visitor keeps one session stack per browser. A stack is built on
// first sight of a visitor id and released once it sits idle or the
// registry is full. A released visitor is rebuilt from storage on its next
// request.
package visitor

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lankahomes/storefront/internal/core/ports"
	"github.com/lankahomes/storefront/internal/core/service"
)

// Visitor is the injectable session stack of one browser.
type Visitor struct {
	ID       string
	Session  *service.SessionService
	Listings ports.ListingAPI
	Nav      *Navigator
}

// Factory builds the stack for id. It must not start the bootstrap.
type Factory func(id string) (*Visitor, error)

// Registry hands out visitors by id, creating them on demand.
type Registry struct {
	factory     Factory
	bootTimeout time.Duration
	boot        *Bootstrapper
	onCreate    func(*Visitor)
	onEvict     func(*Visitor)
	idle        time.Duration
	max         int
	now         func() time.Time
	logger      zerolog.Logger

	mu       sync.Mutex
	visitors map[string]*held
	// recent orders ids by last use, most recent at the front.
	recent *list.List
}

type held struct {
	v    *Visitor
	seen time.Time
	elem *list.Element
}

type Option func(*Registry)

// WithBootstrapTimeout bounds the background bootstrap of each visitor.
func WithBootstrapTimeout(d time.Duration) Option {
	return func(r *Registry) { r.bootTimeout = d }
}

// WithBootstrapper hands bootstraps to b instead of a goroutine each.
// b must be started.
func WithBootstrapper(b *Bootstrapper) Option {
	return func(r *Registry) { r.boot = b }
}

// WithOnCreate runs fn for every newly built visitor.
func WithOnCreate(fn func(*Visitor)) Option {
	return func(r *Registry) { r.onCreate = fn }
}

// WithOnEvict runs fn for every visitor the registry releases.
func WithOnEvict(fn func(*Visitor)) Option {
	return func(r *Registry) { r.onEvict = fn }
}

// WithIdleTimeout makes Sweep release visitors unused for d. Zero keeps
// them until the registry is full.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) { r.idle = d }
}

// WithMaxVisitors caps the registry at n visitors, releasing the least
// recently used first. Zero means no cap.
func WithMaxVisitors(n int) Option {
	return func(r *Registry) { r.max = n }
}

// WithClock replaces time.Now, for eviction tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(factory Factory, logger zerolog.Logger, opts ...Option) *Registry {
	r := &Registry{
		factory:     factory,
		bootTimeout: 10 * time.Second,
		logger:      logger.With().Str("component", "visitor_registry").Logger(),
		now:         time.Now,
		visitors:    make(map[string]*held),
		recent:      list.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the visitor for id, building it and starting its bootstrap
// in the background on first use.
func (r *Registry) Get(id string) (*Visitor, error) {
	r.mu.Lock()
	now := r.now()
	if h, ok := r.visitors[id]; ok {
		h.seen = now
		r.recent.MoveToFront(h.elem)
		r.mu.Unlock()
		return h.v, nil
	}

	v, err := r.factory(id)
	if err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("build visitor: %w", err)
	}
	r.visitors[id] = &held{v: v, seen: now, elem: r.recent.PushFront(id)}
	var evicted []*Visitor
	for r.max > 0 && r.recent.Len() > r.max {
		evicted = append(evicted, r.evictOldestLocked())
	}
	r.mu.Unlock()

	if r.onCreate != nil {
		r.onCreate(v)
	}
	r.logger.Debug().Str("visitor", id).Msg("visitor created")
	r.released(evicted, "registry full")

	if r.boot != nil {
		r.boot.Submit(v)
		return v, nil
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.bootTimeout)
		defer cancel()
		v.Session.Bootstrap(ctx)
	}()
	return v, nil
}

// Sweep releases visitors idle for at least the idle timeout and reports
// how many it released.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	r.mu.Lock()
	now := r.now()
	var evicted []*Visitor
	for back := r.recent.Back(); back != nil; back = r.recent.Back() {
		if now.Sub(r.visitors[back.Value.(string)].seen) < r.idle {
			break
		}
		evicted = append(evicted, r.evictOldestLocked())
	}
	r.mu.Unlock()

	r.released(evicted, "idle")
	return len(evicted)
}

// evictOldestLocked removes the least recently used visitor. r.mu must be
// held and the registry non-empty.
func (r *Registry) evictOldestLocked() *Visitor {
	back := r.recent.Back()
	id := back.Value.(string)
	r.recent.Remove(back)
	h := r.visitors[id]
	delete(r.visitors, id)
	return h.v
}

func (r *Registry) released(vs []*Visitor, reason string) {
	for _, v := range vs {
		if r.onEvict != nil {
			r.onEvict(v)
		}
		r.logger.Debug().Str("visitor", v.ID).Str("reason", reason).Msg("visitor released")
	}
}

// Len reports how many visitors are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}
