package visitor

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankahomes/storefront/internal/core/ports"
	"github.com/lankahomes/storefront/internal/core/service"
	"github.com/lankahomes/storefront/internal/infrastructure/db/memory"
	"github.com/lankahomes/storefront/internal/infrastructure/tokenstore"
)

type nopAuthAPI struct{}

func (nopAuthAPI) Login(context.Context, ports.LoginRequest) (*ports.AuthResponse, error) {
	return nil, errors.New("not used")
}

func (nopAuthAPI) Register(context.Context, ports.RegisterRequest) (*ports.AuthResponse, error) {
	return nil, errors.New("not used")
}

func (nopAuthAPI) Validate(context.Context) (*ports.AuthResponse, error) {
	return nil, errors.New("not used")
}

func testFactory(built *int, mu *sync.Mutex) Factory {
	storage := memory.New()
	return func(id string) (*Visitor, error) {
		mu.Lock()
		*built++
		mu.Unlock()
		store := tokenstore.New(storage, nil, tokenstore.Config{KeyPrefix: "test:" + id}, zerolog.Nop())
		return &Visitor{
			ID:      id,
			Session: service.NewSessionService(store, nopAuthAPI{}, zerolog.Nop()),
			Nav:     NewNavigator(),
		}, nil
	}
}

func TestRegistry_BuildsOncePerID(t *testing.T) {
	var (
		built   int
		mu      sync.Mutex
		created []string
	)
	reg := NewRegistry(testFactory(&built, &mu), zerolog.Nop(), WithOnCreate(func(v *Visitor) {
		created = append(created, v.ID)
	}))

	a1, err := reg.Get("a")
	require.NoError(t, err)
	a2, err := reg.Get("a")
	require.NoError(t, err)
	_, err = reg.Get("b")
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.Equal(t, 2, built)
	assert.Equal(t, []string{"a", "b"}, created)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_StartsBootstrap(t *testing.T) {
	var (
		built int
		mu    sync.Mutex
	)
	reg := NewRegistry(testFactory(&built, &mu), zerolog.Nop(), WithBootstrapTimeout(time.Second))

	v, err := reg.Get("fresh")
	require.NoError(t, err)

	select {
	case <-v.Session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("bootstrap did not finish")
	}
	st := v.Session.State()
	assert.True(t, st.Resolved)
	assert.False(t, st.Loading)
	assert.False(t, st.IsAuthenticated)
}

func TestRegistry_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	reg := NewRegistry(func(string) (*Visitor, error) { return nil, boom }, zerolog.Nop())

	_, err := reg.Get("x")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, reg.Len())
}

func TestNavigator_RedirectConsumedOnce(t *testing.T) {
	n := NewNavigator()
	assert.Equal(t, "/", n.CurrentPath())

	n.Visit("/favorites")
	assert.Equal(t, "/favorites", n.CurrentPath())

	_, ok := n.TakeRedirect()
	assert.False(t, ok)

	n.Navigate("/login")
	to, ok := n.TakeRedirect()
	assert.True(t, ok)
	assert.Equal(t, "/login", to)

	_, ok = n.TakeRedirect()
	assert.False(t, ok)
}

func TestRegistry_WithBootstrapper(t *testing.T) {
	var (
		built int
		mu    sync.Mutex
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	boot := NewBootstrapper(2, time.Second, zerolog.Nop())
	boot.Start(ctx)
	reg := NewRegistry(testFactory(&built, &mu), zerolog.Nop(), WithBootstrapper(boot))

	visitors := make([]*Visitor, 0, 5)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		v, err := reg.Get(id)
		require.NoError(t, err)
		visitors = append(visitors, v)
	}
	for _, v := range visitors {
		select {
		case <-v.Session.Done():
		case <-time.After(2 * time.Second):
			t.Fatalf("bootstrap of %s did not finish", v.ID)
		}
	}
}

func TestBootstrapper_FullQueueStillRuns(t *testing.T) {
	var (
		built int
		mu    sync.Mutex
	)
	// Never started: every queued visitor sits in the channel, so once the
	// buffer is full Submit must fall back to its own goroutine.
	boot := NewBootstrapper(1, time.Second, zerolog.Nop())
	factory := testFactory(&built, &mu)
	for i := 0; i < channelBuffer; i++ {
		v, err := factory("queued")
		require.NoError(t, err)
		boot.Submit(v)
	}

	v, err := factory("overflow")
	require.NoError(t, err)
	boot.Submit(v)
	select {
	case <-v.Session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("overflow bootstrap did not run")
	}
}

func TestBootstrapper_ShardIndexStable(t *testing.T) {
	boot := NewBootstrapper(4, time.Second, zerolog.Nop())
	first := boot.shardIndex("7f0c3a52-9f43-4c4e-9d2b-0b7cf1f7a1de")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, boot.shardIndex("7f0c3a52-9f43-4c4e-9d2b-0b7cf1f7a1de"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 4)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestRegistry_SweepReleasesIdleVisitors(t *testing.T) {
	var (
		built   int
		mu      sync.Mutex
		evicted []string
	)
	clock := &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	reg := NewRegistry(testFactory(&built, &mu), zerolog.Nop(),
		WithClock(clock.now),
		WithIdleTimeout(30*time.Minute),
		WithOnEvict(func(v *Visitor) { evicted = append(evicted, v.ID) }),
	)

	for i := 0; i < 2000; i++ {
		_, err := reg.Get("anon-" + strconv.Itoa(i))
		require.NoError(t, err)
	}
	_, err := reg.Get("kept")
	require.NoError(t, err)
	require.Equal(t, 2001, reg.Len())

	clock.advance(20 * time.Minute)
	_, err = reg.Get("kept")
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Sweep(), "nothing is idle yet")

	clock.advance(15 * time.Minute)
	assert.Equal(t, 2000, reg.Sweep())
	assert.Equal(t, 1, reg.Len())
	assert.Len(t, evicted, 2000)
	assert.NotContains(t, evicted, "kept")

	mu.Lock()
	before := built
	mu.Unlock()
	_, err = reg.Get("anon-0")
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, before+1, built, "a released visitor is rebuilt on return")
	mu.Unlock()
}

func TestRegistry_MaxVisitorsEvictsLeastRecent(t *testing.T) {
	var (
		built   int
		mu      sync.Mutex
		evicted []string
	)
	reg := NewRegistry(testFactory(&built, &mu), zerolog.Nop(),
		WithMaxVisitors(2),
		WithOnEvict(func(v *Visitor) { evicted = append(evicted, v.ID) }),
	)

	for _, id := range []string{"a", "b"} {
		_, err := reg.Get(id)
		require.NoError(t, err)
	}
	_, err := reg.Get("a")
	require.NoError(t, err)
	_, err = reg.Get("c")
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"b"}, evicted)
}

func TestRegistry_SweepWithoutIdleTimeoutKeepsAll(t *testing.T) {
	var (
		built int
		mu    sync.Mutex
	)
	reg := NewRegistry(testFactory(&built, &mu), zerolog.Nop())
	_, err := reg.Get("a")
	require.NoError(t, err)

	assert.Equal(t, 0, reg.Sweep())
	assert.Equal(t, 1, reg.Len())
}
