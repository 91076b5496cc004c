package tokenstore

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankahomes/storefront/internal/core/domain"
	"github.com/lankahomes/storefront/internal/infrastructure/db/memory"
)

type recordingHeader struct {
	current string
	calls   int
}

func (h *recordingHeader) SetDefaultBearer(token string) {
	h.current = token
	h.calls++
}

type failingDelete struct {
	*memory.Storage
}

func (failingDelete) Delete(context.Context, ...string) error {
	return errors.New("backend down")
}

func newStore(t *testing.T, opts ...memory.Option) (*Store, *memory.Storage, *recordingHeader) {
	t.Helper()
	mem := memory.New(opts...)
	h := &recordingHeader{}
	return New(mem, h, Config{KeyPrefix: "storefront:test"}, zerolog.Nop()), mem, h
}

func TestStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	s, mem, h := newStore(t)

	require.NoError(t, s.SetToken(ctx, "tok-1"))

	got, ok := s.Token(ctx)
	require.True(t, ok)
	assert.Equal(t, "tok-1", got)
	assert.Equal(t, "tok-1", h.current)

	raw, err := mem.Get(ctx, "storefront:test:token")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", raw)
}

// The default header equals the stored value after every mutation.
func TestStore_HeaderCoherence(t *testing.T) {
	ctx := context.Background()
	s, _, h := newStore(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			require.NoError(t, s.SetToken(ctx, "tok-"+strconv.Itoa(i)))
		} else {
			s.RemoveToken(ctx)
		}
		stored, _ := s.Token(ctx)
		assert.Equal(t, stored, h.current, "step %d", i)
	}
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _, h := newStore(t)
	require.NoError(t, s.SetToken(ctx, "tok"))
	require.NoError(t, s.CacheUser(ctx, domain.User{Email: "a@b.com"}))

	s.RemoveToken(ctx)
	s.RemoveToken(ctx)

	assert.False(t, s.IsAuthenticated(ctx))
	_, ok := s.CachedUser(ctx)
	assert.False(t, ok, "cached profile must go with the token")
	assert.Empty(t, h.current)
}

func TestStore_RemoveClearsHeaderEvenWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	h := &recordingHeader{}
	s := New(failingDelete{mem}, h, Config{}, zerolog.Nop())
	require.NoError(t, s.SetToken(ctx, "tok"))

	s.RemoveToken(ctx)

	assert.Empty(t, h.current)
}

func TestStore_WriteFailurePropagates(t *testing.T) {
	ctx := context.Background()
	s, _, h := newStore(t, memory.WithMaxValueSize(8))

	err := s.SetToken(ctx, "a-token-longer-than-eight-bytes")

	require.ErrorIs(t, err, memory.ErrValueTooLarge)
	assert.Zero(t, h.calls, "header must not change on a rejected write")
	assert.False(t, s.IsAuthenticated(ctx))
}

func TestStore_EmptyTokenRejected(t *testing.T) {
	s, _, _ := newStore(t)

	assert.ErrorIs(t, s.SetToken(context.Background(), ""), ErrEmptyToken)
}

func TestStore_ExpiredTokenReadsAbsent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s, _, h := newStore(t, memory.WithClock(clock))
	require.NoError(t, s.SetToken(ctx, "tok"))

	now = now.Add(DefaultTTL)

	_, ok := s.Token(ctx)
	assert.False(t, ok)
	assert.Empty(t, h.current, "header must follow the expired entry")
}

func TestStore_CachedUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)
	in := domain.User{Email: "a@b.com", FirstName: "Ama", Role: domain.RoleSeller}

	require.NoError(t, s.CacheUser(ctx, in))

	got, ok := s.CachedUser(ctx)
	require.True(t, ok)
	assert.Equal(t, in, *got)
}
