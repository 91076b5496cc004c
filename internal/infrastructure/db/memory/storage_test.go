package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankahomes/storefront/internal/core/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time         { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStorage_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "k", "v", 0))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, s.Delete(ctx, "k", "missing"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrStorageMiss)
}

func TestStorage_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := New(WithClock(clock.now))

	require.NoError(t, s.Set(ctx, "token", "abc", 24*time.Hour))

	clock.advance(23 * time.Hour)
	got, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	clock.advance(time.Hour)
	_, err = s.Get(ctx, "token")
	assert.ErrorIs(t, err, domain.ErrStorageMiss)
	assert.Equal(t, 0, s.Len())
}

func TestStorage_RejectsOversizeValue(t *testing.T) {
	s := New()

	err := s.Set(context.Background(), "k", strings.Repeat("x", DefaultMaxValueSize+1), time.Hour)

	assert.ErrorIs(t, err, ErrValueTooLarge)
	assert.Equal(t, 0, s.Len())
}

func TestStorage_Disabled(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Ping(ctx))

	s.Disable()

	assert.ErrorIs(t, s.Set(ctx, "k", "v", 0), ErrDisabled)
	assert.ErrorIs(t, s.Ping(ctx), ErrDisabled)
}

func TestStorage_SweepDropsUnreadExpiredEntries(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := New(WithClock(clock.now))

	require.NoError(t, s.Set(ctx, "short", "a", time.Minute))
	require.NoError(t, s.Set(ctx, "long", "b", time.Hour))
	require.NoError(t, s.Set(ctx, "forever", "c", 0))

	assert.Equal(t, 0, s.Sweep())

	clock.advance(2 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Len(t, s.entries, 2)

	clock.advance(time.Hour)
	assert.Equal(t, 1, s.Sweep())
	assert.Len(t, s.entries, 1)
	got, err := s.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "c", got)
}

func TestStorage_NoCap(t *testing.T) {
	s := New(WithMaxValueSize(0))

	assert.NoError(t, s.Set(context.Background(), "k", strings.Repeat("x", 10*DefaultMaxValueSize), 0))
}
