package proximity_test

import (
	"context"
	"testing"
	"time"

	"hospital-api/internal/geo"
	"hospital-api/internal/poi"
	"hospital-api/internal/proximity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func list(ids ...string) []poi.Hospital {
	out := make([]poi.Hospital, 0, len(ids))
	for _, id := range ids {
		out = append(out, poi.Hospital{ID: id, Name: "医院" + id})
	}
	return out
}

var dongsi = geo.Point{Lat: 39.9336, Lng: 116.4402}

func TestCacheHitWithinRadiusUntilLifetime(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store := proximity.NewMemoryStore(0)
	c := proximity.New(store, proximity.WithClock(clk.Now))

	_, err := c.Set(ctx, dongsi, list("a", "b"), "merged", 0)
	require.NoError(t, err)

	query := geo.Point{Lat: 39.9339, Lng: 116.4405}
	e, ok, err := c.Get(ctx, query)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, list("a", "b"), e.Hospitals)
	assert.Equal(t, "merged", e.Source)

	clk.Advance(30*24*time.Hour - time.Second)
	_, ok, err = c.Get(ctx, query)
	require.NoError(t, err)
	assert.True(t, ok, "entry younger than 30 days is reused")

	clk.Advance(time.Second)
	_, ok, err = c.Get(ctx, query)
	require.NoError(t, err)
	assert.False(t, ok, "entry is dropped once 30 days have elapsed")
	assert.Equal(t, 0, store.Len(), "expired entry removed lazily on read")
}

func TestCacheFirstStoredEntryWins(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	c := proximity.New(proximity.NewMemoryStore(0), proximity.WithClock(clk.Now))

	_, err := c.Set(ctx, dongsi, list("old"), "merged", 0)
	require.NoError(t, err)
	clk.Advance(time.Hour)
	_, err = c.Set(ctx, geo.Point{Lat: 39.934, Lng: 116.441}, list("new"), "merged", 0)
	require.NoError(t, err)

	e, ok, err := c.Get(ctx, dongsi)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "old", e.Hospitals[0].ID)
}

func TestCacheRadius(t *testing.T) {
	ctx := context.Background()
	store := proximity.NewMemoryStore(0)
	c := proximity.New(store, proximity.WithClock(newClock().Now))
	_, err := c.Set(ctx, dongsi, list("a"), "", 0)
	require.NoError(t, err)

	_, ok, err := c.Get(ctx, geo.Point{Lat: 40.0336, Lng: 116.4402})
	require.NoError(t, err)
	assert.False(t, ok, "11 km away is outside the lookup radius")
	assert.Equal(t, 1, store.Len(), "entries outside the radius are kept")

	small := proximity.New(store, proximity.WithRadius(30), proximity.WithClock(newClock().Now))
	_, ok, err = small.Get(ctx, geo.Point{Lat: 39.9339, Lng: 116.4405})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheTTLAndClear(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store := proximity.NewMemoryStore(0)
	c := proximity.New(store, proximity.WithClock(clk.Now), proximity.WithLifetime(48*time.Hour))
	assert.Equal(t, 48*time.Hour, c.Lifetime())

	e, err := c.Set(ctx, dongsi, list("a"), "", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), e.ExpiresAt)

	clk.Advance(2 * time.Hour)
	_, ok, err := c.Get(ctx, dongsi)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Set(ctx, dongsi, list("b"), "", 0)
	require.NoError(t, err)
	require.NoError(t, c.Clear(ctx))
	_, ok, err = c.Get(ctx, dongsi)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreCapacity(t *testing.T) {
	ctx := context.Background()
	s := proximity.NewMemoryStore(2)
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, s.Append(ctx, proximity.Entry{ID: id}))
	}
	got, err := s.Candidates(ctx, dongsi, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}
