package warmup

import (
	"context"
	"sync"
	"testing"
	"time"

	"hospital-api/internal/geo"
	"hospital-api/internal/poi"
	"hospital-api/internal/recommend"

	"github.com/stretchr/testify/assert"
)

type countingRecommender struct {
	mu    sync.Mutex
	seen  []geo.Point
	empty map[geo.Point]bool
}

func (c *countingRecommender) Recommend(ctx context.Context, center geo.Point) recommend.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, center)
	if c.empty[center] {
		return recommend.Result{Hospitals: []poi.Hospital{}, Warning: recommend.WarnEmpty}
	}
	return recommend.Result{Hospitals: []poi.Hospital{{ID: "h"}}, Cache: "miss"}
}

func (c *countingRecommender) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

var (
	dongsi   = geo.Point{Lat: 39.9336, Lng: 116.4402}
	shanghai = geo.Point{Lat: 31.2304, Lng: 121.4737}
)

func TestRunOnce(t *testing.T) {
	r := &countingRecommender{empty: map[geo.Point]bool{shanghai: true}}
	s := New(r, []geo.Point{dongsi, shanghai}, time.Minute)
	assert.Equal(t, 1, s.RunOnce(context.Background()))
	assert.Equal(t, []geo.Point{dongsi, shanghai}, r.seen)
}

func TestRunOnceStopsOnCancel(t *testing.T) {
	r := &countingRecommender{}
	s := New(r, []geo.Point{dongsi, shanghai}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, 0, s.RunOnce(ctx))
	assert.Equal(t, 0, r.calls())
}

func TestStartWarmsImmediately(t *testing.T) {
	r := &countingRecommender{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	New(r, []geo.Point{dongsi}, time.Hour).Start(ctx)
	assert.Eventually(t, func() bool { return r.calls() == 1 }, time.Second, 5*time.Millisecond)
}

func TestStartDisabled(t *testing.T) {
	r := &countingRecommender{}
	New(r, nil, time.Minute).Start(context.Background())
	New(r, []geo.Point{dongsi}, 0).Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, r.calls())
}
