package recommend

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSessionGeneration(t *testing.T) {
	s := &Session{}
	g1 := s.Begin()
	g2 := s.Begin()
	assert.Less(t, g1, g2)
	assert.False(t, s.Apply(g1, Result{Source: "old"}))
	assert.True(t, s.Apply(g2, Result{Source: "new"}))
	cur, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, "new", cur.Source)
}

func TestSessionsGetOrCreate(t *testing.T) {
	ss := NewSessions(time.Hour)
	a := ss.GetOrCreate("not-a-uuid")
	_, err := uuid.Parse(a.ID)
	assert.NoError(t, err)
	assert.Same(t, a, ss.GetOrCreate(a.ID))

	id := uuid.NewString()
	b := ss.GetOrCreate(id)
	assert.Equal(t, id, b.ID)
	got, ok := ss.Get(id)
	assert.True(t, ok)
	assert.Same(t, b, got)
}

func TestSessionsSweepIdle(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ss := NewSessions(time.Hour)
	ss.now = func() time.Time { return now }
	old := ss.GetOrCreate("")
	now = now.Add(2 * time.Hour)
	ss.GetOrCreate("")
	_, ok := ss.Get(old.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, ss.Len())
}

func TestSessionsReadKeepsSessionAlive(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ss := NewSessions(2 * time.Hour)
	ss.now = func() time.Time { return now }
	a := ss.GetOrCreate("")

	now = now.Add(90 * time.Minute)
	_, ok := ss.Get(a.ID)
	assert.True(t, ok)

	now = now.Add(90 * time.Minute)
	ss.GetOrCreate("")
	got, ok := ss.Get(a.ID)
	assert.True(t, ok, "a session read within ttl is not swept")
	assert.Same(t, a, got)
	assert.Equal(t, 2, ss.Len())

	now = now.Add(3 * time.Hour)
	ss.GetOrCreate("")
	_, ok = ss.Get(a.ID)
	assert.False(t, ok)
}
