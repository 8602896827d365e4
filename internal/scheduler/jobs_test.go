package scheduler

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	cutoff time.Time
	n      int64
}

func (f *fakePurger) DeleteOlderThan(cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.n, nil
}

func TestPurgeStaleSessionsJob(t *testing.T) {
	purger := &fakePurger{n: 3}
	job := NewPurgeStaleSessionsJob(purger, 24*time.Hour, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, "purge_stale_sessions", job.Name())

	// Cutoff should sit roughly one TTL in the past.
	want := time.Now().Add(-24 * time.Hour)
	assert.WithinDuration(t, want, purger.cutoff, time.Minute)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	purger := &fakePurger{}
	job := NewPurgeStaleSessionsJob(purger, time.Hour, zerolog.Nop())

	require.NoError(t, s.RunNow(job))
	assert.False(t, purger.cutoff.IsZero())
}

func TestScheduler_AddJobRejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("not a schedule", NewPurgeStaleSessionsJob(&fakePurger{}, time.Hour, zerolog.Nop()))
	assert.Error(t, err)
}
