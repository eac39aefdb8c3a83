package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightscan/internal/models"
)

func TestMemoryStore_CreateGetUpdate(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &models.SearchJob{ID: "j1", Status: models.JobPending}))
	assert.ErrorIs(t, s.Create(ctx, &models.SearchJob{ID: "j1"}), ErrJobExists)

	require.NoError(t, s.Update(ctx, "j1", func(j *models.SearchJob) {
		j.Status = models.JobRunning
		j.DonePairs = 3
	}))

	got, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobRunning, got.Status)
	assert.Equal(t, 3, got.DonePairs)

	got.DonePairs = 99
	again, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.DonePairs)
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, s.Update(context.Background(), "missing", func(*models.SearchJob) {}), ErrJobNotFound)
}

func TestMemoryStore_ConcurrentUpdatesAreNotLost(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &models.SearchJob{ID: "j1"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, "j1", func(j *models.SearchJob) { j.TotalResults++ })
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, 50, got.TotalResults)
}

func TestMemoryStore_SweepEvictsFinishedJobs(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	old := now.Add(-2 * time.Hour)
	recent := now.Add(-10 * time.Minute)
	require.NoError(t, s.Create(ctx, &models.SearchJob{ID: "old", Status: models.JobCompleted, FinishedAt: &old}))
	require.NoError(t, s.Create(ctx, &models.SearchJob{ID: "recent", Status: models.JobFailed, FinishedAt: &recent}))
	require.NoError(t, s.Create(ctx, &models.SearchJob{ID: "running", Status: models.JobRunning}))

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 2, s.Len())

	_, err := s.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
