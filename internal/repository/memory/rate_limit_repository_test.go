package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeStopsAtLimit(t *testing.T) {
	repo := NewRateLimitRepository()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		d, err := repo.Consume(ctx, "u1", "2025-03-10", 3, now)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, i, d.Current)
	}

	d, err := repo.Consume(ctx, "u1", "2025-03-10", 3, now)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 3, d.Current)

	rec, err := repo.FindByUserAndDate(ctx, "u1", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Count)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), rec.NextReset)
}

func TestConsumeIsAtomicUnderContention(t *testing.T) {
	repo := NewRateLimitRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := repo.Consume(ctx, "u1", "2025-03-10", 20, now)
			if err == nil && d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, allowed)
}

func TestDeleteBefore(t *testing.T) {
	repo := NewRateLimitRepository()
	ctx := context.Background()
	now := time.Now()

	_, _ = repo.Consume(ctx, "u1", "2025-03-01", 5, now)
	_, _ = repo.Consume(ctx, "u1", "2025-03-10", 5, now)
	_, _ = repo.Consume(ctx, "team|ops", "2025-02-01", 5, now)

	deleted, err := repo.DeleteBefore(ctx, "2025-03-05")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	rec, _ := repo.FindByUserAndDate(ctx, "u1", "2025-03-10")
	assert.NotNil(t, rec)
}

func TestConsumeZeroLimitRejectsFirstCall(t *testing.T) {
	repo := NewRateLimitRepository()
	ctx := context.Background()

	d, err := repo.Consume(ctx, "u1", "2025-03-10", 0, time.Now())
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Zero(t, d.Current)

	rec, err := repo.FindByUserAndDate(ctx, "u1", "2025-03-10")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
