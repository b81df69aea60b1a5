package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"pushpilot-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// RateLimitRepository keeps counters in process. Only suitable for a single
// replica; counters are lost on restart.
type RateLimitRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewRateLimitRepository() *RateLimitRepository {
	// a day key is never read again after its UTC day ends
	return &RateLimitRepository{
		cache: cache.New(48*time.Hour, time.Hour),
	}
}

func key(userId, date string) string {
	return userId + "|" + date
}

func (r *RateLimitRepository) Consume(ctx context.Context, userId, date string, limit int, now time.Time) (*entity.RateLimitDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(userId, date)
	x, found := r.cache.Get(k)
	if !found {
		if limit <= 0 {
			return &entity.RateLimitDecision{Allowed: false, Current: 0, Limit: limit}, nil
		}
		r.cache.Set(k, &entity.RateLimit{
			Id:        uuid.New(),
			UserId:    userId,
			Date:      date,
			Count:     1,
			Limit:     limit,
			LastReset: now,
			NextReset: entity.NextUTCMidnight(now),
			CreatedAt: now,
			UpdatedAt: now,
		}, cache.DefaultExpiration)
		return &entity.RateLimitDecision{Allowed: true, Current: 1, Limit: limit}, nil
	}

	rec := x.(*entity.RateLimit)
	if rec.Count >= limit {
		return &entity.RateLimitDecision{Allowed: false, Current: rec.Count, Limit: limit}, nil
	}
	rec.Count++
	rec.UpdatedAt = now
	return &entity.RateLimitDecision{Allowed: true, Current: rec.Count, Limit: limit}, nil
}

func (r *RateLimitRepository) FindByUserAndDate(ctx context.Context, userId, date string) (*entity.RateLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(key(userId, date))
	if !found {
		return nil, nil
	}
	rec := *x.(*entity.RateLimit)
	return &rec, nil
}

func (r *RateLimitRepository) DeleteBefore(ctx context.Context, date string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for k := range r.cache.Items() {
		i := strings.LastIndex(k, "|")
		if i >= 0 && k[i+1:] < date {
			r.cache.Delete(k)
			deleted++
		}
	}
	return deleted, nil
}
