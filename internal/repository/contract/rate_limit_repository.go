package contract

import (
	"context"
	"time"

	"pushpilot-be/internal/entity"
)

// RateLimitRepository is implemented by every quota backend (database, redis, memory).
type RateLimitRepository interface {
	// Consume atomically creates today's counter at 1, or increments it while
	// below limit. A rejected call leaves the counter untouched.
	Consume(ctx context.Context, userId, date string, limit int, now time.Time) (*entity.RateLimitDecision, error)
	FindByUserAndDate(ctx context.Context, userId, date string) (*entity.RateLimit, error)
	DeleteBefore(ctx context.Context, date string) (int64, error)
}
