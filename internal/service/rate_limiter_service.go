package service

import (
	"context"
	"time"

	"pushpilot-be/internal/dto"
	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/internal/pkg/metrics"
	"pushpilot-be/internal/repository/contract"
)

type IRateLimiterService interface {
	Check(ctx context.Context, userId string) (*entity.RateLimitDecision, error)
	Enforce(ctx context.Context, userId string) error
	Status(ctx context.Context, userId string) (*dto.RateLimitStatusResponse, error)
}

type rateLimiterService struct {
	repo   contract.RateLimitRepository
	limit  int
	logger logger.ILogger
	now    func() time.Time
}

func NewRateLimiterService(repo contract.RateLimitRepository, dailyLimit int, log logger.ILogger, now func() time.Time) IRateLimiterService {
	if now == nil {
		now = time.Now
	}
	return &rateLimiterService{
		repo:   repo,
		limit:  dailyLimit,
		logger: log,
		now:    now,
	}
}

// Check consumes one unit of today's quota when available.
func (s *rateLimiterService) Check(ctx context.Context, userId string) (*entity.RateLimitDecision, error) {
	now := s.now().UTC()
	if s.limit <= 0 {
		return s.closedDecision(ctx, userId, now)
	}
	decision, err := s.repo.Consume(ctx, userId, entity.DayKey(now), s.limit, now)
	if err != nil {
		s.logger.Error("RATE_LIMIT", "Quota check failed", map[string]interface{}{"user_id": userId, "error": err.Error()})
		return nil, apperror.Internal("Failed to check rate limit", err)
	}
	return decision, nil
}

// closedDecision rejects without touching the counter when no calls are allowed.
func (s *rateLimiterService) closedDecision(ctx context.Context, userId string, now time.Time) (*entity.RateLimitDecision, error) {
	record, err := s.repo.FindByUserAndDate(ctx, userId, entity.DayKey(now))
	if err != nil {
		return nil, apperror.Internal("Failed to check rate limit", err)
	}
	current := 0
	if record != nil {
		current = record.Count
	}
	return &entity.RateLimitDecision{Allowed: false, Current: current, Limit: s.limit}, nil
}

func (s *rateLimiterService) Enforce(ctx context.Context, userId string) error {
	decision, err := s.Check(ctx, userId)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		metrics.RateLimitRejections.Inc()
		s.logger.Warn("RATE_LIMIT", "Daily limit reached", map[string]interface{}{
			"user_id": userId,
			"current": decision.Current,
			"limit":   decision.Limit,
		})
		return apperror.RateLimitExceeded(decision.Current, decision.Limit)
	}
	return nil
}

// Status reads today's counter without consuming quota.
func (s *rateLimiterService) Status(ctx context.Context, userId string) (*dto.RateLimitStatusResponse, error) {
	now := s.now().UTC()
	record, err := s.repo.FindByUserAndDate(ctx, userId, entity.DayKey(now))
	if err != nil {
		return nil, apperror.Internal("Failed to read rate limit", err)
	}

	current := 0
	if record != nil {
		current = record.Count
	}
	remaining := s.limit - current
	if remaining < 0 {
		remaining = 0
	}

	return &dto.RateLimitStatusResponse{
		UserId:    userId,
		Allowed:   current < s.limit,
		Current:   current,
		Limit:     s.limit,
		Remaining: remaining,
		ResetAt:   entity.NextUTCMidnight(now),
	}, nil
}
