package service

import (
	"context"
	"time"

	"pushpilot-be/internal/dto"
	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/internal/repository/contract"
	"pushpilot-be/internal/repository/specification"
	"pushpilot-be/internal/repository/unitofwork"
)

const (
	dailyReminderTitle = "Daily Reminder"
	dailyReminderBody  = "Don't forget to check your tasks for today!"
)

type IHousekeepingService interface {
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	Cleanup(ctx context.Context) (*dto.CleanupReport, error)
	DailyReminder(ctx context.Context) (*dto.SendNotificationResponse, error)
	WeeklyReport(ctx context.Context) (*dto.WeeklyReport, error)
}

type housekeepingService struct {
	uowFactory    unitofwork.RepositoryFactory
	rateLimits    contract.RateLimitRepository
	pushService   IPushService
	retentionDays int
	logger        logger.ILogger
	now           func() time.Time
}

// NewHousekeepingService runs maintenance jobs. rateLimits is the active quota
// backend so stale counters are pruned wherever they live.
func NewHousekeepingService(
	uowFactory unitofwork.RepositoryFactory,
	rateLimits contract.RateLimitRepository,
	pushService IPushService,
	retentionDays int,
	log logger.ILogger,
	now func() time.Time,
) IHousekeepingService {
	if now == nil {
		now = time.Now
	}
	return &housekeepingService{
		uowFactory:    uowFactory,
		rateLimits:    rateLimits,
		pushService:   pushService,
		retentionDays: retentionDays,
		logger:        log,
		now:           now,
	}
}

func (s *housekeepingService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := s.now().UTC()

	users, err := uow.ExpoTokenRepository().CountDistinctUsers(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to count users", err)
	}
	tokens, err := uow.ExpoTokenRepository().Count(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to count tokens", err)
	}
	active, err := uow.ConversationRepository().Count(ctx, specification.ActiveAt{Now: now})
	if err != nil {
		return nil, apperror.Internal("Failed to count conversations", err)
	}

	return &dto.StatsResponse{
		TotalUsers:          users,
		TotalTokens:         tokens,
		ActiveConversations: active,
		Timestamp:           now,
	}, nil
}

func (s *housekeepingService) Cleanup(ctx context.Context) (*dto.CleanupReport, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := s.now().UTC()

	tokens, err := uow.ExpoTokenRepository().Count(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to count tokens", err)
	}

	expired, err := uow.ConversationRepository().DeleteExpiredBefore(ctx, now)
	if err != nil {
		return nil, apperror.Internal("Failed to delete expired conversations", err)
	}

	var stale int64
	if s.retentionDays > 0 {
		cutoff := entity.DayKey(now.AddDate(0, 0, -s.retentionDays))
		stale, err = s.rateLimits.DeleteBefore(ctx, cutoff)
		if err != nil {
			return nil, apperror.Internal("Failed to prune rate limits", err)
		}
	}

	report := &dto.CleanupReport{
		TotalTokens:          tokens,
		ExpiredConversations: expired,
		StaleRateLimits:      stale,
	}
	s.logger.Info("HOUSEKEEPING", "Daily cleanup finished", map[string]interface{}{
		"total_tokens":          report.TotalTokens,
		"expired_conversations": report.ExpiredConversations,
		"stale_rate_limits":     report.StaleRateLimits,
	})
	return report, nil
}

func (s *housekeepingService) DailyReminder(ctx context.Context) (*dto.SendNotificationResponse, error) {
	res, err := s.pushService.SendAll(ctx, &dto.SendNotificationRequest{
		Title: dailyReminderTitle,
		Body:  dailyReminderBody,
		Data:  map[string]interface{}{"type": "daily_reminder"},
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			s.logger.Info("HOUSEKEEPING", "No devices registered, skipping reminder", nil)
			return &dto.SendNotificationResponse{Success: true, Results: []dto.NotificationResult{}}, nil
		}
		return nil, err
	}

	s.logger.Info("HOUSEKEEPING", "Daily reminder sent", map[string]interface{}{"sent": res.Sent, "failed": res.Failed})
	return res, nil
}

func (s *housekeepingService) WeeklyReport(ctx context.Context) (*dto.WeeklyReport, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	since := s.now().UTC().AddDate(0, 0, -7)
	logs := uow.NotificationLogRepository()

	sent, err := logs.Count(ctx,
		specification.ByDeliveryStatus{Status: entity.DeliveryStatusOk},
		specification.CreatedSince{Since: since},
	)
	if err != nil {
		return nil, apperror.Internal("Failed to count notifications", err)
	}
	total, err := logs.Count(ctx, specification.CreatedSince{Since: since})
	if err != nil {
		return nil, apperror.Internal("Failed to count notifications", err)
	}

	report := &dto.WeeklyReport{
		TotalUsers:          stats.TotalUsers,
		TotalTokens:         stats.TotalTokens,
		ActiveConversations: stats.ActiveConversations,
		NotificationsSent:   sent,
		NotificationsFailed: total - sent,
	}
	s.logger.Info("HOUSEKEEPING", "Weekly report", map[string]interface{}{
		"total_users":          report.TotalUsers,
		"total_tokens":         report.TotalTokens,
		"active_conversations": report.ActiveConversations,
		"notifications_sent":   report.NotificationsSent,
		"notifications_failed": report.NotificationsFailed,
	})
	return report, nil
}
