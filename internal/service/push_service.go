package service

import (
	"context"
	"fmt"
	"time"

	"pushpilot-be/internal/dto"
	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/internal/pkg/metrics"
	"pushpilot-be/internal/repository/specification"
	"pushpilot-be/internal/repository/unitofwork"
	"pushpilot-be/pkg/expo"

	"github.com/google/uuid"
)

const (
	testNotificationTitle = "🔔 Testing Notification"
	testNotificationBody  = "This is a test notification from your backend!"

	invalidTokenMessage = "Invalid Expo push token format"
)

// PushSender is the slice of the Expo client the push service needs.
type PushSender interface {
	Send(ctx context.Context, messages []expo.Message) []expo.Ticket
}

type IPushService interface {
	SendAll(ctx context.Context, req *dto.SendNotificationRequest) (*dto.SendNotificationResponse, error)
	SendTest(ctx context.Context) (*dto.SendTestNotificationResponse, error)
	SendToUser(ctx context.Context, userId string, req *dto.SendNotificationRequest) (*dto.SendToUserResponse, error)
}

type pushService struct {
	uowFactory unitofwork.RepositoryFactory
	sender     PushSender
	logger     logger.ILogger
	now        func() time.Time
}

func NewPushService(uowFactory unitofwork.RepositoryFactory, sender PushSender, log logger.ILogger, now func() time.Time) IPushService {
	if now == nil {
		now = time.Now
	}
	return &pushService{
		uowFactory: uowFactory,
		sender:     sender,
		logger:     log,
		now:        now,
	}
}

func (s *pushService) SendAll(ctx context.Context, req *dto.SendNotificationRequest) (*dto.SendNotificationResponse, error) {
	req = req.WithDefaults()

	tokens, err := s.allTokens(ctx)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, apperror.NotFound("No expo tokens found in database")
	}

	results := s.deliver(ctx, tokens, req.Title, req.Body, req.Data)
	sent, failed := tally(results)

	return &dto.SendNotificationResponse{
		Success:     failed == 0,
		TotalTokens: len(tokens),
		Sent:        sent,
		Failed:      failed,
		Results:     results,
	}, nil
}

func (s *pushService) SendTest(ctx context.Context) (*dto.SendTestNotificationResponse, error) {
	tokens, err := s.allTokens(ctx)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return &dto.SendTestNotificationResponse{
			Success: false,
			Message: "No expo tokens found in database",
		}, nil
	}

	results := s.deliver(ctx, tokens, testNotificationTitle, testNotificationBody, map[string]interface{}{
		"type":      "test",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
	sent, failed := tally(results)

	return &dto.SendTestNotificationResponse{
		Success:     true,
		Message:     fmt.Sprintf("Test notifications sent! %d succeeded, %d failed", sent, failed),
		TotalTokens: len(tokens),
		Sent:        sent,
		Failed:      failed,
	}, nil
}

func (s *pushService) SendToUser(ctx context.Context, userId string, req *dto.SendNotificationRequest) (*dto.SendToUserResponse, error) {
	req = req.WithDefaults()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	token, err := uow.ExpoTokenRepository().FindOne(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, apperror.Internal("Failed to load expo token", err)
	}
	if token == nil {
		return nil, apperror.NotFound(fmt.Sprintf("No expo token found for user: %s", userId))
	}

	result := s.deliver(ctx, []*entity.ExpoToken{token}, req.Title, req.Body, req.Data)[0]
	if result.Status == dto.DeliveryResultSent {
		return &dto.SendToUserResponse{
			Success: true,
			Message: fmt.Sprintf("Notification sent to user %s", userId),
			Result:  result,
		}, nil
	}
	return &dto.SendToUserResponse{
		Success: false,
		Message: "Failed to send notification",
		Result:  result,
	}, nil
}

func (s *pushService) allTokens(ctx context.Context) ([]*entity.ExpoToken, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tokens, err := uow.ExpoTokenRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return nil, apperror.Internal("Failed to load expo tokens", err)
	}
	return tokens, nil
}

// deliver sends one message per token. Malformed tokens never reach Expo.
// Every attempt is written to notification_logs.
func (s *pushService) deliver(ctx context.Context, tokens []*entity.ExpoToken, title, body string, data map[string]interface{}) []dto.NotificationResult {
	results := make([]dto.NotificationResult, len(tokens))
	logs := make([]*entity.NotificationLog, len(tokens))
	now := s.now()

	messages := make([]expo.Message, 0, len(tokens))
	positions := make([]int, 0, len(tokens))

	for i, t := range tokens {
		results[i] = dto.NotificationResult{UserId: t.UserId, ExpoToken: t.Token}
		logs[i] = &entity.NotificationLog{
			Id:        uuid.New(),
			UserId:    t.UserId,
			Token:     t.Token,
			Title:     title,
			Body:      body,
			Data:      data,
			CreatedAt: now,
		}

		if !expo.IsPushToken(t.Token) {
			results[i].Status = dto.DeliveryResultFailed
			results[i].Message = invalidTokenMessage
			logs[i].Status = entity.DeliveryStatusSkipped
			logs[i].Error = invalidTokenMessage
			continue
		}

		messages = append(messages, expo.Message{To: t.Token, Title: title, Body: body, Sound: "default", Data: data})
		positions = append(positions, i)
	}

	if len(messages) > 0 {
		tickets := s.sender.Send(ctx, messages)
		for j, ticket := range tickets {
			i := positions[j]
			if ticket.Ok() {
				results[i].Status = dto.DeliveryResultSent
				results[i].Message = "Notification sent successfully"
				logs[i].Status = entity.DeliveryStatusOk
				logs[i].TicketId = ticket.Id
				continue
			}
			msg := ticket.Message
			if msg == "" {
				msg = "Unknown error"
			}
			results[i].Status = dto.DeliveryResultFailed
			results[i].Message = msg
			logs[i].Status = entity.DeliveryStatusError
			logs[i].Error = msg
		}
	}

	for _, l := range logs {
		metrics.PushDeliveriesTotal.WithLabelValues(l.Status).Inc()
	}

	sent, failed := tally(results)
	s.logger.Info("PUSH", "Delivery finished", map[string]interface{}{
		"title":  title,
		"tokens": len(tokens),
		"sent":   sent,
		"failed": failed,
	})

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationLogRepository().CreateBulk(ctx, logs); err != nil {
		s.logger.Warn("PUSH", "Failed to record notification logs", map[string]interface{}{"error": err.Error()})
	}

	return results
}

func tally(results []dto.NotificationResult) (sent, failed int) {
	for _, r := range results {
		if r.Status == dto.DeliveryResultSent {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}
