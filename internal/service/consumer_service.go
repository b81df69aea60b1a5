package service

import (
	"context"
	"errors"
	"fmt"

	"pushpilot-be/internal/dto"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	taskCreatedTitle = "Task created"
	maxRedeliveries  = 3
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber  message.Subscriber
	topicName   string
	pushService IPushService
	logger      logger.ILogger
	attempts    map[string]int
}

// NewConsumerService turns TASK_CREATED events into a push to the task's owner.
func NewConsumerService(subscriber message.Subscriber, topicName string, pushService IPushService, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber:  subscriber,
		topicName:   topicName,
		pushService: pushService,
		logger:      log,
		attempts:    map[string]int{},
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg.Context(), msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("CONSUMER", "Dropping malformed event", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	if event.Type != events.TypeTaskCreated {
		msg.Ack()
		return
	}

	if err := cs.notifyTaskCreated(ctx, event); err != nil {
		cs.attempts[msg.UUID]++
		if cs.attempts[msg.UUID] < maxRedeliveries {
			cs.logger.Warn("CONSUMER", "Task notification failed, retrying", map[string]interface{}{"error": err.Error()})
			msg.Nack()
			return
		}
		cs.logger.Error("CONSUMER", "Task notification failed, giving up", map[string]interface{}{"error": err.Error()})
	}

	delete(cs.attempts, msg.UUID)
	msg.Ack()
}

func (cs *consumerService) notifyTaskCreated(ctx context.Context, event events.BaseEvent) error {
	userId, _ := event.Data["user_id"].(string)
	title, _ := event.Data["title"].(string)
	if userId == "" {
		return nil
	}

	_, err := cs.pushService.SendToUser(ctx, userId, &dto.SendNotificationRequest{
		Title: taskCreatedTitle,
		Body:  fmt.Sprintf("'%s' was added to your tasks", title),
		Data: map[string]interface{}{
			"type":       "task_created",
			"session_id": event.Data["session_id"],
		},
	})
	if errors.Is(err, apperror.ErrNotFound) {
		cs.logger.Info("CONSUMER", "No device registered for task owner", map[string]interface{}{"user_id": userId})
		return nil
	}
	return err
}
