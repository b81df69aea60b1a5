package service

import (
	"context"
	"time"

	"pushpilot-be/internal/dto"
	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/internal/pkg/metrics"
	"pushpilot-be/internal/repository/specification"
	"pushpilot-be/internal/repository/unitofwork"
	"pushpilot-be/pkg/events"
	"pushpilot-be/pkg/llm"
	"pushpilot-be/pkg/tools"

	"github.com/google/uuid"
)

const systemPrompt = `You are a helpful assistant that converts user requests into structured API calls.
Handle typos and variations gracefully (e.g., "creat" = "create", "taks" = "task").
When the user wants to create a task, use the createTask function.
Always ask for confirmation before executing actions that modify data.
Be conversational and helpful.`

const (
	cancelledMessage = "Action cancelled. No changes were made."
	confirmYes       = "yes"
	confirmNo        = "no"
)

type IAssistantService interface {
	Chat(ctx context.Context, req *dto.ChatRequest, credential string) (*dto.ChatResponse, error)
	Confirm(ctx context.Context, req *dto.ConfirmRequest, credential string) (*dto.ChatResponse, error)
	GetConversation(ctx context.Context, sessionId, userId string) (*dto.ConversationResponse, error)
}

type assistantService struct {
	uowFactory  unitofwork.RepositoryFactory
	rateLimiter IRateLimiterService
	llmProvider llm.LLMProvider
	dispatcher  *tools.Dispatcher
	publisher   IPublisherService
	ttl         time.Duration
	logger      logger.ILogger
	now         func() time.Time
}

func NewAssistantService(
	uowFactory unitofwork.RepositoryFactory,
	rateLimiter IRateLimiterService,
	llmProvider llm.LLMProvider,
	dispatcher *tools.Dispatcher,
	publisher IPublisherService,
	ttl time.Duration,
	log logger.ILogger,
	now func() time.Time,
) IAssistantService {
	if now == nil {
		now = time.Now
	}
	return &assistantService{
		uowFactory:  uowFactory,
		rateLimiter: rateLimiter,
		llmProvider: llmProvider,
		dispatcher:  dispatcher,
		publisher:   publisher,
		ttl:         ttl,
		logger:      log,
		now:         now,
	}
}

func (s *assistantService) Chat(ctx context.Context, req *dto.ChatRequest, credential string) (*dto.ChatResponse, error) {
	if err := s.rateLimiter.Enforce(ctx, req.UserId); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("rate_limited").Inc()
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ConversationRepository()

	conversation, err := s.resolveConversation(ctx, req, credential)
	if err != nil {
		return nil, err
	}

	conversation.Append(&entity.Turn{
		Role:      entity.RoleUser,
		Content:   req.Message,
		Timestamp: s.now().UTC(),
	})

	started := time.Now()
	completion, err := s.llmProvider.Complete(ctx, buildPrompt(conversation), s.dispatcher.Definitions())
	metrics.LLMDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("llm_error").Inc()
		s.logger.Error("ASSISTANT", "Model call failed", map[string]interface{}{
			"session_id": conversation.SessionId,
			"user_id":    req.UserId,
			"error":      err.Error(),
		})
		return nil, apperror.Internal("Error processing chat request", err)
	}

	reply := s.assistantTurn(completion)
	conversation.Metadata.TotalToolCalls += len(reply.ToolCalls)
	conversation.Append(reply)
	conversation.Touch(s.now().UTC(), s.ttl)

	if err := repo.Replace(ctx, conversation); err != nil {
		return nil, persistError(err)
	}

	metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()
	return &dto.ChatResponse{
		Message:              reply.Content,
		SessionId:            conversation.SessionId,
		RequiresConfirmation: reply.RequiresConfirmation,
		PendingAction:        toPendingActionResponse(reply.PendingAction),
		Success:              true,
	}, nil
}

func (s *assistantService) Confirm(ctx context.Context, req *dto.ConfirmRequest, credential string) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ConversationRepository()

	conversation, err := repo.FindOne(ctx,
		specification.BySessionID{SessionID: req.SessionId},
		specification.ByUserID{UserID: req.UserId},
	)
	if err != nil {
		return nil, apperror.Internal("Failed to load conversation", err)
	}
	if conversation == nil {
		return nil, apperror.NotFound("Conversation session not found")
	}

	pending := conversation.Pending()
	if pending == nil {
		return nil, apperror.New(apperror.KindNoPendingAction, "No pending action to confirm")
	}

	if !*req.Confirmed {
		metrics.ConfirmationsTotal.WithLabelValues("cancelled").Inc()
		now := s.now().UTC()
		conversation.Append(&entity.Turn{Role: entity.RoleUser, Content: confirmNo, Timestamp: now})
		conversation.Append(&entity.Turn{Role: entity.RoleAssistant, Content: cancelledMessage, Timestamp: now})
		conversation.Touch(now, s.ttl)

		if err := repo.Replace(ctx, conversation); err != nil {
			return nil, persistError(err)
		}
		return &dto.ChatResponse{
			Message:   cancelledMessage,
			SessionId: conversation.SessionId,
			Success:   true,
		}, nil
	}

	metrics.ConfirmationsTotal.WithLabelValues("confirmed").Inc()
	if credential == "" {
		credential = conversation.Credential
	}

	result := s.dispatcher.Execute(ctx, string(pending.Action), pending.Data, credential)
	metrics.ToolExecutionsTotal.WithLabelValues(string(pending.Action), metrics.Status(result.Success)).Inc()

	var content string
	if result.Success {
		content = "✅ " + orDefault(result.Message, "Action completed successfully!")
		conversation.Metadata.ActionsCompleted++
	} else {
		content = "❌ Error: " + orDefault(result.Error, "Action failed")
		s.logger.Warn("ASSISTANT", "Confirmed action failed", map[string]interface{}{
			"session_id":  conversation.SessionId,
			"action":      pending.Action,
			"status_code": result.StatusCode,
			"error":       result.Error,
		})
	}

	now := s.now().UTC()
	conversation.Append(&entity.Turn{Role: entity.RoleUser, Content: confirmYes, Timestamp: now})
	conversation.Append(&entity.Turn{
		Role:      entity.RoleAssistant,
		Content:   content,
		Timestamp: now,
		ActionResult: &entity.ActionResult{
			Success:    result.Success,
			Message:    result.Message,
			Error:      result.Error,
			Data:       result.Data,
			StatusCode: result.StatusCode,
		},
	})
	conversation.Touch(now, s.ttl)

	if err := repo.Replace(ctx, conversation); err != nil {
		return nil, persistError(err)
	}

	if result.Success && pending.Action == entity.ActionCreateTask {
		s.publishTaskCreated(ctx, conversation, pending)
	}

	return &dto.ChatResponse{
		Message:   content,
		SessionId: conversation.SessionId,
		Success:   result.Success,
	}, nil
}

func (s *assistantService) GetConversation(ctx context.Context, sessionId, userId string) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, apperror.Internal("Failed to load conversation", err)
	}
	if conversation == nil {
		return nil, apperror.NotFound("Conversation session not found")
	}
	return toConversationResponse(conversation, s.now().UTC()), nil
}

// resolveConversation loads the caller's session or starts a new one. A new
// session is stored before the model is called.
func (s *assistantService) resolveConversation(ctx context.Context, req *dto.ChatRequest, credential string) (*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ConversationRepository()
	now := s.now().UTC()

	if req.SessionId != "" {
		conversation, err := repo.FindOne(ctx,
			specification.BySessionID{SessionID: req.SessionId},
			specification.ByUserID{UserID: req.UserId},
		)
		if err != nil {
			return nil, apperror.Internal("Failed to load conversation", err)
		}
		if conversation == nil {
			return nil, apperror.NotFound("Conversation session not found")
		}
		if conversation.IsExpired(now) {
			return nil, apperror.New(apperror.KindExpired, "Conversation session expired. Please start a new conversation.")
		}
		return conversation, nil
	}

	conversation := &entity.Conversation{
		SessionId:  uuid.NewString(),
		UserId:     req.UserId,
		Credential: credential,
		Status:     entity.ConversationStatusActive,
		Messages:   []*entity.Turn{},
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}
	if err := repo.Create(ctx, conversation); err != nil {
		return nil, apperror.Internal("Failed to create conversation", err)
	}

	s.logger.Info("ASSISTANT", "Conversation started", map[string]interface{}{
		"session_id": conversation.SessionId,
		"user_id":    req.UserId,
	})
	return conversation, nil
}

// assistantTurn records every tool call and turns the first createTask call
// into a pending action with a confirmation prompt.
func (s *assistantService) assistantTurn(completion *llm.Completion) *entity.Turn {
	turn := &entity.Turn{
		Role:      entity.RoleAssistant,
		Content:   completion.Text,
		Timestamp: s.now().UTC(),
		ToolCalls: make([]entity.ToolCall, 0, len(completion.ToolCalls)),
	}

	for _, call := range completion.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, entity.ToolCall{Name: call.Name, Arguments: call.Arguments})

		if turn.PendingAction == nil && call.Name == string(entity.ActionCreateTask) {
			turn.PendingAction = entity.NewPendingAction(entity.ActionCreateTask, call.Arguments)
			turn.RequiresConfirmation = true
			turn.Content = turn.PendingAction.ConfirmationPrompt()
		}
	}
	return turn
}

func (s *assistantService) publishTaskCreated(ctx context.Context, conversation *entity.Conversation, pending *entity.PendingAction) {
	if s.publisher == nil {
		return
	}

	var endsOn *float64
	if v, ok := entity.NumberArg(pending.Data["endsOn"]); ok {
		endsOn = &v
	}

	event := events.NewTaskCreated(conversation.UserId, conversation.SessionId, pending.Title(), endsOn, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("ASSISTANT", "Failed to publish task event", map[string]interface{}{
			"session_id": conversation.SessionId,
			"error":      err.Error(),
		})
	}
}

// buildPrompt strips tool bookkeeping; the model only sees role and content.
func buildPrompt(conversation *entity.Conversation) []llm.Message {
	history := make([]llm.Message, 0, len(conversation.Messages)+1)
	history = append(history, llm.Message{Role: "system", Content: systemPrompt})
	for _, turn := range conversation.Messages {
		history = append(history, llm.Message{Role: string(turn.Role), Content: turn.Content})
	}
	return history
}

func persistError(err error) error {
	if apperror.KindOf(err) == apperror.KindConflict {
		return err
	}
	return apperror.Internal("Failed to save conversation", err)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func toPendingActionResponse(p *entity.PendingAction) *dto.PendingActionResponse {
	if p == nil {
		return nil
	}
	return &dto.PendingActionResponse{Action: string(p.Action), Data: p.Data}
}

func toConversationResponse(c *entity.Conversation, now time.Time) *dto.ConversationResponse {
	messages := make([]dto.TurnResponse, 0, len(c.Messages))
	for _, t := range c.Messages {
		turn := dto.TurnResponse{
			MessageId:            t.MessageId,
			Role:                 string(t.Role),
			Content:              t.Content,
			Timestamp:            t.Timestamp,
			RequiresConfirmation: t.RequiresConfirmation,
			PendingAction:        toPendingActionResponse(t.PendingAction),
		}
		for _, call := range t.ToolCalls {
			turn.ToolCalls = append(turn.ToolCalls, dto.ToolCallResponse{Name: call.Name, Arguments: call.Arguments})
		}
		if t.ActionResult != nil {
			turn.ActionResult = &dto.ActionResultResponse{
				Success:    t.ActionResult.Success,
				Message:    t.ActionResult.Message,
				Error:      t.ActionResult.Error,
				Data:       t.ActionResult.Data,
				StatusCode: t.ActionResult.StatusCode,
			}
		}
		messages = append(messages, turn)
	}

	return &dto.ConversationResponse{
		SessionId: c.SessionId,
		UserId:    c.UserId,
		Status:    c.Status,
		State:     string(c.State(now)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		ExpiresAt: c.ExpiresAt,
		Messages:  messages,
		Metadata: dto.ConversationMetadataResponse{
			TotalMessages:    c.Metadata.TotalMessages,
			TotalToolCalls:   c.Metadata.TotalToolCalls,
			ActionsCompleted: c.Metadata.ActionsCompleted,
		},
	}
}
