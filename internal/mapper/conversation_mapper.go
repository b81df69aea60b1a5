package mapper

import (
	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/model"

	"gorm.io/datatypes"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	turns := make([]*entity.Turn, len(c.Messages))
	for i := range c.Messages {
		turns[i] = m.turnToEntity(&c.Messages[i])
	}

	meta := c.Metadata.Data()
	return &entity.Conversation{
		SessionId:  c.SessionId,
		UserId:     c.UserId,
		Credential: c.Credential,
		Status:     c.Status,
		Messages:   turns,
		Metadata: entity.ConversationMetadata{
			TotalMessages:    meta.TotalMessages,
			TotalToolCalls:   meta.TotalToolCalls,
			ActionsCompleted: meta.ActionsCompleted,
		},
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		ExpiresAt: c.ExpiresAt,
	}
}

func (m *ConversationMapper) ToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	return &model.Conversation{
		SessionId:  c.SessionId,
		UserId:     c.UserId,
		Credential: c.Credential,
		Status:     c.Status,
		Messages:   m.TurnsToModel(c.Messages),
		Metadata:   m.MetadataToModel(c.Metadata),
		Version:    c.Version,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		ExpiresAt:  c.ExpiresAt,
	}
}

func (m *ConversationMapper) TurnsToModel(turns []*entity.Turn) datatypes.JSONSlice[model.ConversationTurn] {
	out := make(datatypes.JSONSlice[model.ConversationTurn], len(turns))
	for i, t := range turns {
		out[i] = m.turnToModel(t)
	}
	return out
}

func (m *ConversationMapper) MetadataToModel(meta entity.ConversationMetadata) datatypes.JSONType[model.ConversationMetadata] {
	return datatypes.NewJSONType(model.ConversationMetadata{
		TotalMessages:    meta.TotalMessages,
		TotalToolCalls:   meta.TotalToolCalls,
		ActionsCompleted: meta.ActionsCompleted,
	})
}

func (m *ConversationMapper) turnToEntity(t *model.ConversationTurn) *entity.Turn {
	turn := &entity.Turn{
		MessageId:            t.MessageId,
		Role:                 entity.Role(t.Role),
		Content:              t.Content,
		Timestamp:            t.Timestamp,
		RequiresConfirmation: t.RequiresConfirmation,
	}

	for _, call := range t.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, entity.ToolCall{Name: call.Name, Arguments: call.Arguments})
	}
	if t.PendingAction != nil {
		turn.PendingAction = entity.NewPendingAction(entity.ActionName(t.PendingAction.Action), t.PendingAction.Data)
	}
	if r := t.ActionResult; r != nil {
		turn.ActionResult = &entity.ActionResult{
			Success:    r.Success,
			Message:    r.Message,
			Error:      r.Error,
			Data:       r.Data,
			StatusCode: r.StatusCode,
		}
	}
	return turn
}

func (m *ConversationMapper) turnToModel(t *entity.Turn) model.ConversationTurn {
	turn := model.ConversationTurn{
		MessageId:            t.MessageId,
		Role:                 string(t.Role),
		Content:              t.Content,
		Timestamp:            t.Timestamp,
		RequiresConfirmation: t.RequiresConfirmation,
	}

	for _, call := range t.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, model.ConversationToolCall{Name: call.Name, Arguments: call.Arguments})
	}
	if t.PendingAction != nil {
		turn.PendingAction = &model.ConversationAction{
			Action: string(t.PendingAction.Action),
			Data:   t.PendingAction.Data,
		}
	}
	if r := t.ActionResult; r != nil {
		turn.ActionResult = &model.ConversationActionResult{
			Success:    r.Success,
			Message:    r.Message,
			Error:      r.Error,
			Data:       r.Data,
			StatusCode: r.StatusCode,
		}
	}
	return turn
}
