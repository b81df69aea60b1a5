package mapper

import (
	"encoding/json"

	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/model"
)

type ExpoTokenMapper struct{}

func NewExpoTokenMapper() *ExpoTokenMapper {
	return &ExpoTokenMapper{}
}

func (m *ExpoTokenMapper) ToEntity(t *model.ExpoToken) *entity.ExpoToken {
	if t == nil {
		return nil
	}
	return &entity.ExpoToken{
		Id:        t.Id,
		UserId:    t.UserId,
		Token:     t.Token,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (m *ExpoTokenMapper) ToEntities(tokens []*model.ExpoToken) []*entity.ExpoToken {
	out := make([]*entity.ExpoToken, len(tokens))
	for i, t := range tokens {
		out[i] = m.ToEntity(t)
	}
	return out
}

func (m *ExpoTokenMapper) ToModel(t *entity.ExpoToken) *model.ExpoToken {
	if t == nil {
		return nil
	}
	return &model.ExpoToken{
		Id:        t.Id,
		UserId:    t.UserId,
		Token:     t.Token,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (m *ExpoTokenMapper) NotificationLogToModel(l *entity.NotificationLog) *model.NotificationLog {
	if l == nil {
		return nil
	}
	var data []byte
	if len(l.Data) > 0 {
		data, _ = json.Marshal(l.Data)
	}
	return &model.NotificationLog{
		Id:        l.Id,
		UserId:    l.UserId,
		Token:     l.Token,
		Title:     l.Title,
		Body:      l.Body,
		Status:    l.Status,
		TicketId:  l.TicketId,
		Error:     l.Error,
		Data:      data,
		CreatedAt: l.CreatedAt,
	}
}

func (m *ExpoTokenMapper) NotificationLogToEntity(l *model.NotificationLog) *entity.NotificationLog {
	if l == nil {
		return nil
	}
	var data map[string]interface{}
	if len(l.Data) > 0 {
		_ = json.Unmarshal(l.Data, &data)
	}
	return &entity.NotificationLog{
		Id:        l.Id,
		UserId:    l.UserId,
		Token:     l.Token,
		Title:     l.Title,
		Body:      l.Body,
		Status:    l.Status,
		TicketId:  l.TicketId,
		Error:     l.Error,
		Data:      data,
		CreatedAt: l.CreatedAt,
	}
}
