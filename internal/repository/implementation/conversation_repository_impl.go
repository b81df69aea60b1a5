package implementation

import (
	"context"
	"errors"
	"time"

	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/mapper"
	"pushpilot-be/internal/model"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/internal/repository/contract"
	"pushpilot-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation) error {
	if conversation.Version == 0 {
		conversation.Version = 1
	}
	m := r.mapper.ToModel(conversation)
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ConversationRepositoryImpl) Replace(ctx context.Context, conversation *entity.Conversation) error {
	expected := conversation.Version
	m := r.mapper.ToModel(conversation)

	res := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("session_id = ? AND version = ?", conversation.SessionId, expected).
		Updates(map[string]interface{}{
			"credential": m.Credential,
			"status":     m.Status,
			"messages":   m.Messages,
			"metadata":   m.Metadata,
			"version":    expected + 1,
			"updated_at": m.UpdatedAt,
			"expires_at": m.ExpiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.New(apperror.KindConflict, "Conversation was modified by another request, please retry")
	}

	conversation.Version = expected + 1
	return nil
}

func (r *ConversationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	var m model.Conversation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Conversation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ConversationRepositoryImpl) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", cutoff).Delete(&model.Conversation{})
	return res.RowsAffected, res.Error
}
