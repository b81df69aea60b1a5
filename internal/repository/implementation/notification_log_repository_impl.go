package implementation

import (
	"context"

	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/mapper"
	"pushpilot-be/internal/model"
	"pushpilot-be/internal/repository/contract"
	"pushpilot-be/internal/repository/specification"

	"gorm.io/gorm"
)

type NotificationLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExpoTokenMapper
}

func NewNotificationLogRepository(db *gorm.DB) contract.NotificationLogRepository {
	return &NotificationLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewExpoTokenMapper(),
	}
}

func (r *NotificationLogRepositoryImpl) CreateBulk(ctx context.Context, logs []*entity.NotificationLog) error {
	if len(logs) == 0 {
		return nil
	}
	models := make([]*model.NotificationLog, len(logs))
	for i, l := range logs {
		models[i] = r.mapper.NotificationLogToModel(l)
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (r *NotificationLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.NotificationLog{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
