package implementation

import (
	"context"
	"errors"
	"time"

	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/mapper"
	"pushpilot-be/internal/model"
	"pushpilot-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RateLimitRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RateLimitMapper
}

func NewRateLimitRepository(db *gorm.DB) contract.RateLimitRepository {
	return &RateLimitRepositoryImpl{
		db:     db,
		mapper: mapper.NewRateLimitMapper(),
	}
}

// Consume relies on the (user_id, date) unique index: the insert either wins or
// becomes a no-op, and the loser falls through to the guarded increment.
func (r *RateLimitRepositoryImpl) Consume(ctx context.Context, userId, date string, limit int, now time.Time) (*entity.RateLimitDecision, error) {
	if limit <= 0 {
		existing, err := r.FindByUserAndDate(ctx, userId, date)
		if err != nil {
			return nil, err
		}
		current := 0
		if existing != nil {
			current = existing.Count
		}
		return &entity.RateLimitDecision{Allowed: false, Current: current, Limit: limit}, nil
	}

	var decision *entity.RateLimitDecision

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &model.RateLimit{
			Id:        uuid.New(),
			UserId:    userId,
			Date:      date,
			Count:     1,
			Limit:     limit,
			LastReset: now,
			NextReset: entity.NextUTCMidnight(now),
			CreatedAt: now,
			UpdatedAt: now,
		}
		inserted := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoNothing: true,
		}).Create(row)
		if inserted.Error != nil {
			return inserted.Error
		}
		if inserted.RowsAffected == 1 {
			decision = &entity.RateLimitDecision{Allowed: true, Current: 1, Limit: limit}
			return nil
		}

		incremented := tx.Model(&model.RateLimit{}).
			Where("user_id = ? AND date = ? AND count < ?", userId, date, limit).
			Updates(map[string]interface{}{
				"count":      gorm.Expr("count + 1"),
				"updated_at": now,
			})
		if incremented.Error != nil {
			return incremented.Error
		}

		var current model.RateLimit
		if err := tx.Where("user_id = ? AND date = ?", userId, date).First(&current).Error; err != nil {
			return err
		}

		decision = &entity.RateLimitDecision{
			Allowed: incremented.RowsAffected == 1,
			Current: current.Count,
			Limit:   limit,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decision, nil
}

func (r *RateLimitRepositoryImpl) FindByUserAndDate(ctx context.Context, userId, date string) (*entity.RateLimit, error) {
	var m model.RateLimit
	err := r.db.WithContext(ctx).Where("user_id = ? AND date = ?", userId, date).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RateLimitRepositoryImpl) DeleteBefore(ctx context.Context, date string) (int64, error) {
	res := r.db.WithContext(ctx).Where("date < ?", date).Delete(&model.RateLimit{})
	return res.RowsAffected, res.Error
}
