package implementation

import (
	"context"
	"errors"

	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/mapper"
	"pushpilot-be/internal/model"
	"pushpilot-be/internal/repository/contract"
	"pushpilot-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpoTokenRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExpoTokenMapper
}

func NewExpoTokenRepository(db *gorm.DB) contract.ExpoTokenRepository {
	return &ExpoTokenRepositoryImpl{
		db:     db,
		mapper: mapper.NewExpoTokenMapper(),
	}
}

func (r *ExpoTokenRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ExpoTokenRepositoryImpl) Create(ctx context.Context, token *entity.ExpoToken) error {
	m := r.mapper.ToModel(token)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*token = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExpoTokenRepositoryImpl) Update(ctx context.Context, token *entity.ExpoToken) error {
	m := r.mapper.ToModel(token)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*token = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExpoTokenRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.ExpoToken{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *ExpoTokenRepositoryImpl) DeleteByUserId(ctx context.Context, userId string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.ExpoToken{})
	return res.RowsAffected > 0, res.Error
}

func (r *ExpoTokenRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ExpoToken, error) {
	var m model.ExpoToken
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ExpoTokenRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ExpoToken, error) {
	var models []*model.ExpoToken
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ExpoTokenRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ExpoToken{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ExpoTokenRepositoryImpl) CountDistinctUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ExpoToken{}).Distinct("user_id").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
