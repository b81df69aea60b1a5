package contract

import (
	"context"

	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ExpoTokenRepository interface {
	Create(ctx context.Context, token *entity.ExpoToken) error
	Update(ctx context.Context, token *entity.ExpoToken) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByUserId(ctx context.Context, userId string) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ExpoToken, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ExpoToken, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountDistinctUsers(ctx context.Context) (int64, error)
}
