package contract

import (
	"context"

	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/repository/specification"
)

type NotificationLogRepository interface {
	CreateBulk(ctx context.Context, logs []*entity.NotificationLog) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
