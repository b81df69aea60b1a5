package contract

import (
	"context"
	"time"

	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/repository/specification"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	// Replace writes the whole record if its Version still matches the stored one,
	// then bumps Version. A stale Version yields an apperror Conflict.
	Replace(ctx context.Context, conversation *entity.Conversation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
