package unitofwork

import (
	"context"

	"pushpilot-be/internal/repository/contract"
)

// RepositoryFactory hands out a fresh UnitOfWork per request or job.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

// UnitOfWork groups the repositories. Between Begin and Commit every
// repository it returns runs on the same transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	RateLimitRepository() contract.RateLimitRepository
	ExpoTokenRepository() contract.ExpoTokenRepository
	NotificationLogRepository() contract.NotificationLogRepository
}
