package service

import (
	"context"
	"fmt"
	"time"

	"pushpilot-be/internal/dto"
	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/internal/repository/specification"
	"pushpilot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IExpoTokenService interface {
	// Upsert keeps one token per user. The bool reports whether a row was created.
	Upsert(ctx context.Context, req *dto.CreateExpoTokenRequest) (*dto.ExpoTokenResponse, bool, error)
	GetAll(ctx context.Context) ([]*dto.ExpoTokenResponse, error)
	Show(ctx context.Context, id string) (*dto.ExpoTokenResponse, error)
	ShowByUser(ctx context.Context, userId string) (*dto.ExpoTokenResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateExpoTokenRequest) (*dto.ExpoTokenResponse, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userId string) error
}

type expoTokenService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	now        func() time.Time
}

func NewExpoTokenService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger, now func() time.Time) IExpoTokenService {
	if now == nil {
		now = time.Now
	}
	return &expoTokenService{
		uowFactory: uowFactory,
		logger:     log,
		now:        now,
	}
}

func (s *expoTokenService) Upsert(ctx context.Context, req *dto.CreateExpoTokenRequest) (*dto.ExpoTokenResponse, bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, false, apperror.Internal("Failed to start transaction", err)
	}
	defer uow.Rollback()

	repo := uow.ExpoTokenRepository()
	now := s.now().UTC()

	existing, err := repo.FindOne(ctx, specification.ByUserID{UserID: req.UserId})
	if err != nil {
		return nil, false, apperror.Internal("Failed to load expo token", err)
	}

	created := existing == nil
	token := existing
	if created {
		token = &entity.ExpoToken{
			Id:        uuid.New(),
			UserId:    req.UserId,
			Token:     req.ExpoToken,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = repo.Create(ctx, token)
	} else {
		token.Token = req.ExpoToken
		token.UpdatedAt = now
		err = repo.Update(ctx, token)
	}
	if err != nil {
		return nil, false, apperror.Internal("Failed to save expo token", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, false, apperror.Internal("Failed to save expo token", err)
	}

	s.logger.Info("EXPO_TOKEN", "Token registered", map[string]interface{}{"user_id": req.UserId, "created": created})
	return toExpoTokenResponse(token), created, nil
}

func (s *expoTokenService) GetAll(ctx context.Context) ([]*dto.ExpoTokenResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tokens, err := uow.ExpoTokenRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return nil, apperror.Internal("Failed to load expo tokens", err)
	}

	res := make([]*dto.ExpoTokenResponse, 0, len(tokens))
	for _, t := range tokens {
		res = append(res, toExpoTokenResponse(t))
	}
	return res, nil
}

func (s *expoTokenService) Show(ctx context.Context, id string) (*dto.ExpoTokenResponse, error) {
	tokenId, err := parseTokenId(id)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	token, err := uow.ExpoTokenRepository().FindOne(ctx, specification.ByID{ID: tokenId})
	if err != nil {
		return nil, apperror.Internal("Failed to load expo token", err)
	}
	if token == nil {
		return nil, apperror.NotFound("Expo token not found")
	}
	return toExpoTokenResponse(token), nil
}

func (s *expoTokenService) ShowByUser(ctx context.Context, userId string) (*dto.ExpoTokenResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	token, err := uow.ExpoTokenRepository().FindOne(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, apperror.Internal("Failed to load expo token", err)
	}
	if token == nil {
		return nil, apperror.NotFound(fmt.Sprintf("No Expo token found for user: %s", userId))
	}
	return toExpoTokenResponse(token), nil
}

func (s *expoTokenService) Update(ctx context.Context, id string, req *dto.UpdateExpoTokenRequest) (*dto.ExpoTokenResponse, error) {
	tokenId, err := parseTokenId(id)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal("Failed to start transaction", err)
	}
	defer uow.Rollback()

	repo := uow.ExpoTokenRepository()
	token, err := repo.FindOne(ctx, specification.ByID{ID: tokenId})
	if err != nil {
		return nil, apperror.Internal("Failed to load expo token", err)
	}
	if token == nil {
		return nil, apperror.NotFound("Expo token not found")
	}

	if req.UserId == nil && req.ExpoToken == nil {
		return nil, apperror.Validation("No fields to update")
	}

	if req.UserId != nil && *req.UserId != token.UserId {
		other, err := repo.FindOne(ctx, specification.ByUserID{UserID: *req.UserId})
		if err != nil {
			return nil, apperror.Internal("Failed to load expo token", err)
		}
		if other != nil {
			return nil, apperror.New(apperror.KindConflict, fmt.Sprintf("User %s already has an Expo token", *req.UserId))
		}
		token.UserId = *req.UserId
	}
	if req.ExpoToken != nil {
		token.Token = *req.ExpoToken
	}
	token.UpdatedAt = s.now().UTC()

	if err := repo.Update(ctx, token); err != nil {
		return nil, apperror.Internal("Failed to update expo token", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal("Failed to update expo token", err)
	}
	return toExpoTokenResponse(token), nil
}

func (s *expoTokenService) Delete(ctx context.Context, id string) error {
	tokenId, err := parseTokenId(id)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.ExpoTokenRepository().Delete(ctx, tokenId)
	if err != nil {
		return apperror.Internal("Failed to delete expo token", err)
	}
	if !deleted {
		return apperror.NotFound("Expo token not found")
	}
	return nil
}

func (s *expoTokenService) DeleteByUser(ctx context.Context, userId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.ExpoTokenRepository().DeleteByUserId(ctx, userId)
	if err != nil {
		return apperror.Internal("Failed to delete expo token", err)
	}
	if !deleted {
		return apperror.NotFound(fmt.Sprintf("No Expo token found for user: %s", userId))
	}
	return nil
}

func parseTokenId(id string) (uuid.UUID, error) {
	tokenId, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid token ID format")
	}
	return tokenId, nil
}

func toExpoTokenResponse(t *entity.ExpoToken) *dto.ExpoTokenResponse {
	return &dto.ExpoTokenResponse{
		Id:        t.Id,
		UserId:    t.UserId,
		ExpoToken: t.Token,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
