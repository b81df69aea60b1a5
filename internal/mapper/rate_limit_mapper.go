package mapper

import (
	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/model"
)

type RateLimitMapper struct{}

func NewRateLimitMapper() *RateLimitMapper {
	return &RateLimitMapper{}
}

func (m *RateLimitMapper) ToEntity(r *model.RateLimit) *entity.RateLimit {
	if r == nil {
		return nil
	}
	return &entity.RateLimit{
		Id:        r.Id,
		UserId:    r.UserId,
		Date:      r.Date,
		Count:     r.Count,
		Limit:     r.Limit,
		LastReset: r.LastReset,
		NextReset: r.NextReset,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (m *RateLimitMapper) ToModel(r *entity.RateLimit) *model.RateLimit {
	if r == nil {
		return nil
	}
	return &model.RateLimit{
		Id:        r.Id,
		UserId:    r.UserId,
		Date:      r.Date,
		Count:     r.Count,
		Limit:     r.Limit,
		LastReset: r.LastReset,
		NextReset: r.NextReset,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
