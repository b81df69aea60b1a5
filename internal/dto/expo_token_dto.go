package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateExpoTokenRequest struct {
	UserId    string `json:"user_id" validate:"required,max=255"`
	ExpoToken string `json:"expo_token" validate:"required,expo_token"`
}

// UpdateExpoTokenRequest is a partial update; nil fields are left alone.
type UpdateExpoTokenRequest struct {
	UserId    *string `json:"user_id,omitempty" validate:"omitempty,min=1,max=255"`
	ExpoToken *string `json:"expo_token,omitempty" validate:"omitempty,expo_token"`
}

type ExpoTokenResponse struct {
	Id        uuid.UUID `json:"id"`
	UserId    string    `json:"user_id"`
	ExpoToken string    `json:"expo_token"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
