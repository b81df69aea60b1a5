package entity

import (
	"time"

	"github.com/google/uuid"
)

type ExpoToken struct {
	Id        uuid.UUID
	UserId    string
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
