package model

import (
	"time"

	"github.com/google/uuid"
)

type ExpoToken struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Token     string    `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ExpoToken) TableName() string {
	return "expo_tokens"
}
