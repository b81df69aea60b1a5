package model

import (
	"time"

	"github.com/google/uuid"
)

// RateLimit is one counter per user per UTC day. The composite unique index is
// what makes concurrent first calls of the day safe.
type RateLimit struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_rate_limits_user_date,priority:1"`
	Date      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_rate_limits_user_date,priority:2;index:idx_rate_limits_date"`
	Count     int       `gorm:"not null"`
	Limit     int       `gorm:"column:daily_limit;not null"`
	LastReset time.Time `gorm:"not null"`
	NextReset time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RateLimit) TableName() string {
	return "rate_limits"
}
