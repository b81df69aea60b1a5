package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationLog records one delivery attempt to one device.
type NotificationLog struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId    string         `gorm:"type:varchar(255);not null;index"`
	Token     string         `gorm:"type:text;not null"`
	Title     string         `gorm:"type:varchar(200)"`
	Body      string         `gorm:"type:text"`
	Status    string         `gorm:"type:varchar(20);not null"` // ok | error | skipped
	TicketId  string         `gorm:"type:varchar(100)"`
	Error     string         `gorm:"type:text"`
	Data      datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time      `gorm:"index"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}
