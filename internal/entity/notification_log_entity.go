package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	DeliveryStatusOk      = "ok"
	DeliveryStatusError   = "error"
	DeliveryStatusSkipped = "skipped"
)

type NotificationLog struct {
	Id        uuid.UUID
	UserId    string
	Token     string
	Title     string
	Body      string
	Status    string
	TicketId  string
	Error     string
	Data      map[string]interface{}
	CreatedAt time.Time
}
