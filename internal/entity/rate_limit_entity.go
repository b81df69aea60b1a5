package entity

import (
	"time"

	"github.com/google/uuid"
)

type RateLimit struct {
	Id        uuid.UUID
	UserId    string
	Date      string
	Count     int
	Limit     int
	LastReset time.Time
	NextReset time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RateLimitDecision is the outcome of one atomic upsert-or-increment.
type RateLimitDecision struct {
	Allowed bool
	Current int
	Limit   int
}

// DayKey is the UTC calendar day a quota counter belongs to.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// NextUTCMidnight is when the next counter starts.
func NextUTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
