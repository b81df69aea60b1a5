package dto

import "time"

type RootResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Database string `json:"database"`
	DBDriver string `json:"db_driver"`
	Redis    string `json:"redis,omitempty"`
	Nats     string `json:"nats,omitempty"`
}

func (h *HealthResponse) Healthy() bool {
	return h.Status == "healthy"
}

type StatsResponse struct {
	TotalUsers          int64     `json:"total_users"`
	TotalTokens         int64     `json:"total_tokens"`
	ActiveConversations int64     `json:"active_conversations"`
	Timestamp           time.Time `json:"timestamp"`
}

type CleanupReport struct {
	TotalTokens          int64 `json:"total_tokens"`
	ExpiredConversations int64 `json:"expired_conversations"`
	StaleRateLimits      int64 `json:"stale_rate_limits"`
}

type WeeklyReport struct {
	TotalUsers          int64 `json:"total_users"`
	TotalTokens         int64 `json:"total_tokens"`
	ActiveConversations int64 `json:"active_conversations"`
	NotificationsSent   int64 `json:"notifications_sent"`
	NotificationsFailed int64 `json:"notifications_failed"`
}
