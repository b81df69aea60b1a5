package model

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation keeps the whole transcript in one row. Turns and counters live in
// JSON columns so a conversation is read and replaced as a single document.
type Conversation struct {
	SessionId  string                                   `gorm:"type:varchar(36);primaryKey"`
	UserId     string                                   `gorm:"type:varchar(255);not null;index"`
	Credential string                                   `gorm:"type:text"`
	Status     string                                   `gorm:"type:varchar(20);not null"`
	Messages   datatypes.JSONSlice[ConversationTurn]     `gorm:"not null"`
	Metadata   datatypes.JSONType[ConversationMetadata] `gorm:"not null"`
	Version    int                                      `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExpiresAt  time.Time `gorm:"not null;index"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type ConversationTurn struct {
	MessageId            string                    `json:"message_id"`
	Role                 string                    `json:"role"`
	Content              string                    `json:"content"`
	Timestamp            time.Time                 `json:"timestamp"`
	ToolCalls            []ConversationToolCall    `json:"tool_calls,omitempty"`
	RequiresConfirmation bool                      `json:"requires_confirmation,omitempty"`
	PendingAction        *ConversationAction       `json:"pending_action,omitempty"`
	ActionResult         *ConversationActionResult `json:"action_result,omitempty"`
}

type ConversationToolCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

type ConversationAction struct {
	Action string                 `json:"action"`
	Data   map[string]interface{} `json:"data"`
}

type ConversationActionResult struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
}

type ConversationMetadata struct {
	TotalMessages    int `json:"total_messages"`
	TotalToolCalls   int `json:"total_tool_calls"`
	ActionsCompleted int `json:"actions_completed"`
}
