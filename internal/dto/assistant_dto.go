package dto

import "time"

type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=4000"`
	UserId    string `json:"user_id" validate:"required"`
	SessionId string `json:"session_id,omitempty"`
}

// ConfirmRequest binds from the query string or a JSON body.
type ConfirmRequest struct {
	SessionId string `json:"session_id" query:"session_id" validate:"required"`
	UserId    string `json:"user_id" query:"user_id" validate:"required"`
	Confirmed *bool  `json:"confirmed" query:"confirmed" validate:"required"`
}

type PendingActionResponse struct {
	Action string                 `json:"action"`
	Data   map[string]interface{} `json:"data"`
}

type ChatResponse struct {
	Message              string                 `json:"message"`
	SessionId            string                 `json:"session_id"`
	RequiresConfirmation bool                   `json:"requires_confirmation"`
	PendingAction        *PendingActionResponse `json:"pending_action,omitempty"`
	Success              bool                   `json:"success"`
}

type RateLimitStatusResponse struct {
	UserId    string    `json:"user_id"`
	Allowed   bool      `json:"allowed"`
	Current   int       `json:"current"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

type ToolCallResponse struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

type ActionResultResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
}

type TurnResponse struct {
	MessageId            string                 `json:"message_id"`
	Role                 string                 `json:"role"`
	Content              string                 `json:"content"`
	Timestamp            time.Time              `json:"timestamp"`
	ToolCalls            []ToolCallResponse     `json:"tool_calls,omitempty"`
	RequiresConfirmation bool                   `json:"requires_confirmation,omitempty"`
	PendingAction        *PendingActionResponse `json:"pending_action,omitempty"`
	ActionResult         *ActionResultResponse  `json:"action_result,omitempty"`
}

type ConversationMetadataResponse struct {
	TotalMessages    int `json:"total_messages"`
	TotalToolCalls   int `json:"total_tool_calls"`
	ActionsCompleted int `json:"actions_completed"`
}

type ConversationResponse struct {
	SessionId string                       `json:"session_id"`
	UserId    string                       `json:"user_id"`
	Status    string                       `json:"status"`
	State     string                       `json:"state"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
	ExpiresAt time.Time                    `json:"expires_at"`
	Messages  []TurnResponse               `json:"messages"`
	Metadata  ConversationMetadataResponse `json:"metadata"`
}
