package entity

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const ConversationStatusActive = "active"

type ConversationState string

const (
	ConversationStateActive               ConversationState = "ACTIVE"
	ConversationStateAwaitingConfirmation ConversationState = "AWAITING_CONFIRMATION"
	ConversationStateExpired              ConversationState = "EXPIRED"
	ConversationStateResolved             ConversationState = "RESOLVED"
)

type Conversation struct {
	SessionId  string
	UserId     string
	Credential string
	Status     string
	Messages   []*Turn
	Metadata   ConversationMetadata
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExpiresAt  time.Time
}

type ConversationMetadata struct {
	TotalMessages    int
	TotalToolCalls   int
	ActionsCompleted int
}

type Turn struct {
	MessageId            string
	Role                 Role
	Content              string
	Timestamp            time.Time
	ToolCalls            []ToolCall
	RequiresConfirmation bool
	PendingAction        *PendingAction
	ActionResult         *ActionResult
}

type ToolCall struct {
	Name      string
	Arguments map[string]interface{}
}

type ActionResult struct {
	Success    bool
	Message    string
	Error      string
	Data       interface{}
	StatusCode int
}

// IsExpired is strict: a conversation is still usable at exactly ExpiresAt.
func (c *Conversation) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (c *Conversation) LastTurn() *Turn {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Pending returns the action awaiting confirmation, if the last turn carries one.
func (c *Conversation) Pending() *PendingAction {
	last := c.LastTurn()
	if last == nil || !last.RequiresConfirmation {
		return nil
	}
	return last.PendingAction
}

func (c *Conversation) State(now time.Time) ConversationState {
	if c.IsExpired(now) {
		return ConversationStateExpired
	}
	if last := c.LastTurn(); last != nil && last.RequiresConfirmation {
		return ConversationStateAwaitingConfirmation
	}
	// confirm/cancel appends a user+assistant pair right after the pending turn
	if n := len(c.Messages); n >= 3 && c.Messages[n-3].RequiresConfirmation {
		return ConversationStateResolved
	}
	return ConversationStateActive
}

// Append assigns the positional message id and keeps the message counter in sync.
func (c *Conversation) Append(turn *Turn) {
	turn.MessageId = fmt.Sprintf("msg_%d", len(c.Messages))
	c.Messages = append(c.Messages, turn)
	c.Metadata.TotalMessages = len(c.Messages)
}

// Touch slides the expiry window forward from now.
func (c *Conversation) Touch(now time.Time, ttl time.Duration) {
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(ttl)
}
