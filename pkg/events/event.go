package events

import (
	"encoding/json"
	"fmt"
	"time"
)

const TypeTaskCreated = "TASK_CREATED"

// Event is anything published on the internal bus or mirrored to NATS.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewTaskCreated describes a task the assistant created after confirmation.
// endsOn is omitted when the task has no deadline.
func NewTaskCreated(userId, sessionId, title string, endsOn *float64, at time.Time) BaseEvent {
	data := map[string]interface{}{
		"user_id":    userId,
		"session_id": sessionId,
		"title":      title,
	}
	if endsOn != nil {
		data["ends_on"] = *endsOn
	}
	return BaseEvent{Type: TypeTaskCreated, Data: data, OccurredAt: at.UTC()}
}

func Encode(e Event) ([]byte, error) {
	return json.Marshal(BaseEvent{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()})
}

func Decode(raw []byte) (BaseEvent, error) {
	var e BaseEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return BaseEvent{}, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}
