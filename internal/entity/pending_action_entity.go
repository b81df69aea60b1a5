package entity

import (
	"fmt"
	"math"
	"time"
)

type ActionName string

const ActionCreateTask ActionName = "createTask"

// PendingAction is the one shape a proposed mutation takes between the model
// reply and the user's yes/no.
type PendingAction struct {
	Action ActionName
	Data   map[string]interface{}
}

func NewPendingAction(action ActionName, args map[string]interface{}) *PendingAction {
	data := make(map[string]interface{}, len(args))
	for k, v := range args {
		data[k] = v
	}
	return &PendingAction{Action: action, Data: data}
}

func (p *PendingAction) Title() string {
	title, _ := p.Data["title"].(string)
	return title
}

// Deadline reads endsOn as unix seconds. JSON numbers arrive as float64.
// Zero means no deadline.
func (p *PendingAction) Deadline() (time.Time, bool) {
	secs, ok := NumberArg(p.Data["endsOn"])
	if !ok || secs == 0 {
		return time.Time{}, false
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), true
}

// ConfirmationPrompt is the text shown in place of the model reply whenever a
// createTask call is proposed.
func (p *PendingAction) ConfirmationPrompt() string {
	deadline := "no deadline"
	if t, ok := p.Deadline(); ok {
		deadline = "deadline " + t.Format("January 02, 2006")
	}
	return fmt.Sprintf("I'll create a task '%s' with %s. Should I proceed? (yes/no)", p.promptTitle(), deadline)
}

func (p *PendingAction) promptTitle() string {
	switch v := p.Data["title"].(type) {
	case nil:
		return "N/A"
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// NumberArg accepts the numeric shapes a decoded tool argument can take.
func NumberArg(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
