package tools

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/pkg/llm"

	"github.com/invopop/jsonschema"
)

var validPriorities = []string{"LOW", "MEDIUM", "HIGH", "URGENT"}

// CreateTaskArgs only drives the JSON schema shown to the model. Arguments are
// handled as a map so unknown fields pass through untouched.
type CreateTaskArgs struct {
	Title       string  `json:"title" jsonschema:"description=Task title (required)"`
	Description string  `json:"description,omitempty" jsonschema:"description=Task description (optional)"`
	EndsOn      float64 `json:"endsOn,omitempty" jsonschema:"description=Deadline as Unix timestamp in seconds (optional)"`
	Priority    string  `json:"priority,omitempty" jsonschema:"enum=LOW,enum=MEDIUM,enum=HIGH,enum=URGENT,description=Task priority level (optional)"`
	Assignee    string  `json:"assignee,omitempty" jsonschema:"description=User ID of the assignee (optional)"`
	Type        string  `json:"type,omitempty" jsonschema:"description=Task type (optional)"`
}

func createTaskSchema() json.RawMessage {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(&CreateTaskArgs{})
	s.Version = ""
	s.ID = ""

	raw, err := json.Marshal(s)
	if err != nil {
		panic("tools: createTask schema: " + err.Error())
	}
	return raw
}

type CreateTaskTool struct {
	client     *TaskAPIClient
	definition llm.ToolDefinition
}

func NewCreateTaskTool(client *TaskAPIClient) *CreateTaskTool {
	return &CreateTaskTool{
		client: client,
		definition: llm.ToolDefinition{
			Name:        string(entity.ActionCreateTask),
			Description: "Creates a new task with title, description, deadline, priority, etc.",
			Parameters:  createTaskSchema(),
		},
	}
}

func (t *CreateTaskTool) Definition() llm.ToolDefinition {
	return t.definition
}

func (t *CreateTaskTool) Validate(args map[string]interface{}, now time.Time) error {
	title, _ := args["title"].(string)
	if strings.TrimSpace(title) == "" {
		return apperror.Validation("Title is required")
	}

	if raw, ok := args["endsOn"]; ok && raw != nil {
		endsOn, ok := entity.NumberArg(raw)
		if !ok {
			return apperror.Validation("Deadline must be a Unix timestamp in seconds")
		}
		if endsOn <= float64(now.Unix()) {
			return apperror.Validation("Deadline must be in the future")
		}
	}

	if raw, ok := args["priority"]; ok && raw != nil {
		priority, _ := raw.(string)
		if !isValidPriority(priority) {
			return apperror.Validation("Priority must be one of: " + strings.Join(validPriorities, ", "))
		}
	}

	return nil
}

func (t *CreateTaskTool) Execute(ctx context.Context, args map[string]interface{}, credential string) Result {
	return t.client.CreateTask(ctx, taskPayload(args), credential)
}

// taskPayload drops absent optional fields instead of sending nulls.
func taskPayload(args map[string]interface{}) map[string]interface{} {
	payload := make(map[string]interface{}, len(args))
	for k, v := range args {
		if v == nil {
			continue
		}
		payload[k] = v
	}
	return payload
}

func isValidPriority(p string) bool {
	for _, v := range validPriorities {
		if p == v {
			return true
		}
	}
	return false
}
