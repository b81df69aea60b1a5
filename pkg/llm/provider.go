package llm

import (
	"context"
	"encoding/json"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// ToolDefinition is a function the model may call instead of answering in text.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema object
}

// ToolCall is a decoded function call. Arguments are already parsed from JSON.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// Completion is the only shape callers see, whatever the backend returned.
type Completion struct {
	Text      string
	ToolCalls []ToolCall
}

type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func ApplyOptions(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Complete sends the history plus the available tools and returns text and/or tool calls.
	Complete(ctx context.Context, history []Message, tools []ToolDefinition, options ...Option) (*Completion, error)
}

// DecodeArguments parses the JSON-encoded argument string most APIs send.
// An empty string means no arguments.
func DecodeArguments(raw string) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}
