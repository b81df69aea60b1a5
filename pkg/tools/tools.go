// Package tools holds the actions the assistant may propose and, once the user
// confirms, execute against external APIs.
package tools

import (
	"context"
	"errors"
	"time"

	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/pkg/llm"
)

// Result is reported back to the user verbatim; Execute never returns an error.
type Result struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
}

func Failure(message string) Result {
	return Result{Success: false, Error: message}
}

type Tool interface {
	Definition() llm.ToolDefinition
	Validate(args map[string]interface{}, now time.Time) error
	Execute(ctx context.Context, args map[string]interface{}, credential string) Result
}

type Dispatcher struct {
	tools map[string]Tool
	order []string
	now   func() time.Time
}

func NewDispatcher(tools ...Tool) *Dispatcher {
	d := &Dispatcher{tools: make(map[string]Tool, len(tools)), now: time.Now}
	for _, t := range tools {
		name := t.Definition().Name
		d.tools[name] = t
		d.order = append(d.order, name)
	}
	return d
}

// WithClock replaces the clock used for deadline checks.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

func (d *Dispatcher) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(d.order))
	for _, name := range d.order {
		defs = append(defs, d.tools[name].Definition())
	}
	return defs
}

func (d *Dispatcher) Has(name string) bool {
	_, ok := d.tools[name]
	return ok
}

func (d *Dispatcher) Validate(name string, args map[string]interface{}) error {
	t, ok := d.tools[name]
	if !ok {
		return apperror.New(apperror.KindUnknownTool, "Unknown tool: "+name)
	}
	return t.Validate(args, d.now())
}

// Execute validates before calling out, so a rejected action never reaches the network.
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]interface{}, credential string) Result {
	t, ok := d.tools[name]
	if !ok {
		return Failure("Unknown tool: " + name)
	}
	if err := t.Validate(args, d.now()); err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return Failure(appErr.Message)
		}
		return Failure(err.Error())
	}
	return t.Execute(ctx, args, credential)
}
