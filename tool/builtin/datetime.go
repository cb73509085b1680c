// Package builtin provides a handful of reference llm.Tool
// implementations, grounded on the source crate's
// current_datetime_tool.rs and simple_date_tool.rs.
package builtin

import (
	"context"
	"time"

	"github.com/svetzal/mojentic-go/llm"
)

// CurrentDateTimeTool reports the current wall-clock time in RFC3339.
// It takes no arguments.
type CurrentDateTimeTool struct {
	Now func() time.Time
}

func NewCurrentDateTimeTool() *CurrentDateTimeTool {
	return &CurrentDateTimeTool{Now: time.Now}
}

func (t *CurrentDateTimeTool) Run(ctx context.Context, arguments map[string]any) (any, error) {
	now := t.Now
	if now == nil {
		now = time.Now
	}
	return map[string]string{"current_datetime": now().UTC().Format(time.RFC3339)}, nil
}

func (t *CurrentDateTimeTool) Descriptor() llm.ToolDescriptor {
	return llm.ToolDescriptor{
		Name:        "current_datetime",
		Description: "Returns the current UTC date and time in RFC3339 format.",
		ParametersSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func (t *CurrentDateTimeTool) Matches(name string) bool {
	return name == t.Descriptor().Name
}

// CloneIntoBox returns t itself: the tool is stateless (Now is set once
// at construction and never mutated), so sharing the same handle across
// registrations is safe.
func (t *CurrentDateTimeTool) CloneIntoBox() llm.Tool {
	return t
}
