// Package tracer provides observability into LLM calls, tool executions,
// and agent interactions, grounded on the source crate's tracer module
// (tracer_events.rs, event_store.rs, tracer_system.rs, null_tracer.rs).
//
// Tracer events are distinct from the event package's agent-communication
// events: they exist purely for recording and querying what happened, not
// for driving further processing.
package tracer

import (
	"fmt"
	"strings"
	"time"
)

// Event is the base interface every tracer event satisfies.
type Event interface {
	Timestamp() time.Time
	CorrelationID() string
	Source() string
	PrintableSummary() string
}

// FilterFunc tests whether an event should be included in a query result.
type FilterFunc func(Event) bool

type base struct {
	timestamp     time.Time
	correlationID string
	source        string
}

func (b base) Timestamp() time.Time     { return b.timestamp }
func (b base) CorrelationID() string    { return b.correlationID }
func (b base) Source() string           { return b.source }

// LlmCallEvent records when an LLM is called with specific messages.
type LlmCallEvent struct {
	base
	Model       string
	Messages    []map[string]any
	Temperature float64
	Tools       []map[string]any
}

func (e LlmCallEvent) PrintableSummary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] LlmCallEvent (correlation_id: %s)\n   Model: %s",
		e.timestamp.Format("15:04:05.000"), e.correlationID, e.Model)
	if len(e.Messages) > 0 {
		plural := ""
		if len(e.Messages) != 1 {
			plural = "s"
		}
		fmt.Fprintf(&sb, "\n   Messages: %d message%s", len(e.Messages), plural)
	}
	if e.Temperature != 1.0 {
		fmt.Fprintf(&sb, "\n   Temperature: %v", e.Temperature)
	}
	if len(e.Tools) > 0 {
		names := make([]string, 0, len(e.Tools))
		for _, t := range e.Tools {
			if n, ok := t["name"].(string); ok {
				names = append(names, n)
			}
		}
		if len(names) > 0 {
			fmt.Fprintf(&sb, "\n   Available Tools: %s", strings.Join(names, ", "))
		}
	}
	return sb.String()
}

// LlmResponseEvent records when an LLM responds to a call.
type LlmResponseEvent struct {
	base
	Model           string
	Content         string
	ToolCalls       []map[string]any
	CallDurationMs  *float64
}

func (e LlmResponseEvent) PrintableSummary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] LlmResponseEvent (correlation_id: %s)\n   Model: %s",
		e.timestamp.Format("15:04:05.000"), e.correlationID, e.Model)
	if e.Content != "" {
		preview := e.Content
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		fmt.Fprintf(&sb, "\n   Content: %s", preview)
	}
	if len(e.ToolCalls) > 0 {
		plural := ""
		if len(e.ToolCalls) != 1 {
			plural = "s"
		}
		fmt.Fprintf(&sb, "\n   Tool Calls: %d call%s", len(e.ToolCalls), plural)
	}
	if e.CallDurationMs != nil {
		fmt.Fprintf(&sb, "\n   Duration: %.2fms", *e.CallDurationMs)
	}
	return sb.String()
}

// ToolCallEvent records when a tool is called during agent execution.
type ToolCallEvent struct {
	base
	ToolName       string
	Arguments      map[string]any
	Result         any
	Caller         *string
	CallDurationMs *float64
}

func (e ToolCallEvent) PrintableSummary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] ToolCallEvent (correlation_id: %s)\n   Tool: %s",
		e.timestamp.Format("15:04:05.000"), e.correlationID, e.ToolName)
	if len(e.Arguments) > 0 {
		fmt.Fprintf(&sb, "\n   Arguments: %v", e.Arguments)
	}
	resultStr := fmt.Sprintf("%v", e.Result)
	if len(resultStr) > 100 {
		resultStr = resultStr[:100] + "..."
	}
	fmt.Fprintf(&sb, "\n   Result: %s", resultStr)
	if e.Caller != nil {
		fmt.Fprintf(&sb, "\n   Caller: %s", *e.Caller)
	}
	if e.CallDurationMs != nil {
		fmt.Fprintf(&sb, "\n   Duration: %.2fms", *e.CallDurationMs)
	}
	return sb.String()
}

// AgentInteractionEvent records interactions between agents.
type AgentInteractionEvent struct {
	base
	FromAgent string
	ToAgent   string
	EventType string
	EventID   *string
}

func (e AgentInteractionEvent) PrintableSummary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] AgentInteractionEvent (correlation_id: %s)\n   From: %s -> To: %s\n   Event Type: %s",
		e.timestamp.Format("15:04:05.000"), e.correlationID, e.FromAgent, e.ToAgent, e.EventType)
	if e.EventID != nil {
		fmt.Fprintf(&sb, "\n   Event ID: %s", *e.EventID)
	}
	return sb.String()
}
