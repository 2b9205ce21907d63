package chat

import (
	"ticketflow/internal/llmclient"
	"ticketflow/internal/tickettool"
)

// EventType tags one frame of a streamed turn.
type EventType string

const (
	// EventReady signals that the connection is accepted and turns may start.
	EventReady EventType = "ready"
	// EventTextDelta carries one chunk of assistant prose.
	EventTextDelta EventType = "text-delta"
	// EventToolCall announces a tool invocation before it runs.
	EventToolCall EventType = "tool-call"
	// EventToolResult carries the outcome of a tool invocation.
	EventToolResult EventType = "tool-result"
	// EventTicketsGenerated confirms a silent generation: tickets were
	// created but the model produced no closing prose.
	EventTicketsGenerated EventType = "tickets-generated"
	// EventError ends the turn with a user-presentable failure.
	EventError EventType = "error"
	// EventComplete ends a successful turn.
	EventComplete EventType = "complete"
)

// Event is one frame on the wire. Fields beyond Type are populated per the
// event's kind.
type Event struct {
	Type      EventType                       `json:"type"`
	Delta     string                          `json:"delta,omitempty"`
	Call      *llmclient.ToolCall             `json:"call,omitempty"`
	Result    *llmclient.ToolResult           `json:"result,omitempty"`
	Questions []tickettool.ClarifyingQuestion `json:"questions,omitempty"`
	Generated int                             `json:"generated,omitempty"`
	Error     *ErrorInfo                      `json:"error,omitempty"`
}
