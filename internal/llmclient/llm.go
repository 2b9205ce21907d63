package llmclient

import (
	"context"
	"encoding/json"
	"errors"

	genai "google.golang.org/genai"
)

var ErrInvalidJSON = errors.New("llmclient: invalid JSON from model")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolCall is a structured action request emitted by the model.
type ToolCall struct {
	ID   string          `json:"id,omitempty"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// ToolResult is the outcome of executing a ToolCall, fed back into the next
// model round.
type ToolResult struct {
	CallID string          `json:"callId,omitempty"`
	Name   string          `json:"name"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Part is one piece of a message: text, a tool call, or a tool result.
// Exactly one field is set.
type Part struct {
	Text   string      `json:"text,omitempty"`
	Call   *ToolCall   `json:"call,omitempty"`
	Result *ToolResult `json:"result,omitempty"`
}

// Message is a transport-neutral chat message replayed into the model.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// TextMessage builds a plain single-part message.
func TextMessage(role Role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}

// Text concatenates the message's text parts.
func (m Message) Text() string {
	out := ""
	for _, p := range m.Parts {
		out += p.Text
	}
	return out
}

// ToolSpec declares one callable function to the model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  *genai.Schema
}

// Request is one model invocation: system prompt, replayed history, and the
// declared tool set.
type Request struct {
	System  string
	History []Message
	Tools   []ToolSpec
}

// Response is the accumulated result of one invocation.
type Response struct {
	Text  string
	Calls []ToolCall
}

// Client is the model capability consumed by the orchestrator and the ticket
// generation engine.
type Client interface {
	Name() string
	Close() error
	// Generate runs one chat completion, streaming text deltas to onText as
	// they arrive. onText may be nil.
	Generate(ctx context.Context, req Request, onText func(delta string)) (*Response, error)
	// GenerateObject asks for strict JSON matching schema and returns the raw
	// document.
	GenerateObject(ctx context.Context, prompt string, input any, schema *genai.Schema) (json.RawMessage, error)
}
