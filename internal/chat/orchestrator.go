package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"ticketflow/internal/gateway/repository/messagestore"
	"ticketflow/internal/llmclient"
	"ticketflow/internal/ticketgen"
	"ticketflow/internal/tickettool"
)

// DefaultMaxToolRounds bounds model invocations per turn: the opening call
// plus one follow-up after tool results.
const DefaultMaxToolRounds = 2

// Orchestrator drives one conversational turn: persist the user message,
// replay history into the model, run tool calls against the board, and stream
// the outcome as events. LLM may be nil when no credentials are configured;
// turns then fail fast with a configuration error and the board stays intact.
type Orchestrator struct {
	LLM           llmclient.Client
	Messages      messagestore.Store
	Exec          *tickettool.Executor
	Locks         *TurnLocks
	Vocab         ticketgen.Vocabulary
	MaxToolRounds int
}

// TurnRequest is one inbound user message plus the project context the
// handler resolved for it.
type TurnRequest struct {
	ProjectID          string
	ProjectName        string
	ProjectDescription string
	// MessageID is the client-chosen id for the user message. Redelivery of
	// the same id re-runs the turn without duplicating the message.
	MessageID string
	Content   string
}

// RunTurn executes the turn, emitting events as they happen. The returned
// error reflects internal failures already surfaced to the client as an
// error event; callers only need to log it.
func (o *Orchestrator) RunTurn(ctx context.Context, req TurnRequest, emit func(Event)) error {
	if emit == nil {
		emit = func(Event) {}
	}
	if !o.Locks.Acquire(req.ProjectID) {
		emit(Event{Type: EventError, Error: &ErrorInfo{
			Code:    CodeBusy,
			Message: "A turn is already running for this project. Wait for it to finish.",
		}})
		return nil
	}
	defer o.Locks.Release(req.ProjectID)

	if o.LLM == nil {
		emit(Event{Type: EventError, Error: &ErrorInfo{
			Code:    CodeConfig,
			Message: "The assistant is not configured correctly. Please contact the administrator.",
		}})
		return nil
	}

	if err := o.persistUserMessage(ctx, req); err != nil {
		emit(Event{Type: EventError, Error: &ErrorInfo{
			Code:    CodeInternal,
			Message: "Could not save your message. Please try again.",
		}})
		return fmt.Errorf("chat: persist user message: %w", err)
	}

	history, err := o.loadHistory(ctx, req.ProjectID)
	if err != nil {
		emit(Event{Type: EventError, Error: &ErrorInfo{
			Code:    CodeInternal,
			Message: "Could not load the conversation. Please try again.",
		}})
		return fmt.Errorf("chat: load history: %w", err)
	}

	text, generated, err := o.runRounds(ctx, req, history, emit)
	if err != nil {
		emit(Event{Type: EventError, Error: classifyError(err)})
		return fmt.Errorf("chat: turn for project %s: %w", req.ProjectID, err)
	}

	if text != "" {
		assistant := messagestore.Message{
			ID:        uuid.NewString(),
			ProjectID: req.ProjectID,
			Role:      messagestore.RoleAssistant,
			Content:   text,
			CreatedAt: time.Now().UTC(),
		}
		if err := o.Messages.Append(ctx, assistant); err != nil {
			log.Printf("chat: persist assistant message: %v", err)
		}
	} else if generated > 0 {
		// Tickets landed but the model stayed silent. Tell the client so it
		// can render a confirmation instead of an empty bubble.
		emit(Event{Type: EventTicketsGenerated, Generated: generated})
	}

	emit(Event{Type: EventComplete})
	return nil
}

func (o *Orchestrator) persistUserMessage(ctx context.Context, req TurnRequest) error {
	id := req.MessageID
	if id == "" {
		id = uuid.NewString()
	}
	return o.Messages.Append(ctx, messagestore.Message{
		ID:        id,
		ProjectID: req.ProjectID,
		Role:      messagestore.RoleUser,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	})
}

func (o *Orchestrator) loadHistory(ctx context.Context, projectID string) ([]llmclient.Message, error) {
	persisted, err := o.Messages.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	history := make([]llmclient.Message, 0, len(persisted))
	for _, m := range persisted {
		role := llmclient.RoleUser
		if m.Role == messagestore.RoleAssistant {
			role = llmclient.RoleAssistant
		}
		history = append(history, llmclient.TextMessage(role, m.Content))
	}
	return history, nil
}

// runRounds is the bounded tool loop. Each round is one model invocation;
// tool results are folded into the working history for the next round. Board
// mutations from completed calls are kept even when a later step fails.
func (o *Orchestrator) runRounds(ctx context.Context, req TurnRequest, history []llmclient.Message, emit func(Event)) (text string, generated int, err error) {
	maxRounds := o.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}
	system := systemPrompt(req.ProjectName, req.ProjectDescription, o.Vocab)
	tools := tickettool.Specs(o.Vocab)

	var prose strings.Builder
	working := history
	for round := 0; round < maxRounds; round++ {
		resp, err := o.LLM.Generate(ctx, llmclient.Request{
			System:  system,
			History: working,
			Tools:   tools,
		}, func(delta string) {
			emit(Event{Type: EventTextDelta, Delta: delta})
		})
		if err != nil {
			return "", generated, err
		}
		prose.WriteString(resp.Text)
		if len(resp.Calls) == 0 {
			break
		}

		assistantParts := make([]llmclient.Part, 0, len(resp.Calls)+1)
		if resp.Text != "" {
			assistantParts = append(assistantParts, llmclient.Part{Text: resp.Text})
		}
		resultParts := make([]llmclient.Part, 0, len(resp.Calls))
		for i := range resp.Calls {
			call := resp.Calls[i]
			assistantParts = append(assistantParts, llmclient.Part{Call: &call})
			result, n := o.runCall(ctx, req.ProjectID, call, emit)
			generated += n
			resultParts = append(resultParts, llmclient.Part{Result: result})
		}
		working = append(working,
			llmclient.Message{Role: llmclient.RoleAssistant, Parts: assistantParts},
			llmclient.Message{Role: llmclient.RoleUser, Parts: resultParts},
		)
	}
	return prose.String(), generated, nil
}

// runCall parses and executes one tool call. Failures become an error payload
// in the tool result so the model can react; they never abort the turn.
func (o *Orchestrator) runCall(ctx context.Context, projectID string, call llmclient.ToolCall, emit func(Event)) (*llmclient.ToolResult, int) {
	result := &llmclient.ToolResult{CallID: call.ID, Name: call.Name}

	parsed, err := tickettool.ParseCall(call.Name, call.Args)
	if err != nil {
		emit(Event{Type: EventToolCall, Call: &call})
		result.Error = err.Error()
		emit(Event{Type: EventToolResult, Result: result})
		return result, 0
	}

	ev := Event{Type: EventToolCall, Call: &call}
	if q, ok := parsed.(tickettool.SetClarifyingQuestionsCall); ok {
		ev.Questions = q.Questions
	}
	emit(ev)

	output, err := o.Exec.Execute(ctx, projectID, parsed)
	if err != nil {
		log.Printf("chat: tool %s failed: %v", call.Name, err)
		result.Error = err.Error()
		emit(Event{Type: EventToolResult, Result: result})
		return result, 0
	}
	result.Output = output

	generated := 0
	if _, ok := parsed.(tickettool.GenerateTicketsCall); ok {
		var r tickettool.GenerateTicketsResult
		if json.Unmarshal(output, &r) == nil {
			generated = r.Generated
		}
	}
	emit(Event{Type: EventToolResult, Result: result})
	return result, generated
}
