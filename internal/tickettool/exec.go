package tickettool

import (
	"context"
	"encoding/json"
	"fmt"

	"ticketflow/internal/gateway/repository/ticketstore"
)

// TicketService is the board capability the executor mutates. Bulk operations
// are tolerant: unknown ids are skipped and the result carries counts.
type TicketService interface {
	ListByProject(ctx context.Context, projectID string) ([]ticketstore.Ticket, error)
	UpdateFields(ctx context.Context, projectID, id string, patch ticketstore.FieldPatch) (bool, error)
	RemoveMany(ctx context.Context, projectID string, ids []string) (int, error)
}

// Generator produces and appends a ticket batch for a project.
type Generator interface {
	GenerateAndAppend(ctx context.Context, projectID, description string) ([]ticketstore.Ticket, error)
}

// TicketSummary is the compact board view returned to the model.
type TicketSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Priority  string `json:"priority"`
	Status    string `json:"status"`
	SortOrder int    `json:"sortOrder"`
}

type ListTicketsResult struct {
	Tickets []TicketSummary `json:"tickets"`
}

type GenerateTicketsResult struct {
	Generated int    `json:"generated"`
	Message   string `json:"message"`
}

type UpdateTicketsResult struct {
	Updated int `json:"updated"`
}

type RemoveTicketsResult struct {
	Removed int `json:"removed"`
}

type SetClarifyingQuestionsResult struct {
	Presented int `json:"presented"`
}

// Executor runs decoded calls against one project's board.
type Executor struct {
	Tickets TicketService
	Gen     Generator
}

// Execute dispatches call and returns the tool result payload as JSON. Errors
// are returned to the caller, which reports them to the model as a failed
// tool round rather than aborting the conversation.
func (e *Executor) Execute(ctx context.Context, projectID string, call Call) (json.RawMessage, error) {
	switch c := call.(type) {
	case ListTicketsCall:
		tickets, err := e.Tickets.ListByProject(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("list tickets: %w", err)
		}
		out := ListTicketsResult{Tickets: make([]TicketSummary, 0, len(tickets))}
		for _, t := range tickets {
			out.Tickets = append(out.Tickets, TicketSummary{
				ID:        t.ID,
				Title:     t.Title,
				Type:      t.Type,
				Priority:  t.Priority,
				Status:    t.Status,
				SortOrder: t.SortOrder,
			})
		}
		return marshal(out)

	case GenerateTicketsCall:
		tickets, err := e.Gen.GenerateAndAppend(ctx, projectID, c.ProjectDescription)
		if err != nil {
			return nil, fmt.Errorf("generate tickets: %w", err)
		}
		return marshal(GenerateTicketsResult{
			Generated: len(tickets),
			Message:   fmt.Sprintf("Added %d tickets to the board.", len(tickets)),
		})

	case UpdateTicketsCall:
		updated := 0
		for _, u := range c.Updates {
			ok, err := e.Tickets.UpdateFields(ctx, projectID, u.ID, u.FieldPatch)
			if err != nil {
				return nil, fmt.Errorf("update ticket %s: %w", u.ID, err)
			}
			if ok {
				updated++
			}
		}
		return marshal(UpdateTicketsResult{Updated: updated})

	case RemoveTicketsCall:
		removed, err := e.Tickets.RemoveMany(ctx, projectID, c.TicketIDs)
		if err != nil {
			return nil, fmt.Errorf("remove tickets: %w", err)
		}
		return marshal(RemoveTicketsResult{Removed: removed})

	case SetClarifyingQuestionsCall:
		// Presentation happens client side; the board is untouched. Echo a
		// count so the model sees the call succeed.
		return marshal(SetClarifyingQuestionsResult{Presented: len(c.Questions)})

	default:
		return nil, fmt.Errorf("tickettool: unhandled call %T", call)
	}
}

func marshal(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("tickettool: encode result: %w", err)
	}
	return b, nil
}
