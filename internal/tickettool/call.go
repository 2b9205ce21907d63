package tickettool

import (
	"encoding/json"
	"fmt"
	"strings"

	"ticketflow/internal/gateway/repository/ticketstore"
)

// Call is a decoded tool invocation. The concrete type identifies the tool;
// a type switch over Call is exhaustive across the five variants.
type Call interface {
	isCall()
	ToolName() string
}

type ListTicketsCall struct{}

type GenerateTicketsCall struct {
	ProjectDescription string `json:"projectDescription"`
}

// TicketUpdate targets one ticket with an explicit field patch.
type TicketUpdate struct {
	ID string `json:"id"`
	ticketstore.FieldPatch
}

type UpdateTicketsCall struct {
	Updates []TicketUpdate `json:"updates"`
}

type RemoveTicketsCall struct {
	TicketIDs []string `json:"ticketIds"`
}

type SetClarifyingQuestionsCall struct {
	Questions []ClarifyingQuestion `json:"questions"`
}

func (ListTicketsCall) isCall()            {}
func (GenerateTicketsCall) isCall()        {}
func (UpdateTicketsCall) isCall()          {}
func (RemoveTicketsCall) isCall()          {}
func (SetClarifyingQuestionsCall) isCall() {}

func (ListTicketsCall) ToolName() string            { return NameListTickets }
func (GenerateTicketsCall) ToolName() string        { return NameGenerateTickets }
func (UpdateTicketsCall) ToolName() string          { return NameUpdateTickets }
func (RemoveTicketsCall) ToolName() string          { return NameRemoveTickets }
func (SetClarifyingQuestionsCall) ToolName() string { return NameSetClarifyingQuestions }

// ParseCall decodes a named tool invocation into its typed variant. Unknown
// names and malformed arguments are errors; the caller reports them back to
// the model rather than aborting the turn.
func ParseCall(name string, args json.RawMessage) (Call, error) {
	name = strings.TrimPrefix(name, "functions.")
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	case NameListTickets:
		return ListTicketsCall{}, nil
	case NameGenerateTickets:
		var c GenerateTicketsCall
		if err := json.Unmarshal(args, &c); err != nil {
			return nil, fmt.Errorf("tickettool: %s args: %w", name, err)
		}
		if c.ProjectDescription == "" {
			return nil, fmt.Errorf("tickettool: %s: projectDescription is required", name)
		}
		return c, nil
	case NameUpdateTickets:
		var c UpdateTicketsCall
		if err := json.Unmarshal(args, &c); err != nil {
			return nil, fmt.Errorf("tickettool: %s args: %w", name, err)
		}
		if len(c.Updates) == 0 {
			return nil, fmt.Errorf("tickettool: %s: updates is empty", name)
		}
		for i, u := range c.Updates {
			if u.ID == "" {
				return nil, fmt.Errorf("tickettool: %s: updates[%d] has no id", name, i)
			}
		}
		return c, nil
	case NameRemoveTickets:
		var c RemoveTicketsCall
		if err := json.Unmarshal(args, &c); err != nil {
			return nil, fmt.Errorf("tickettool: %s args: %w", name, err)
		}
		if len(c.TicketIDs) == 0 {
			return nil, fmt.Errorf("tickettool: %s: ticketIds is empty", name)
		}
		return c, nil
	case NameSetClarifyingQuestions:
		var c SetClarifyingQuestionsCall
		if err := json.Unmarshal(args, &c); err != nil {
			return nil, fmt.Errorf("tickettool: %s args: %w", name, err)
		}
		if len(c.Questions) == 0 {
			return nil, fmt.Errorf("tickettool: %s: questions is empty", name)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("tickettool: unknown tool %q", name)
	}
}
