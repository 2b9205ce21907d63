package tickettool

import (
	"strings"

	genai "google.golang.org/genai"

	"ticketflow/internal/gateway/repository/ticketstore"
	"ticketflow/internal/llmclient"
	"ticketflow/internal/ticketgen"
)

// Tool names as declared to the model.
const (
	NameListTickets            = "listTickets"
	NameGenerateTickets        = "generateTickets"
	NameUpdateTickets          = "updateTickets"
	NameRemoveTickets          = "removeTickets"
	NameSetClarifyingQuestions = "setClarifyingQuestions"
)

// Specs declares the full tool surface for one conversation. The vocabulary
// shapes the enum offered for ticket types.
func Specs(vocab ticketgen.Vocabulary) []llmclient.ToolSpec {
	types := vocab.TicketTypes()
	return []llmclient.ToolSpec{
		{
			Name:        NameListTickets,
			Description: "List every ticket currently on the project board, with ids, titles, statuses and ordering.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
		},
		{
			Name:        NameGenerateTickets,
			Description: "Generate a full set of tickets from a project description and add them to the board. Call this once the project is well enough understood.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"projectDescription": {
						Type:        genai.TypeString,
						Description: "Complete description of the project, folding in everything learned from the conversation.",
					},
				},
				Required: []string{"projectDescription"},
			},
		},
		{
			Name:        NameUpdateTickets,
			Description: "Update fields on one or more existing tickets. Each update names a ticket id and only the fields to change.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"updates": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"id":          {Type: genai.TypeString, Description: "Id of the ticket to change."},
								"title":       {Type: genai.TypeString},
								"type":        {Type: genai.TypeString, Enum: types},
								"priority":    {Type: genai.TypeString, Enum: ticketstore.Priorities},
								"description": {Type: genai.TypeString},
								"acceptanceCriteria": {
									Type:  genai.TypeArray,
									Items: &genai.Schema{Type: genai.TypeString},
								},
								"estimatedEffort": {Type: genai.TypeString, Enum: ticketstore.Efforts},
								"dependencies": {
									Type:  genai.TypeArray,
									Items: &genai.Schema{Type: genai.TypeString},
								},
								"labels": {
									Type:  genai.TypeArray,
									Items: &genai.Schema{Type: genai.TypeString},
								},
								"status": {
									Type: genai.TypeString,
									Enum: []string{ticketstore.StatusTodo, ticketstore.StatusInProgress, ticketstore.StatusDone},
								},
							},
							Required: []string{"id"},
						},
					},
				},
				Required: []string{"updates"},
			},
		},
		{
			Name:        NameRemoveTickets,
			Description: "Remove tickets from the board by id.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"ticketIds": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"ticketIds"},
			},
		},
		{
			Name:        NameSetClarifyingQuestions,
			Description: "Present the user with clarifying questions about their project before generating tickets. Use multiple-choice options where natural; questions may also be answered free-form.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"questions": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"id":       {Type: genai.TypeString, Description: "Short stable id like q1."},
								"question": {Type: genai.TypeString},
								"options": {
									Type:  genai.TypeArray,
									Items: &genai.Schema{Type: genai.TypeString},
								},
							},
							Required: []string{"id", "question"},
						},
					},
				},
				Required: []string{"questions"},
			},
		},
	}
}

// KnownTool reports whether name is one of the declared tools, tolerating the
// provider prefix some models attach.
func KnownTool(name string) bool {
	name = strings.TrimPrefix(name, "functions.")
	switch name {
	case NameListTickets, NameGenerateTickets, NameUpdateTickets, NameRemoveTickets, NameSetClarifyingQuestions:
		return true
	}
	return false
}
