package ticketgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	genai "google.golang.org/genai"

	"ticketflow/internal/gateway/repository/ticketstore"
	"ticketflow/internal/llmclient"
)

// Engine turns a project description into a persisted batch of tickets via a
// structured-output model call. Generated tickets are appended after the
// project's existing ones; nothing is written when generation fails.
type Engine struct {
	llm   llmclient.Client
	store ticketstore.Store
	vocab Vocabulary
}

func New(llm llmclient.Client, store ticketstore.Store, vocab Vocabulary) *Engine {
	return &Engine{llm: llm, store: store, vocab: vocab}
}

// draftTicket is the model-facing shape: local ids, no project scoping.
type draftTicket struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Type               string   `json:"type"`
	Priority           string   `json:"priority"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
	EstimatedEffort    string   `json:"estimatedEffort"`
	Dependencies       []string `json:"dependencies"`
	Labels             []string `json:"labels"`
}

type draftPlan struct {
	Tickets []draftTicket `json:"tickets"`
}

// GenerateAndAppend runs one generation for projectID and appends the result
// to the store in a single batch.
func (e *Engine) GenerateAndAppend(ctx context.Context, projectID, description string) ([]ticketstore.Ticket, error) {
	if e.llm == nil {
		return nil, fmt.Errorf("ticketgen: no model configured")
	}
	raw, err := e.llm.GenerateObject(ctx, generationPrompt(e.vocab),
		map[string]string{"projectDescription": description}, planSchema(e.vocab))
	if err != nil {
		return nil, fmt.Errorf("ticketgen: model call: %w", err)
	}
	var plan draftPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("ticketgen: decode plan: %w", err)
	}
	if len(plan.Tickets) == 0 {
		return nil, fmt.Errorf("ticketgen: model returned no tickets")
	}

	existing, err := e.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("ticketgen: list existing: %w", err)
	}
	tickets := e.materialize(projectID, len(existing), plan.Tickets)

	if err := e.store.AppendBatch(ctx, projectID, tickets); err != nil {
		return nil, fmt.Errorf("ticketgen: append batch: %w", err)
	}
	log.Printf("ticketgen: project=%s generated=%d", projectID, len(tickets))
	return tickets, nil
}

// materialize assigns durable uuids, remaps local dependency ids, normalizes
// enum fields, and lays out sort order after the existing backlog.
func (e *Engine) materialize(projectID string, baseOrder int, drafts []draftTicket) []ticketstore.Ticket {
	now := time.Now().UTC()
	idMap := make(map[string]string, len(drafts))
	for _, d := range drafts {
		if d.ID != "" {
			idMap[d.ID] = uuid.NewString()
		}
	}

	tickets := make([]ticketstore.Ticket, 0, len(drafts))
	for i, d := range drafts {
		id := idMap[d.ID]
		if id == "" {
			id = uuid.NewString()
		}
		deps := make([]string, 0, len(d.Dependencies))
		for _, ref := range d.Dependencies {
			if mapped, ok := idMap[ref]; ok && mapped != id {
				deps = append(deps, mapped)
			}
		}
		tickets = append(tickets, ticketstore.Ticket{
			ID:                 id,
			ProjectID:          projectID,
			Title:              d.Title,
			Type:               normalize(d.Type, e.vocab.TicketTypes(), e.vocab.DefaultType()),
			Priority:           normalize(d.Priority, ticketstore.Priorities, "P2"),
			Description:        d.Description,
			AcceptanceCriteria: d.AcceptanceCriteria,
			EstimatedEffort:    normalize(d.EstimatedEffort, ticketstore.Efforts, "M"),
			Dependencies:       deps,
			Labels:             d.Labels,
			SortOrder:          baseOrder + i,
			Status:             ticketstore.StatusTodo,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}
	return tickets
}

func normalize(v string, allowed []string, fallback string) string {
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}

// planSchema is the response schema for structured generation.
func planSchema(v Vocabulary) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tickets": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":          {Type: genai.TypeString},
						"title":       {Type: genai.TypeString},
						"type":        {Type: genai.TypeString, Enum: v.TicketTypes()},
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
					},
					Required: []string{"id", "title", "type", "priority", "description", "estimatedEffort"},
				},
			},
		},
		Required: []string{"tickets"},
	}
}
