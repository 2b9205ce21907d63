package ticketstore

import "time"

// Kanban lanes. Every ticket is always in exactly one of these regardless of
// how many semantic states a given vocabulary implies.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// Priorities P0 (highest) through P3.
var Priorities = []string{"P0", "P1", "P2", "P3"}

// Efforts are t-shirt sizes.
var Efforts = []string{"XS", "S", "M", "L", "XL"}

// Ticket is a backlog item scoped to a project. Dependencies reference other
// ticket ids informally; they may dangle and consumers must tolerate
// unresolved references.
type Ticket struct {
	ID                 string    `json:"id" db:"ticket_id"`
	ProjectID          string    `json:"projectId" db:"project_id"`
	Title              string    `json:"title" db:"title"`
	Type               string    `json:"type" db:"type"`
	Priority           string    `json:"priority" db:"priority"`
	Description        string    `json:"description" db:"description"`
	AcceptanceCriteria []string  `json:"acceptanceCriteria" db:"-"`
	EstimatedEffort    string    `json:"estimatedEffort" db:"estimated_effort"`
	Dependencies       []string  `json:"dependencies" db:"-"`
	Labels             []string  `json:"labels" db:"-"`
	SortOrder          int       `json:"sortOrder" db:"sort_order"`
	Status             string    `json:"status" db:"status"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// FieldPatch is an explicit partial update: a nil field means "leave
// unchanged", never "set to null". Decoding a JSON object with a subset of
// keys yields exactly that patch.
type FieldPatch struct {
	Title              *string   `json:"title,omitempty"`
	Type               *string   `json:"type,omitempty"`
	Priority           *string   `json:"priority,omitempty"`
	Description        *string   `json:"description,omitempty"`
	AcceptanceCriteria *[]string `json:"acceptanceCriteria,omitempty"`
	EstimatedEffort    *string   `json:"estimatedEffort,omitempty"`
	Dependencies       *[]string `json:"dependencies,omitempty"`
	Labels             *[]string `json:"labels,omitempty"`
	Status             *string   `json:"status,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p FieldPatch) IsZero() bool {
	return p.Title == nil && p.Type == nil && p.Priority == nil &&
		p.Description == nil && p.AcceptanceCriteria == nil &&
		p.EstimatedEffort == nil && p.Dependencies == nil &&
		p.Labels == nil && p.Status == nil
}

// Apply copies the present fields onto t, field by field.
func (p FieldPatch) Apply(t *Ticket) {
	if t == nil {
		return
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.AcceptanceCriteria != nil {
		t.AcceptanceCriteria = append([]string(nil), (*p.AcceptanceCriteria)...)
	}
	if p.EstimatedEffort != nil {
		t.EstimatedEffort = *p.EstimatedEffort
	}
	if p.Dependencies != nil {
		t.Dependencies = append([]string(nil), (*p.Dependencies)...)
	}
	if p.Labels != nil {
		t.Labels = append([]string(nil), (*p.Labels)...)
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

func cloneTicket(t Ticket) Ticket {
	t.AcceptanceCriteria = append([]string(nil), t.AcceptanceCriteria...)
	t.Dependencies = append([]string(nil), t.Dependencies...)
	t.Labels = append([]string(nil), t.Labels...)
	return t
}
