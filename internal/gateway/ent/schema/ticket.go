package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Ticket holds the schema definition for the Ticket entity.
type Ticket struct {
	ent.Schema
}

// Fields of the Ticket.
func (Ticket) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("ticket_id").
			Unique().
			Immutable(),
		field.String("project_id"),
		field.String("title"),
		field.String("type").
			Default("Task"),
		field.String("priority").
			Default("P2"),
		field.String("description").
			Default(""),
		field.JSON("acceptance_criteria", []string{}).
			Optional(),
		field.String("estimated_effort").
			Default("M"),
		field.JSON("dependencies", []string{}).
			Optional(),
		field.JSON("labels", []string{}).
			Optional(),
		field.Int("sort_order").
			Default(0),
		field.String("status").
			Default("todo"),
		field.Time("created_at").
			Immutable(),
		field.Time("updated_at"),
	}
}
