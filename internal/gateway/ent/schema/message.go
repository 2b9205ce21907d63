package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Message holds the schema definition for the Message entity. The message log
// is append-only; the id doubles as the idempotency key for user messages.
type Message struct {
	ent.Schema
}

// Fields of the Message.
func (Message) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("message_id").
			Unique().
			Immutable(),
		field.String("project_id"),
		field.String("role"),
		field.Text("content").
			Default(""),
		field.Time("created_at").
			Immutable(),
	}
}
