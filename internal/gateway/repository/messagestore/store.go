package messagestore

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("message not found")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a project's append-only transcript. Ordering by
// CreatedAt ascending is the sole source of truth replayed into the model on
// the next turn.
type Message struct {
	ID        string    `json:"id" db:"message_id"`
	ProjectID string    `json:"projectId" db:"project_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Store is the transcript log. Append is idempotent on the message id:
// re-sending the same user message id is a no-op write.
type Store interface {
	Append(ctx context.Context, msg Message) error
	ListByProject(ctx context.Context, projectID string) ([]Message, error)
	DeleteByProject(ctx context.Context, projectID string) error
}
