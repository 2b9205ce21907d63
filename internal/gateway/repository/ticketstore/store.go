package ticketstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("ticket not found")

// Store persists tickets. All reads and mutations are scoped by project id;
// id-only lookups exist for the direct UI endpoints which resolve ownership
// through the parent project.
type Store interface {
	// AppendBatch inserts the whole batch or nothing.
	AppendBatch(ctx context.Context, projectID string, tickets []Ticket) error
	ListByProject(ctx context.Context, projectID string) ([]Ticket, error)
	Get(ctx context.Context, id string) (Ticket, error)
	// Update applies the patch to the ticket when it exists inside projectID.
	// The bool reports whether a row changed; an unknown id is not an error.
	Update(ctx context.Context, projectID, id string, patch FieldPatch) (bool, error)
	// Remove deletes the given ids scoped to projectID and returns how many
	// rows were actually deleted. Foreign ids count zero, without error.
	Remove(ctx context.Context, projectID string, ids []string) (int, error)
	DeleteByProject(ctx context.Context, projectID string) error
}
