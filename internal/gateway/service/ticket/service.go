// Package ticket exposes board operations in two registers: strict
// single-ticket operations for the UI, which fail loudly on unknown ids, and
// tolerant bulk operations for model tools, which skip unknown ids and report
// counts.
package ticket

import (
	"context"
	"fmt"

	"ticketflow/internal/gateway/repository/ticketstore"
	"ticketflow/internal/ticketgen"
)

var ErrNotFound = ticketstore.ErrNotFound

type Service struct {
	store ticketstore.Store
	vocab ticketgen.Vocabulary
}

func NewService(store ticketstore.Store, vocab ticketgen.Vocabulary) *Service {
	return &Service{store: store, vocab: vocab}
}

func (s *Service) ListByProject(ctx context.Context, projectID string) ([]ticketstore.Ticket, error) {
	return s.store.ListByProject(ctx, projectID)
}

// Get resolves one ticket and verifies it belongs to projectID.
func (s *Service) Get(ctx context.Context, projectID, id string) (ticketstore.Ticket, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return ticketstore.Ticket{}, err
	}
	if t.ProjectID != projectID {
		return ticketstore.Ticket{}, ErrNotFound
	}
	return t, nil
}

// Update is the strict form: patching an unknown ticket is an error.
func (s *Service) Update(ctx context.Context, projectID, id string, patch ticketstore.FieldPatch) (ticketstore.Ticket, error) {
	if err := s.validatePatch(patch); err != nil {
		return ticketstore.Ticket{}, err
	}
	ok, err := s.store.Update(ctx, projectID, id, patch)
	if err != nil {
		return ticketstore.Ticket{}, err
	}
	if !ok {
		return ticketstore.Ticket{}, ErrNotFound
	}
	return s.Get(ctx, projectID, id)
}

// Delete is the strict form: deleting an unknown ticket is an error.
func (s *Service) Delete(ctx context.Context, projectID, id string) error {
	n, err := s.store.Remove(ctx, projectID, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateFields is the tolerant form used by model tools: an unknown or
// foreign id reports false without error.
func (s *Service) UpdateFields(ctx context.Context, projectID, id string, patch ticketstore.FieldPatch) (bool, error) {
	if err := s.validatePatch(patch); err != nil {
		return false, err
	}
	return s.store.Update(ctx, projectID, id, patch)
}

// RemoveMany deletes the ids that exist inside projectID and counts them.
func (s *Service) RemoveMany(ctx context.Context, projectID string, ids []string) (int, error) {
	return s.store.Remove(ctx, projectID, ids)
}

func (s *Service) DeleteByProject(ctx context.Context, projectID string) error {
	return s.store.DeleteByProject(ctx, projectID)
}

func (s *Service) validatePatch(patch ticketstore.FieldPatch) error {
	if patch.Status != nil {
		switch *patch.Status {
		case ticketstore.StatusTodo, ticketstore.StatusInProgress, ticketstore.StatusDone:
		default:
			return fmt.Errorf("invalid status %q", *patch.Status)
		}
	}
	if patch.Priority != nil && !contains(ticketstore.Priorities, *patch.Priority) {
		return fmt.Errorf("invalid priority %q", *patch.Priority)
	}
	if patch.EstimatedEffort != nil && !contains(ticketstore.Efforts, *patch.EstimatedEffort) {
		return fmt.Errorf("invalid estimatedEffort %q", *patch.EstimatedEffort)
	}
	if patch.Type != nil && !contains(s.vocab.TicketTypes(), *patch.Type) {
		return fmt.Errorf("invalid type %q", *patch.Type)
	}
	if patch.Title != nil && *patch.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
