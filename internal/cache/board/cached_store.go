package board

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"ticketflow/internal/gateway/repository/ticketstore"
)

// CachedStore memoizes per-project ticket lists in front of a ticket store.
// Any write for a project drops that project's cached list.
type CachedStore struct {
	origin ticketstore.Store
	lists  *lru.Cache[string, []ticketstore.Ticket]
}

func NewCachedStore(origin ticketstore.Store, maxProjects int) (*CachedStore, error) {
	if maxProjects <= 0 {
		maxProjects = 1024
	}
	lists, err := lru.New[string, []ticketstore.Ticket](maxProjects)
	if err != nil {
		return nil, err
	}
	return &CachedStore{origin: origin, lists: lists}, nil
}

func (s *CachedStore) invalidate(projectID string) {
	s.lists.Remove(strings.TrimSpace(projectID))
}

func cloneList(tickets []ticketstore.Ticket) []ticketstore.Ticket {
	out := make([]ticketstore.Ticket, len(tickets))
	copy(out, tickets)
	return out
}

func (s *CachedStore) AppendBatch(ctx context.Context, projectID string, tickets []ticketstore.Ticket) error {
	if err := s.origin.AppendBatch(ctx, projectID, tickets); err != nil {
		return err
	}
	s.invalidate(projectID)
	return nil
}

func (s *CachedStore) ListByProject(ctx context.Context, projectID string) ([]ticketstore.Ticket, error) {
	key := strings.TrimSpace(projectID)
	if cached, ok := s.lists.Get(key); ok {
		return cloneList(cached), nil
	}
	tickets, err := s.origin.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.lists.Add(key, cloneList(tickets))
	return tickets, nil
}

func (s *CachedStore) Get(ctx context.Context, id string) (ticketstore.Ticket, error) {
	return s.origin.Get(ctx, id)
}

func (s *CachedStore) Update(ctx context.Context, projectID, id string, patch ticketstore.FieldPatch) (bool, error) {
	changed, err := s.origin.Update(ctx, projectID, id, patch)
	if err != nil {
		return false, err
	}
	if changed {
		s.invalidate(projectID)
	}
	return changed, nil
}

func (s *CachedStore) Remove(ctx context.Context, projectID string, ids []string) (int, error) {
	removed, err := s.origin.Remove(ctx, projectID, ids)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.invalidate(projectID)
	}
	return removed, nil
}

func (s *CachedStore) DeleteByProject(ctx context.Context, projectID string) error {
	if err := s.origin.DeleteByProject(ctx, projectID); err != nil {
		return err
	}
	s.invalidate(projectID)
	return nil
}
