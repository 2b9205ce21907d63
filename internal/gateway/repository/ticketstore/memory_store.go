package ticketstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback used when no database is configured,
// and the store of choice in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Ticket
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Ticket)}
}

func (s *MemoryStore) AppendBatch(_ context.Context, projectID string, tickets []Ticket) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return fmt.Errorf("project_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tickets {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("ticket id is required")
		}
		if _, exists := s.byID[t.ID]; exists {
			return fmt.Errorf("ticket %s already exists", t.ID)
		}
	}
	for _, t := range tickets {
		t.ProjectID = projectID
		s.byID[t.ID] = cloneTicket(t)
	}
	return nil
}

func (s *MemoryStore) ListByProject(_ context.Context, projectID string) ([]Ticket, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Ticket, 0, 16)
	for _, t := range s.byID {
		if t.ProjectID == projectID {
			out = append(out, cloneTicket(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Ticket, error) {
	if s == nil {
		return Ticket{}, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return Ticket{}, ErrNotFound
	}
	return cloneTicket(t), nil
}

func (s *MemoryStore) Update(_ context.Context, projectID, id string, patch FieldPatch) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok || t.ProjectID != projectID {
		return false, nil
	}
	patch.Apply(&t)
	t.UpdatedAt = time.Now().UTC()
	s.byID[id] = t
	return true, nil
}

func (s *MemoryStore) Remove(_ context.Context, projectID string, ids []string) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, id := range ids {
		t, ok := s.byID[id]
		if !ok || t.ProjectID != projectID {
			continue
		}
		delete(s.byID, id)
		removed++
	}
	return removed, nil
}

func (s *MemoryStore) DeleteByProject(_ context.Context, projectID string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.byID {
		if t.ProjectID == projectID {
			delete(s.byID, id)
		}
	}
	return nil
}
