package messagestore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Message)}
}

func (s *MemoryStore) Append(_ context.Context, msg Message) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if strings.TrimSpace(msg.ID) == "" {
		return fmt.Errorf("message id is required")
	}
	if strings.TrimSpace(msg.ProjectID) == "" {
		return fmt.Errorf("project_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[msg.ID]; exists {
		return nil
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.byID[msg.ID] = msg
	return nil
}

func (s *MemoryStore) ListByProject(_ context.Context, projectID string) ([]Message, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, 0, 16)
	for _, m := range s.byID {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteByProject(_ context.Context, projectID string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.byID {
		if m.ProjectID == projectID {
			delete(s.byID, id)
		}
	}
	return nil
}
