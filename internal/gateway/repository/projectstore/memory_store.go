package projectstore

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
	byID map[string]Project
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Project)}
}

func (s *MemoryStore) Create(_ context.Context, p Project) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("project id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[p.ID]; exists {
		return fmt.Errorf("project %s already exists", p.ID)
	}
	for _, other := range s.byID {
		if other.Slug == p.Slug {
			return ErrSlugTaken
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.byID[p.ID] = p
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Project, error) {
	if s == nil {
		return Project{}, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) GetBySlug(_ context.Context, slug string) (Project, error) {
	if s == nil {
		return Project{}, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.byID {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Project{}, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, ownerID string, cursor, limit int) ([]Project, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	all := make([]Project, 0, len(s.byID))
	for _, p := range s.byID {
		if p.OwnerID == ownerID {
			all = append(all, p)
		}
	}
	s.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(all) {
		return []Project{}, nil
	}
	all = all[cursor:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) Update(_ context.Context, p Project) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[p.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range s.byID {
		if id != p.ID && other.Slug == p.Slug {
			return ErrSlugTaken
		}
	}
	p.CreatedAt = cur.CreatedAt
	s.byID[p.ID] = p
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}
