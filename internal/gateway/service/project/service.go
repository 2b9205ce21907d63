// Package project manages project lifecycle: creation with derived slugs,
// owner-scoped lookups, and cascading deletion of the board and transcript.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ticketflow/internal/gateway/repository/messagestore"
	"ticketflow/internal/gateway/repository/projectstore"
	"ticketflow/internal/gateway/repository/ticketstore"
)

var (
	ErrNotFound  = projectstore.ErrNotFound
	ErrForbidden = errors.New("project belongs to another user")
)

type Service struct {
	projects projectstore.Store
	tickets  ticketstore.Store
	messages messagestore.Store
}

func NewService(projects projectstore.Store, tickets ticketstore.Store, messages messagestore.Store) *Service {
	return &Service{projects: projects, tickets: tickets, messages: messages}
}

// Create registers a project for ownerID. The slug is derived from the name;
// collisions get a numeric suffix.
func (s *Service) Create(ctx context.Context, ownerID, name, description string) (projectstore.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return projectstore.Project{}, fmt.Errorf("project name is required")
	}
	base := Slugify(name)
	p := projectstore.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}
	for i := 0; i < 20; i++ {
		p.Slug = base
		if i > 0 {
			p.Slug = fmt.Sprintf("%s-%d", base, i+1)
		}
		err := s.projects.Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, projectstore.ErrSlugTaken) {
			return projectstore.Project{}, err
		}
	}
	return projectstore.Project{}, projectstore.ErrSlugTaken
}

// GetOwned resolves a project by id and verifies ownership.
func (s *Service) GetOwned(ctx context.Context, ownerID, id string) (projectstore.Project, error) {
	p, err := s.projects.Get(ctx, id)
	if err != nil {
		return projectstore.Project{}, err
	}
	if p.OwnerID != ownerID {
		return projectstore.Project{}, ErrForbidden
	}
	return p, nil
}

// GetBySlug resolves a project by slug and verifies ownership.
func (s *Service) GetBySlug(ctx context.Context, ownerID, slug string) (projectstore.Project, error) {
	p, err := s.projects.GetBySlug(ctx, slug)
	if err != nil {
		return projectstore.Project{}, err
	}
	if p.OwnerID != ownerID {
		return projectstore.Project{}, ErrForbidden
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, ownerID string, cursor, limit int) ([]projectstore.Project, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.projects.List(ctx, ownerID, cursor, limit)
}

// UpdateInput is a field patch: nil leaves the field unchanged, a non-nil
// pointer sets it. An explicit empty description clears it.
type UpdateInput struct {
	Name        *string
	Description *string
}

// Update applies the patch. The slug is stable: renaming a project does not
// break links to it.
func (s *Service) Update(ctx context.Context, ownerID, id string, in UpdateInput) (projectstore.Project, error) {
	p, err := s.GetOwned(ctx, ownerID, id)
	if err != nil {
		return projectstore.Project{}, err
	}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			p.Name = name
		}
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if err := s.projects.Update(ctx, p); err != nil {
		return projectstore.Project{}, err
	}
	return p, nil
}

// Delete removes the project along with its tickets and transcript.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.GetOwned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.tickets.DeleteByProject(ctx, id); err != nil {
		return fmt.Errorf("delete project tickets: %w", err)
	}
	if err := s.messages.DeleteByProject(ctx, id); err != nil {
		return fmt.Errorf("delete project messages: %w", err)
	}
	return s.projects.Delete(ctx, id)
}

// Slugify lowercases the name and turns space runs into single dashes.
func Slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	fields := strings.Fields(lower)
	return strings.Join(fields, "-")
}
