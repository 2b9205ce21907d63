package projectstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrSlugTaken = errors.New("project slug already in use")
)

// Project is the root of a ticket collection and a message transcript, owned
// by exactly one user.
type Project struct {
	ID          string    `json:"id" db:"project_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Slug        string    `json:"slug" db:"slug"`
	OwnerID     string    `json:"ownerId" db:"owner_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Store persists projects.
type Store interface {
	Create(ctx context.Context, p Project) error
	Get(ctx context.Context, id string) (Project, error)
	GetBySlug(ctx context.Context, slug string) (Project, error)
	// List returns the owner's projects newest first, skipping cursor rows.
	List(ctx context.Context, ownerID string, cursor, limit int) ([]Project, error)
	Update(ctx context.Context, p Project) error
	Delete(ctx context.Context, id string) error
}
