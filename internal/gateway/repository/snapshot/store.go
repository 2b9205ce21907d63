package snapshot

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("snapshot not found")

// Store persists board snapshots: JSON exports of a project's tickets taken
// at a point in time. Snapshots are write-once blobs named by the caller.
type Store interface {
	Put(ctx context.Context, projectID, name string, content []byte) error
	Get(ctx context.Context, projectID, name string) ([]byte, error)
	// GetURL returns a short-lived download URL when the backend supports
	// one, or "" when content must be fetched through the gateway.
	GetURL(ctx context.Context, projectID, name string) (string, error)
	List(ctx context.Context, projectID string) ([]string, error)
}
