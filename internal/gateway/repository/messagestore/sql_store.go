package messagestore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type SQLStore struct {
	db         *sqlx.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgres(dsn string) (*SQLStore, error) {
	db, err := sqlx.Connect("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func NewSQLite(path string) (*SQLStore, error) {
	db, err := sqlx.Connect("sqlite", strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// NewWithDB wraps an existing connection; used by tests.
func NewWithDB(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) ensureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS messages (
  message_id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  role TEXT NOT NULL,
  content TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL
)`)
		if s.schemaErr != nil {
			return
		}
		_, s.schemaErr = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_messages_project_id ON messages (project_id)`)
	})
	return s.schemaErr
}

func (s *SQLStore) Append(ctx context.Context, msg Message) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.ID) == "" {
		return fmt.Errorf("message id is required")
	}
	if strings.TrimSpace(msg.ProjectID) == "" {
		return fmt.Errorf("project_id is required")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	// Conflict on the primary key is the idempotent re-send case.
	q := s.db.Rebind(`INSERT INTO messages (message_id, project_id, role, content, created_at)
VALUES (?,?,?,?,?) ON CONFLICT (message_id) DO NOTHING`)
	_, err := s.db.ExecContext(ctx, q, msg.ID, msg.ProjectID, msg.Role, msg.Content, msg.CreatedAt)
	return err
}

func (s *SQLStore) ListByProject(ctx context.Context, projectID string) ([]Message, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var out []Message
	q := s.db.Rebind(`SELECT * FROM messages WHERE project_id = ? ORDER BY created_at, message_id`)
	if err := s.db.SelectContext(ctx, &out, q, projectID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) DeleteByProject(ctx context.Context, projectID string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	q := s.db.Rebind(`DELETE FROM messages WHERE project_id = ?`)
	_, err := s.db.ExecContext(ctx, q, projectID)
	return err
}
