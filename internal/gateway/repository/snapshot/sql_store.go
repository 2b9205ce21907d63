package snapshot

import (
	"context"
	"database/sql"
	"errors"
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

// NewSQLStore reuses the gateway's primary database connection for snapshot
// blobs when no object storage is configured.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) ensureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS board_snapshots (
  project_id TEXT NOT NULL,
  name TEXT NOT NULL,
  content BLOB NOT NULL,
  created_at TIMESTAMP NOT NULL,
  PRIMARY KEY (project_id, name)
)`)
	})
	return s.schemaErr
}

func (s *SQLStore) Put(ctx context.Context, projectID, name string, content []byte) error {
	if _, err := snapshotKey(projectID, name); err != nil {
		return err
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	if content == nil {
		content = []byte{}
	}
	q := s.db.Rebind(`INSERT INTO board_snapshots (project_id, name, content, created_at)
VALUES (?,?,?,?)
ON CONFLICT (project_id, name) DO UPDATE SET content = EXCLUDED.content, created_at = EXCLUDED.created_at`)
	_, err := s.db.ExecContext(ctx, q, strings.TrimSpace(projectID), strings.TrimSpace(name), content, time.Now().UTC())
	return err
}

func (s *SQLStore) Get(ctx context.Context, projectID, name string) ([]byte, error) {
	if _, err := snapshotKey(projectID, name); err != nil {
		return nil, err
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var content []byte
	q := s.db.Rebind(`SELECT content FROM board_snapshots WHERE project_id = ? AND name = ?`)
	err := s.db.QueryRowContext(ctx, q, strings.TrimSpace(projectID), strings.TrimSpace(name)).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return content, err
}

func (s *SQLStore) GetURL(_ context.Context, _, _ string) (string, error) {
	// Content lives in the database; callers fetch it through the gateway.
	return "", nil
}

func (s *SQLStore) List(ctx context.Context, projectID string) ([]string, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var names []string
	q := s.db.Rebind(`SELECT name FROM board_snapshots WHERE project_id = ? ORDER BY name`)
	if err := s.db.SelectContext(ctx, &names, q, projectID); err != nil {
		return nil, err
	}
	return names, nil
}
