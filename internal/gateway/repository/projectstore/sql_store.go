package projectstore

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
CREATE TABLE IF NOT EXISTS projects (
  project_id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT 'Project',
  description TEXT NOT NULL DEFAULT '',
  slug TEXT NOT NULL UNIQUE,
  owner_id TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL
)`)
		if s.schemaErr != nil {
			return
		}
		_, s.schemaErr = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_projects_owner_id ON projects (owner_id)`)
	})
	return s.schemaErr
}

func (s *SQLStore) Create(ctx context.Context, p Project) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	q := s.db.Rebind(`INSERT INTO projects (project_id, name, description, slug, owner_id, created_at)
VALUES (?,?,?,?,?,?)`)
	if _, err := s.db.ExecContext(ctx, q, p.ID, p.Name, p.Description, p.Slug, p.OwnerID, p.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Project, error) {
	if err := s.ensureSchema(); err != nil {
		return Project{}, err
	}
	var p Project
	q := s.db.Rebind(`SELECT * FROM projects WHERE project_id = ?`)
	if err := s.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return p, nil
}

func (s *SQLStore) GetBySlug(ctx context.Context, slug string) (Project, error) {
	if err := s.ensureSchema(); err != nil {
		return Project{}, err
	}
	var p Project
	q := s.db.Rebind(`SELECT * FROM projects WHERE slug = ?`)
	if err := s.db.GetContext(ctx, &p, q, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return p, nil
}

func (s *SQLStore) List(ctx context.Context, ownerID string, cursor, limit int) ([]Project, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	if cursor < 0 {
		cursor = 0
	}
	if limit <= 0 {
		limit = 50
	}
	var out []Project
	q := s.db.Rebind(`SELECT * FROM projects WHERE owner_id = ?
ORDER BY created_at DESC, project_id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &out, q, ownerID, limit, cursor); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) Update(ctx context.Context, p Project) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	q := s.db.Rebind(`UPDATE projects SET name = ?, description = ?, slug = ? WHERE project_id = ?`)
	res, err := s.db.ExecContext(ctx, q, p.Name, p.Description, p.Slug, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	q := s.db.Rebind(`DELETE FROM projects WHERE project_id = ?`)
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
