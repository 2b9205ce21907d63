package ticketstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// SQLStore runs on either postgres (pgx) or sqlite (modernc); the SQL is
// written with `?` placeholders and rebound per driver.
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
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
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
CREATE TABLE IF NOT EXISTS tickets (
  ticket_id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  title TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'Task',
  priority TEXT NOT NULL DEFAULT 'P2',
  description TEXT NOT NULL DEFAULT '',
  acceptance_criteria TEXT NOT NULL DEFAULT '[]',
  estimated_effort TEXT NOT NULL DEFAULT 'M',
  dependencies TEXT NOT NULL DEFAULT '[]',
  labels TEXT NOT NULL DEFAULT '[]',
  sort_order INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'todo',
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
)`)
		if s.schemaErr != nil {
			return
		}
		_, s.schemaErr = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_tickets_project_id ON tickets (project_id)`)
	})
	return s.schemaErr
}

type ticketRow struct {
	ID                 string    `db:"ticket_id"`
	ProjectID          string    `db:"project_id"`
	Title              string    `db:"title"`
	Type               string    `db:"type"`
	Priority           string    `db:"priority"`
	Description        string    `db:"description"`
	AcceptanceCriteria string    `db:"acceptance_criteria"`
	EstimatedEffort    string    `db:"estimated_effort"`
	Dependencies       string    `db:"dependencies"`
	Labels             string    `db:"labels"`
	SortOrder          int       `db:"sort_order"`
	Status             string    `db:"status"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (r ticketRow) ticket() Ticket {
	return Ticket{
		ID:                 r.ID,
		ProjectID:          r.ProjectID,
		Title:              r.Title,
		Type:               r.Type,
		Priority:           r.Priority,
		Description:        r.Description,
		AcceptanceCriteria: decodeStrings(r.AcceptanceCriteria),
		EstimatedEffort:    r.EstimatedEffort,
		Dependencies:       decodeStrings(r.Dependencies),
		Labels:             decodeStrings(r.Labels),
		SortOrder:          r.SortOrder,
		Status:             r.Status,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func encodeStrings(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeStrings(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

func (s *SQLStore) AppendBatch(ctx context.Context, projectID string, tickets []Ticket) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if len(tickets) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	q := tx.Rebind(`INSERT INTO tickets (
  ticket_id, project_id, title, type, priority, description,
  acceptance_criteria, estimated_effort, dependencies, labels,
  sort_order, status, created_at, updated_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	for _, t := range tickets {
		if _, err := tx.ExecContext(ctx, q,
			t.ID, projectID, t.Title, t.Type, t.Priority, t.Description,
			encodeStrings(t.AcceptanceCriteria), t.EstimatedEffort,
			encodeStrings(t.Dependencies), encodeStrings(t.Labels),
			t.SortOrder, t.Status, t.CreatedAt, t.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert ticket %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) ListByProject(ctx context.Context, projectID string) ([]Ticket, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var rows []ticketRow
	q := s.db.Rebind(`SELECT * FROM tickets WHERE project_id = ? ORDER BY sort_order, ticket_id`)
	if err := s.db.SelectContext(ctx, &rows, q, projectID); err != nil {
		return nil, err
	}
	out := make([]Ticket, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ticket())
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Ticket, error) {
	if err := s.ensureSchema(); err != nil {
		return Ticket{}, err
	}
	var row ticketRow
	q := s.db.Rebind(`SELECT * FROM tickets WHERE ticket_id = ?`)
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ticket{}, ErrNotFound
		}
		return Ticket{}, err
	}
	return row.ticket(), nil
}

func (s *SQLStore) Update(ctx context.Context, projectID, id string, patch FieldPatch) (bool, error) {
	if err := s.ensureSchema(); err != nil {
		return false, err
	}
	if patch.IsZero() {
		// Nothing to set; still report whether the row exists.
		var n int
		q := s.db.Rebind(`SELECT COUNT(*) FROM tickets WHERE ticket_id = ? AND project_id = ?`)
		if err := s.db.GetContext(ctx, &n, q, id, projectID); err != nil {
			return false, err
		}
		return n > 0, nil
	}

	set := make([]string, 0, 10)
	args := make([]any, 0, 12)
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.AcceptanceCriteria != nil {
		add("acceptance_criteria", encodeStrings(*patch.AcceptanceCriteria))
	}
	if patch.EstimatedEffort != nil {
		add("estimated_effort", *patch.EstimatedEffort)
	}
	if patch.Dependencies != nil {
		add("dependencies", encodeStrings(*patch.Dependencies))
	}
	if patch.Labels != nil {
		add("labels", encodeStrings(*patch.Labels))
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id, projectID)

	q := s.db.Rebind(`UPDATE tickets SET ` + strings.Join(set, ", ") + ` WHERE ticket_id = ? AND project_id = ?`)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) Remove(ctx context.Context, projectID string, ids []string) (int, error) {
	if err := s.ensureSchema(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(`DELETE FROM tickets WHERE project_id = ? AND ticket_id IN (?)`, projectID, ids)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SQLStore) DeleteByProject(ctx context.Context, projectID string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	q := s.db.Rebind(`DELETE FROM tickets WHERE project_id = ?`)
	_, err := s.db.ExecContext(ctx, q, projectID)
	return err
}
