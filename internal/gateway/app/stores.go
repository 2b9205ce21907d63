package app

import (
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"ticketflow/internal/gateway/config"
	"ticketflow/internal/gateway/repository/messagestore"
	"ticketflow/internal/gateway/repository/projectstore"
	"ticketflow/internal/gateway/repository/snapshot"
	"ticketflow/internal/gateway/repository/ticketstore"
)

// Stores bundles the persistence backends picked from config: postgres when a
// DSN is set, sqlite when a path is set, in-memory otherwise.
type Stores struct {
	Projects  projectstore.Store
	Tickets   ticketstore.Store
	Messages  messagestore.Store
	Snapshots snapshot.Store

	db *sqlx.DB
}

func newStores(cfg *config.Config) (*Stores, error) {
	db, backend, err := openDB(cfg.Store)
	if err != nil {
		return nil, err
	}

	s := &Stores{db: db}
	if db != nil {
		s.Projects = projectstore.NewWithDB(db)
		s.Tickets = ticketstore.NewWithDB(db)
		s.Messages = messagestore.NewWithDB(db)
	} else {
		s.Projects = projectstore.NewMemoryStore()
		s.Tickets = ticketstore.NewMemoryStore()
		s.Messages = messagestore.NewMemoryStore()
	}
	log.Printf("app: store backend=%s", backend)

	s.Snapshots = newSnapshotStore(cfg.Snapshot, db)
	return s, nil
}

func openDB(cfg config.StoreConfig) (*sqlx.DB, string, error) {
	if cfg.PostgresDSN != "" {
		db, err := sqlx.Connect("pgx", cfg.PostgresDSN)
		if err != nil {
			return nil, "", fmt.Errorf("open postgres: %w", err)
		}
		return db, "postgres", nil
	}
	if cfg.SQLitePath != "" {
		db, err := sqlx.Connect("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, "", fmt.Errorf("sqlite pragma: %w", err)
		}
		return db, "sqlite", nil
	}
	return nil, "memory", nil
}

func newSnapshotStore(cfg config.SnapshotConfig, db *sqlx.DB) snapshot.Store {
	if cfg.CanUseS3() {
		store, err := snapshot.NewS3Store(snapshot.S3Config{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
		})
		if err == nil {
			log.Printf("app: snapshot backend=s3 endpoint=%s bucket=%s", cfg.Endpoint, cfg.Bucket)
			return store
		}
		log.Printf("app: s3 snapshot store unavailable, falling back: %v", err)
	}
	if db != nil {
		return snapshot.NewSQLStore(db)
	}
	return snapshot.NewMemoryStore()
}

func (s *Stores) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
