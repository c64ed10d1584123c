// Package sqlite implements the persisted index of resolution runs and
// API-synced images on top of SQLite.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/partlabels/internal/logger"
	"github.com/mesh-intelligence/partlabels/internal/paths"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

var _ types.Index = (*Backend)(nil)

// Backend implements types.Index with a SQLite database file under the data
// directory. Unlike the catalog tables the index is not re-downloadable, so
// the database persists across attaches.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	dataDir  string
	db       *sql.DB
	log      *logger.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(l *logger.Logger) Option {
	return func(b *Backend) { b.log = l }
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach to open the index.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{log: logger.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With("component", "index")
	return b
}

// Attach opens the index in dataDir, creating the directory, the database
// file and the schema as needed.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(dataDir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	layout := paths.Layout{Root: dataDir}
	db, err := sql.Open("sqlite", layout.Index())
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	// A single connection keeps the foreign key pragma in effect for every
	// statement.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.dataDir = dataDir
	b.attached = true
	b.log.Debug("index attached", "path", layout.Index())
	return nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// Detach closes the database. After Detach, every operation returns
// ErrIndexDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing index: %w", err)
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// generateUUID generates a new UUID v7 for run IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
