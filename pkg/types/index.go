package types

import (
	"errors"
	"time"
)

// Index persists resolution runs and the images synced from the structured
// API. Callers attach to a data directory, record runs, and detach when done.
type Index interface {
	// Attach opens (creating if needed) the index under dataDir.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(dataDir string) error

	// Detach releases resources. Idempotent: multiple calls succeed.
	// After Detach, every other operation returns ErrIndexDetached.
	Detach() error

	// SaveRun stores a run and its resolutions and returns the generated run ID.
	SaveRun(run Run, records []ResolutionRecord) (string, error)

	// Runs returns every stored run, newest first.
	Runs() ([]Run, error)

	// Run returns one stored run. Returns an error wrapping ErrNotFound for
	// an unknown run ID.
	Run(runID string) (Run, error)

	// Resolutions returns the records of one run in their stored order.
	// Returns an error wrapping ErrNotFound for an unknown run ID.
	Resolutions(runID string) ([]ResolutionRecord, error)

	// PutLocalImage records that url has been downloaded to relPath, a path
	// relative to the data directory.
	PutLocalImage(url, relPath string) error

	// LocalImages returns url to absolute path for every recorded image whose
	// file still exists.
	LocalImages() (map[string]string, error)
}

// Run summarizes one resolution run.
type Run struct {
	ID        string
	Inventory string
	CreatedAt time.Time
	Groups    int // groups considered
	Excluded  int // groups skipped because their quantity was 1 or less
	WithImage int
	Misses    int
}

// ResolutionRecord is the persisted form of one resolved group.
type ResolutionRecord struct {
	PartID    string
	ColourID  string
	Quantity  int
	Path      string // Empty when no image was found.
	Width     int
	Height    int
	Source    string
	Important bool
	Missing   bool
}

// Index lifecycle errors.
var (
	ErrIndexDetached   = errors.New("index is detached")
	ErrAlreadyAttached = errors.New("index is already attached")
)
