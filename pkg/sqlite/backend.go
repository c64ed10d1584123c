// Package sqlite provides the public constructor for the SQLite index while
// keeping the implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/partlabels/internal/logger"
	"github.com/mesh-intelligence/partlabels/internal/sqlite"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// NewIndex creates a new SQLite index. The index is not attached; call
// Attach with the data directory to open it.
//
// Example:
//
//	index := sqlite.NewIndex(nil)
//	if err := index.Attach(dataDir); err != nil {
//	    return err
//	}
//	defer index.Detach()
func NewIndex(log *logger.Logger) types.Index {
	if log == nil {
		return sqlite.NewBackend()
	}
	return sqlite.NewBackend(sqlite.WithLogger(log))
}
