package sqlite

import (
	"fmt"
	"os"
	"time"

	"github.com/mesh-intelligence/partlabels/internal/paths"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// PutLocalImage records that url is cached at relPath under the data
// directory. An existing record for url is replaced.
func (b *Backend) PutLocalImage(url, relPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrIndexDetached
	}
	if err := paths.ValidateRelative(relPath); err != nil {
		return fmt.Errorf("recording image %s: %w", url, err)
	}

	_, err := b.db.Exec(
		`INSERT INTO local_images (url, rel_path, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET rel_path = excluded.rel_path, created_at = excluded.created_at`,
		url, relPath, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording image %s: %w", url, err)
	}
	return nil
}

// LocalImages returns url to absolute path for every recorded image. Every
// stored path is validated again before use; a path that fails validation is
// fatal. Records whose file no longer exists are skipped.
func (b *Backend) LocalImages() (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrIndexDetached
	}

	rows, err := b.db.Query(`SELECT url, rel_path FROM local_images ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("querying local images: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var url, rel string
		if err := rows.Scan(&url, &rel); err != nil {
			return nil, fmt.Errorf("scanning local image: %w", err)
		}
		abs, err := paths.SafeJoin(b.dataDir, rel)
		if err != nil {
			return nil, fmt.Errorf("loading image %s: %w", url, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.Mode().IsRegular() {
			b.log.Info("indexed image no longer on disk", "url", url, "path", rel)
			continue
		}
		out[url] = abs
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating local images: %w", err)
	}
	return out, nil
}
