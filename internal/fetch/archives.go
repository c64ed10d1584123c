package fetch

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/mesh-intelligence/partlabels/internal/paths"
)

// ArchiveRemotePath returns the CDN-relative path of a colour's archive.
func ArchiveRemotePath(colourID string) string {
	return "ldraw/" + ArchiveFileName(colourID)
}

// ArchiveFileName returns the local file name of a colour's archive.
func ArchiveFileName(colourID string) string {
	return "parts_" + colourID + ".zip"
}

// ArchiveBatch tracks the colour archives requested for one run. Worker
// completions record into it under its mutex; readers use the ArchiveSet
// returned by Wait.
type ArchiveBatch struct {
	mu      sync.Mutex
	paths   map[string]string
	missing map[string]bool
	wg      sync.WaitGroup
}

// FetchArchives requests the archive of every colour in colourIDs into dir.
// Archives already on disk complete immediately. Colours for which
// knownMissing returns true are recorded missing without a request. A failed
// transfer records the colour missing; it is not retried.
func (f *Fetcher) FetchArchives(ctx context.Context, colourIDs []string, dir string, knownMissing func(colourID string) bool) (*ArchiveBatch, error) {
	b := &ArchiveBatch{
		paths:   make(map[string]string),
		missing: make(map[string]bool),
	}

	seen := make(map[string]bool, len(colourIDs))
	for _, id := range colourIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if knownMissing != nil && knownMissing(id) {
			b.recordMissing(id)
			continue
		}

		dest, err := paths.SafeJoin(dir, ArchiveFileName(id))
		if err != nil {
			return nil, fmt.Errorf("requesting archive for colour %s: %w", id, err)
		}
		if _, err := os.Stat(dest); err == nil {
			b.recordPath(id, dest)
			continue
		}

		b.wg.Add(1)
		h := f.FetchAsync(ctx, ArchiveRemotePath(id), dest)
		go func(id string) {
			defer b.wg.Done()
			p, err := h.Wait(ctx)
			if err != nil {
				f.log.Warn("colour archive unavailable", "colour", id, "error", err)
				b.recordMissing(id)
				return
			}
			b.recordPath(id, p)
		}(id)
	}
	return b, nil
}

// recordPath and recordMissing are the only writers of the batch maps.
func (b *ArchiveBatch) recordPath(colourID, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths[colourID] = path
}

func (b *ArchiveBatch) recordMissing(colourID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.missing[colourID] = true
}

// Wait blocks until every requested archive has completed or failed and
// returns a snapshot of the outcome.
func (b *ArchiveBatch) Wait(ctx context.Context) (*ArchiveSet, error) {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	set := &ArchiveSet{
		paths:   make(map[string]string, len(b.paths)),
		missing: make(map[string]bool, len(b.missing)),
	}
	for k, v := range b.paths {
		set.paths[k] = v
	}
	for k := range b.missing {
		set.missing[k] = true
	}
	return set, nil
}

// ArchiveSet is the read-only outcome of an ArchiveBatch.
type ArchiveSet struct {
	paths   map[string]string
	missing map[string]bool
}

// NewArchiveSet builds an ArchiveSet directly from colour→path pairs and
// missing colour IDs.
func NewArchiveSet(paths map[string]string, missing []string) *ArchiveSet {
	s := &ArchiveSet{
		paths:   make(map[string]string, len(paths)),
		missing: make(map[string]bool, len(missing)),
	}
	for k, v := range paths {
		s.paths[k] = v
	}
	for _, id := range missing {
		s.missing[id] = true
	}
	return s
}

// Path returns the local archive of a colour.
func (s *ArchiveSet) Path(colourID string) (string, bool) {
	p, ok := s.paths[colourID]
	return p, ok
}

// IsMissing reports whether the colour has no archive this run.
func (s *ArchiveSet) IsMissing(colourID string) bool {
	return s.missing[colourID]
}

// Missing returns the missing colour IDs in sorted order.
func (s *ArchiveSet) Missing() []string {
	out := make([]string, 0, len(s.missing))
	for id := range s.missing {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
