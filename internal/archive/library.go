// Package archive opens per-colour image archives on demand and extracts
// single entries from them.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/mesh-intelligence/partlabels/internal/fetch"
	"github.com/mesh-intelligence/partlabels/internal/logger"
)

// Library gives access to the entries of the colour archives of one run.
// Archives are opened the first time a colour is searched and stay open
// until Close. A Library is not safe for concurrent use.
type Library struct {
	set    *fetch.ArchiveSet
	log    *logger.Logger
	open   map[string]*zip.ReadCloser
	index  map[string]map[string]*zip.File
	broken map[string]bool
}

// NewLibrary returns a Library over the archives in set.
func NewLibrary(set *fetch.ArchiveSet, log *logger.Logger) *Library {
	if log == nil {
		log = logger.Nop()
	}
	return &Library{
		set:    set,
		log:    log.With("component", "archive"),
		open:   make(map[string]*zip.ReadCloser),
		index:  make(map[string]map[string]*zip.File),
		broken: make(map[string]bool),
	}
}

// Available reports whether the colour has an archive that can be searched.
func (l *Library) Available(colourID string) bool {
	if l.set.IsMissing(colourID) || l.broken[colourID] {
		return false
	}
	_, ok := l.set.Path(colourID)
	return ok
}

// Lookup returns the named entry of the colour's archive. It reports false
// when the colour has no usable archive or the entry does not exist. An
// archive that cannot be opened is logged once and treated as absent.
func (l *Library) Lookup(colourID, name string) (*zip.File, bool) {
	entries, ok := l.entries(colourID)
	if !ok {
		return nil, false
	}
	f, ok := entries[name]
	return f, ok
}

func (l *Library) entries(colourID string) (map[string]*zip.File, bool) {
	if entries, ok := l.index[colourID]; ok {
		return entries, true
	}
	if !l.Available(colourID) {
		return nil, false
	}
	path, _ := l.set.Path(colourID)
	rc, err := zip.OpenReader(path)
	if err != nil {
		l.log.Warn("cannot open colour archive", "colour", colourID, "path", path, "error", err)
		l.broken[colourID] = true
		return nil, false
	}
	entries := make(map[string]*zip.File, len(rc.File))
	for _, f := range rc.File {
		entries[f.Name] = f
	}
	l.open[colourID] = rc
	l.index[colourID] = entries
	return entries, true
}

// Close closes every opened archive.
func (l *Library) Close() error {
	var first error
	for id, rc := range l.open {
		if err := rc.Close(); err != nil && first == nil {
			first = fmt.Errorf("closing archive for colour %s: %w", id, err)
		}
	}
	l.open = make(map[string]*zip.ReadCloser)
	l.index = make(map[string]map[string]*zip.File)
	return first
}

// Extract writes the entry to dest unless dest already exists. It reports
// whether anything was written. The file appears atomically.
func Extract(f *zip.File, dest string) (bool, error) {
	if _, err := os.Stat(dest); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}

	rc, err := f.Open()
	if err != nil {
		return false, fmt.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".extract-*.tmp")
	if err != nil {
		return false, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = io.Copy(tmp, rc)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpName, dest)
	}
	if err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("extracting %s to %s: %w", f.Name, dest, err)
	}
	return true, nil
}
