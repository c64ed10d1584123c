// Package thumbs renders label-sized thumbnails of resolved images.
package thumbs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Generator writes thumbnails into Dir. A Size of zero disables generation.
type Generator struct {
	Dir  string
	Size int
}

// Enabled reports whether thumbnails are generated at all.
func (g Generator) Enabled() bool {
	return g.Size > 0
}

// Make fits src into a Size×Size box with Lanczos resampling and writes it to
// Dir under the same file name. An existing thumbnail is reused. It returns
// the thumbnail path, or "" when generation is disabled.
func (g Generator) Make(src string) (string, error) {
	if !g.Enabled() {
		return "", nil
	}
	dest := filepath.Join(g.Dir, filepath.Base(src))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	format, err := imaging.FormatFromFilename(dest)
	if err != nil {
		return "", fmt.Errorf("choosing thumbnail format for %s: %w", src, err)
	}
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	thumb := imaging.Fit(img, g.Size, g.Size, imaging.Lanczos)

	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", g.Dir, err)
	}
	tmp, err := os.CreateTemp(g.Dir, ".thumb-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	err = imaging.Encode(tmp, thumb, format)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpName, dest)
	}
	if err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("writing thumbnail %s: %w", dest, err)
	}
	return dest, nil
}
