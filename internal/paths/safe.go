package paths

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mesh-intelligence/partlabels/pkg/types"
)

var safeRel = regexp.MustCompile(`^[-_a-zA-Z0-9./]+$`)

// ValidateRelative rejects relative paths containing characters outside
// [-_a-zA-Z0-9./] or any ".." sequence.
func ValidateRelative(rel string) error {
	if !safeRel.MatchString(rel) {
		return fmt.Errorf("validate path %q: %w", rel, types.ErrUnsafePath)
	}
	if strings.Contains(rel, "..") {
		return fmt.Errorf("validate path %q: parent reference: %w", rel, types.ErrUnsafePath)
	}
	return nil
}

// IsChild reports whether path is a strict descendant of root after both are
// made absolute and cleaned.
func IsChild(root, path string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// SafeJoin validates rel and joins it under root. The result is guaranteed to
// lie strictly inside root.
func SafeJoin(root, rel string) (string, error) {
	if err := ValidateRelative(rel); err != nil {
		return "", err
	}
	joined := filepath.Join(root, filepath.FromSlash(rel))
	if !IsChild(root, joined) {
		return "", fmt.Errorf("join %q under %q: %w", rel, root, types.ErrUnsafePath)
	}
	return joined, nil
}
