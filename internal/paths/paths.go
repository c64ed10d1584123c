// Package paths resolves the configuration and data directories and the
// cache layout beneath the data directory, and validates derived paths.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "partlabels"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "PARTLABELS_CONFIG_DIR"
	EnvDataDir   = "PARTLABELS_DATA_DIR"
)

// Cache layout under the data directory.
const (
	ArchiveDirName    = "ldraw_bundles"
	LocalImageDirName = "local_images"
	HandPlacedDirName = "part_images"
	ThumbDirName      = "thumbs"
	IndexFileName     = "index.db"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	userCacheDir  func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	userCacheDir:  os.UserCacheDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/partlabels (fallback ~/.config/partlabels)
// macOS:   ~/Library/Application Support/partlabels
// Windows: %APPDATA%/partlabels
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// DefaultDataDir returns the platform-specific default data directory. The
// data directory is a re-downloadable cache, so non-Linux platforms use the
// user cache directory.
//
// Linux:   $XDG_DATA_HOME/partlabels (fallback ~/.local/share/partlabels)
// macOS:   ~/Library/Caches/partlabels
// Windows: %LocalAppData%/partlabels
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", appName), nil
	}
	dir, err := platformDir.userCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > PARTLABELS_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > PARTLABELS_DATA_DIR env > config.yaml value > DefaultDataDir().
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	return DefaultDataDir()
}

// Layout names the cache directories under one data directory.
type Layout struct {
	Root string
}

// Archives returns the directory holding the colour archives.
func (l Layout) Archives() string { return filepath.Join(l.Root, ArchiveDirName) }

// LocalImages returns the directory of extracted and copied images.
func (l Layout) LocalImages() string { return filepath.Join(l.Root, LocalImageDirName) }

// HandPlaced returns the directory of hand-curated part images.
func (l Layout) HandPlaced() string { return filepath.Join(l.Root, HandPlacedDirName) }

// Thumbs returns the directory of generated thumbnails.
func (l Layout) Thumbs() string { return filepath.Join(l.Root, ThumbDirName) }

// Index returns the path of the SQLite index database.
func (l Layout) Index() string { return filepath.Join(l.Root, IndexFileName) }

// Ensure creates the data directory and every cache subdirectory.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Root, l.Archives(), l.LocalImages(), l.HandPlaced(), l.Thumbs()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
