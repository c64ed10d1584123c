package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/partlabels/pkg/types"
)

func attached(t *testing.T, dir string) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(dir))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()
	b := attached(t, tmpDir)

	assert.FileExists(t, filepath.Join(tmpDir, "index.db"))
	assert.ErrorIs(t, b.Attach(tmpDir), types.ErrAlreadyAttached)
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(t.TempDir()))

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "second Detach should not error")

	_, err := b.Runs()
	assert.ErrorIs(t, err, types.ErrIndexDetached)
	_, err = b.SaveRun(types.Run{}, nil)
	assert.ErrorIs(t, err, types.ErrIndexDetached)
	_, err = b.Resolutions("x")
	assert.ErrorIs(t, err, types.ErrIndexDetached)
	assert.ErrorIs(t, b.PutLocalImage("u", "a.png"), types.ErrIndexDetached)
	_, err = b.LocalImages()
	assert.ErrorIs(t, err, types.ErrIndexDetached)
}

func TestSaveRunRoundTrip(t *testing.T) {
	b := attached(t, t.TempDir())

	records := []types.ResolutionRecord{
		{PartID: "3001", ColourID: "4", Quantity: 6, Path: "/data/local_images/4_3001.png", Width: 8, Height: 6, Source: types.SourceArchive, Important: true},
		{PartID: "3622", ColourID: "1", Quantity: 2, Important: true, Missing: true},
	}
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := b.SaveRun(types.Run{Inventory: "castle.csv", CreatedAt: created, Groups: 5, Excluded: 2, WithImage: 1, Misses: 1}, records)
	require.NoError(t, err)
	require.Len(t, id, 36)

	got, err := b.Resolutions(id)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	run, err := b.Run(id)
	require.NoError(t, err)
	assert.Equal(t, types.Run{ID: id, Inventory: "castle.csv", CreatedAt: created, Groups: 5, Excluded: 2, WithImage: 1, Misses: 1}, run)
}

func TestRunsNewestFirstAndPersisted(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(dir))

	older, err := b.SaveRun(types.Run{Inventory: "a.csv", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, nil)
	require.NoError(t, err)
	newer, err := b.SaveRun(types.Run{Inventory: "b.csv", CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b = attached(t, dir)
	runs, err := b.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer, runs[0].ID)
	assert.Equal(t, older, runs[1].ID)
}

func TestUnknownRunIsNotFound(t *testing.T) {
	b := attached(t, t.TempDir())

	_, err := b.Resolutions("no-such-run")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = b.Run("no-such-run")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestLocalImages(t *testing.T) {
	dir := t.TempDir()
	b := attached(t, dir)

	present := filepath.Join(dir, "parts", "elements", "300121.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(present), 0o755))
	require.NoError(t, os.WriteFile(present, []byte("jpg"), 0o644))

	require.NoError(t, b.PutLocalImage("https://cdn/media/parts/elements/300121.jpg", "parts/elements/300121.jpg"))
	require.NoError(t, b.PutLocalImage("https://cdn/media/parts/gone.jpg", "parts/gone.jpg"))

	images, err := b.LocalImages()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"https://cdn/media/parts/elements/300121.jpg": present}, images)
}

func TestPutLocalImageRejectsUnsafePath(t *testing.T) {
	b := attached(t, t.TempDir())

	for _, rel := range []string{"../escape.png", "/etc/passwd extra", "a b.png"} {
		assert.ErrorIs(t, b.PutLocalImage("u", rel), types.ErrUnsafePath, rel)
	}
}

func TestLocalImagesRevalidatesStoredPaths(t *testing.T) {
	b := attached(t, t.TempDir())

	_, err := b.db.Exec(`INSERT INTO local_images (url, rel_path, created_at) VALUES (?, ?, ?)`,
		"https://cdn/media/x.png", "../../x.png", time.Now().UTC().Format(time.RFC3339Nano))
	require.NoError(t, err)

	_, err = b.LocalImages()
	assert.ErrorIs(t, err, types.ErrUnsafePath)
}
