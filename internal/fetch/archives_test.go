package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchArchives(t *testing.T) {
	var requested atomic.Int32
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested.Add(1)
		if strings.HasSuffix(r.URL.Path, "parts_999.zip") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("zip"))
	}), 3)

	dir := t.TempDir()
	existing := filepath.Join(dir, "parts_71.zip")
	require.NoError(t, os.WriteFile(existing, []byte("cached"), 0o644))

	knownMissing := func(id string) bool { return id == "1103" }
	ctx := context.Background()
	batch, err := f.FetchArchives(ctx, []string{"71", "4", "4", "999", "1103"}, dir, knownMissing)
	require.NoError(t, err)

	set, err := batch.Wait(ctx)
	require.NoError(t, err)

	p, ok := set.Path("71")
	require.True(t, ok)
	assert.Equal(t, existing, p)

	p, ok = set.Path("4")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "parts_4.zip"), p)

	_, ok = set.Path("999")
	assert.False(t, ok)
	assert.True(t, set.IsMissing("999"))
	assert.True(t, set.IsMissing("1103"))
	assert.False(t, set.IsMissing("4"))
	assert.Equal(t, []string{"1103", "999"}, set.Missing())

	// Only colour 4 and 999 go over the wire: 71 is cached, 1103 is known missing
	// and the duplicate 4 is collapsed.
	assert.Equal(t, int32(2), requested.Load())
}

func TestFetchArchivesCachedAfterRemote(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "parts_3.zip") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("zip"))
	}), 3)

	dir := t.TempDir()
	ids := []string{"1", "2", "3"}
	const cached = 500
	for i := 0; i < cached; i++ {
		id := fmt.Sprintf("c%d", i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ArchiveFileName(id)), []byte("cached"), 0o644))
		ids = append(ids, id, fmt.Sprintf("m%d", i))
	}
	knownMissing := func(id string) bool { return strings.HasPrefix(id, "m") }

	ctx := context.Background()
	batch, err := f.FetchArchives(ctx, ids, dir, knownMissing)
	require.NoError(t, err)
	set, err := batch.Wait(ctx)
	require.NoError(t, err)

	for _, id := range []string{"1", "2", "c0", "c499"} {
		_, ok := set.Path(id)
		assert.True(t, ok, id)
	}
	assert.True(t, set.IsMissing("3"))
	assert.Len(t, set.Missing(), cached+1)
}

func TestFetchArchivesRejectsUnsafeColour(t *testing.T) {
	f := New(Options{BaseURL: "http://127.0.0.1:0/"})
	defer f.Close()

	_, err := f.FetchArchives(context.Background(), []string{"../x"}, t.TempDir(), nil)
	assert.Error(t, err)
}

func TestNewArchiveSet(t *testing.T) {
	set := NewArchiveSet(map[string]string{"4": "/tmp/parts_4.zip"}, []string{"72"})
	p, ok := set.Path("4")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/parts_4.zip", p)
	assert.True(t, set.IsMissing("72"))
	assert.Equal(t, []string{"72"}, set.Missing())
}
