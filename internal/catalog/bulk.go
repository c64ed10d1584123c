package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/partlabels/internal/fetch"
	"github.com/mesh-intelligence/partlabels/internal/logger"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// Downloader schedules bulk table downloads.
type Downloader interface {
	FetchDownloadAsync(ctx context.Context, name, dest string) *fetch.Handle
}

// Download makes sure every bulk table is present in dir as an uncompressed
// CSV. A table whose CSV already exists is left alone; otherwise its gzip file
// is fetched (unless already present) and decompressed. Any failure is fatal
// and wraps types.ErrTransfer.
func Download(ctx context.Context, d Downloader, dir string, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range TableNames() {
		g.Go(func() error {
			return downloadTable(ctx, d, dir, name, log)
		})
	}
	return g.Wait()
}

func downloadTable(ctx context.Context, d Downloader, dir, name string, log *logger.Logger) error {
	csvPath := filepath.Join(dir, name+".csv")
	if _, err := os.Stat(csvPath); err == nil {
		log.Debug("bulk table present, not downloading", "table", name, "path", csvPath)
		return nil
	}

	gzName := name + ".csv.gz"
	gzPath := filepath.Join(dir, gzName)
	if _, err := os.Stat(gzPath); err != nil {
		if _, err := d.FetchDownloadAsync(ctx, gzName, gzPath).Wait(ctx); err != nil {
			return fmt.Errorf("downloading %s: %w: %w", gzName, types.ErrTransfer, err)
		}
	}

	if err := gunzip(gzPath, csvPath); err != nil {
		return fmt.Errorf("decompressing %s: %w: %w", gzName, types.ErrTransfer, err)
	}
	log.Info("extracted bulk table", "table", name, "path", csvPath)
	return nil
}

// gunzip decompresses src into dst through a temp file so a partial CSV is
// never left behind.
func gunzip(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer zr.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".csv-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, err = io.Copy(tmp, zr)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpName, dst)
	}
	if err != nil {
		os.Remove(tmpName)
	}
	return err
}
