// Package fetch downloads remote assets through a fixed pool of workers.
// Concurrent requests for the same remote path share a single transfer, and
// every transfer lands in its destination atomically.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mesh-intelligence/partlabels/internal/logger"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// DownloadsPath is the base path of the bulk table downloads relative to the
// CDN root.
const DownloadsPath = "downloads/"

// ErrClosed is returned for requests submitted after Close.
var ErrClosed = errors.New("fetcher is closed")

// Options configures a Fetcher.
type Options struct {
	// BaseURL is the CDN root every remote path is resolved against.
	BaseURL string
	// Workers is the number of concurrent transfers. Defaults to 3.
	Workers int
	// QueueSize is the size of the job queue buffer. Defaults to 64.
	QueueSize int
	// HTTPClient performs the transfers. Defaults to a client with a 5 minute
	// overall timeout.
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// TransferError describes a failed transfer. It matches types.ErrTransfer
// under errors.Is.
type TransferError struct {
	URL        string
	StatusCode int // Zero when no response was received.
	Err        error
}

func (e *TransferError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

func (e *TransferError) Is(target error) bool { return target == types.ErrTransfer }

type job struct {
	ctx  context.Context
	url  string
	dest string
	done chan error
}

// Fetcher is a bounded pool of download workers.
type Fetcher struct {
	opts   Options
	client *http.Client
	log    *logger.Logger
	queue  chan *job
	sf     singleflight.Group
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts a Fetcher with opts.Workers workers.
func New(opts Options) *Fetcher {
	if opts.Workers <= 0 {
		opts.Workers = 3
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	f := &Fetcher{
		opts:   opts,
		client: client,
		log:    opts.Logger.With("component", "fetch"),
		queue:  make(chan *job, opts.QueueSize),
	}
	f.log.Debug("starting fetch workers", "workers", opts.Workers, "base_url", opts.BaseURL)
	for i := range opts.Workers {
		f.wg.Add(1)
		go f.worker(i)
	}
	return f
}

// Close stops accepting requests, lets queued transfers finish, and waits for
// the workers to exit. Idempotent.
func (f *Fetcher) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.queue)
	f.mu.Unlock()
	f.wg.Wait()
}

// URL resolves a CDN-relative path against the base URL.
func (f *Fetcher) URL(remotePath string) string {
	return strings.TrimSuffix(f.opts.BaseURL, "/") + "/" + strings.TrimPrefix(remotePath, "/")
}

// FetchAsync schedules a download of remotePath into dest and returns
// immediately. Requests for a remote path already in flight join that
// transfer and resolve to its destination.
func (f *Fetcher) FetchAsync(ctx context.Context, remotePath, dest string) *Handle {
	url := f.URL(remotePath)
	ch := f.sf.DoChan(remotePath, func() (any, error) {
		return dest, f.submit(ctx, url, dest)
	})
	return newHandle(ch)
}

// FetchDownloadAsync schedules a download of a bulk table file published
// under the downloads path.
func (f *Fetcher) FetchDownloadAsync(ctx context.Context, name, dest string) *Handle {
	return f.FetchAsync(ctx, DownloadsPath+name, dest)
}

func (f *Fetcher) submit(ctx context.Context, url, dest string) error {
	j := &job{ctx: ctx, url: url, dest: dest, done: make(chan error, 1)}

	f.mu.RLock()
	if f.closed {
		f.mu.RUnlock()
		return ErrClosed
	}
	select {
	case f.queue <- j:
	case <-ctx.Done():
		f.mu.RUnlock()
		return ctx.Err()
	}
	f.mu.RUnlock()

	return <-j.done
}

func (f *Fetcher) worker(id int) {
	defer f.wg.Done()
	log := f.log.With("worker", id)
	for j := range f.queue {
		if err := j.ctx.Err(); err != nil {
			j.done <- err
			continue
		}
		start := time.Now()
		n, err := f.transfer(j.ctx, j.url, j.dest)
		if err != nil {
			log.Warn("transfer failed", "url", j.url, "error", err)
		} else {
			log.Debug("transfer complete", "url", j.url, "bytes", n, "duration", time.Since(start))
		}
		j.done <- err
	}
}

// transfer downloads url into a temp file beside dest and renames it into
// place on success.
func (f *Fetcher) transfer(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &TransferError{URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, &TransferError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &TransferError{URL: url, StatusCode: resp.StatusCode}
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, &TransferError{URL: url, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".fetch-*.tmp")
	if err != nil {
		return 0, &TransferError{URL: url, Err: err}
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, resp.Body)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpName, dest)
	}
	if err != nil {
		os.Remove(tmpName)
		return 0, &TransferError{URL: url, Err: err}
	}
	return n, nil
}
