package fetch

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Handle is the pending result of an asynchronous fetch.
type Handle struct {
	done chan struct{}
	path string
	err  error
}

func newHandle(ch <-chan singleflight.Result) *Handle {
	h := &Handle{done: make(chan struct{})}
	go func() {
		r := <-ch
		if p, ok := r.Val.(string); ok {
			h.path = p
		}
		h.err = r.Err
		close(h.done)
	}()
	return h
}

// Done is closed when the transfer has finished, successfully or not.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the transfer finishes or ctx is done and returns the local
// path of the downloaded file.
func (h *Handle) Wait(ctx context.Context) (string, error) {
	select {
	case <-h.done:
		if h.err != nil {
			return "", h.err
		}
		return h.path, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
