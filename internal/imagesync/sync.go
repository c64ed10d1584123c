// Package imagesync downloads the part images the structured API names into
// the data directory and records them in the index.
package imagesync

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/partlabels/internal/fetch"
	"github.com/mesh-intelligence/partlabels/internal/logger"
	"github.com/mesh-intelligence/partlabels/internal/paths"
	"github.com/mesh-intelligence/partlabels/internal/rebrickable"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// PartSource returns API parts for part identifiers.
type PartSource interface {
	FetchParts(ctx context.Context, ids []string) ([]rebrickable.Part, error)
}

// Downloader fetches a CDN-relative path to a local destination.
type Downloader interface {
	FetchAsync(ctx context.Context, remotePath, dest string) *fetch.Handle
}

// Options configures a Syncer.
type Options struct {
	DataDir    string
	CDNBaseURL string
	Policy     types.Policy
	Logger     *logger.Logger
}

// Stats counts the outcome of a sync.
type Stats struct {
	Parts      int // parts requested from the API
	Images     int // distinct image URLs considered
	Indexed    int // already in the index
	Foreign    int // outside the CDN
	Existing   int // on disk but not yet indexed
	Downloaded int
	Failed     int
}

// Syncer ties the API, the fetcher and the index together.
type Syncer struct {
	api   PartSource
	dl    Downloader
	index types.Index
	opts  Options
	log   *logger.Logger
}

// New returns a Syncer.
func New(api PartSource, dl Downloader, index types.Index, opts Options) *Syncer {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.CDNBaseURL == "" {
		opts.CDNBaseURL = types.DefaultCDNBaseURL
	}
	return &Syncer{
		api:   api,
		dl:    dl,
		index: index,
		opts:  opts,
		log:   opts.Logger.With("component", "imagesync"),
	}
}

// Sync fetches the images of parts that are not yet indexed. Parts in ignored
// categories are skipped. Every download is awaited before Sync returns; a
// failed download is logged and counted, an unsafe derived path is fatal.
func (s *Syncer) Sync(ctx context.Context, parts []*types.Part) (Stats, error) {
	var st Stats

	ids := s.partIDs(parts)
	st.Parts = len(ids)
	if len(ids) == 0 {
		return st, nil
	}

	indexed, err := s.index.LocalImages()
	if err != nil {
		return st, fmt.Errorf("loading indexed images: %w", err)
	}

	apiParts, err := s.api.FetchParts(ctx, ids)
	if err != nil {
		return st, err
	}

	urls := make(map[string]bool)
	for _, p := range apiParts {
		if p.PartImgURL == "" || s.ignored(strconv.Itoa(p.PartCatID)) {
			continue
		}
		urls[p.PartImgURL] = true
	}
	st.Images = len(urls)

	sorted := make([]string, 0, len(urls))
	for u := range urls {
		if _, ok := indexed[u]; ok {
			st.Indexed++
			continue
		}
		if !strings.HasPrefix(u, s.opts.CDNBaseURL) {
			s.log.Info("not fetching image outside the CDN", "url", u)
			st.Foreign++
			continue
		}
		sorted = append(sorted, u)
	}
	sort.Strings(sorted)

	type pending struct {
		url, rel string
		handle   *fetch.Handle
	}
	var waits []pending
	for _, u := range sorted {
		rel := strings.TrimPrefix(u, s.opts.CDNBaseURL)
		dest, err := paths.SafeJoin(s.opts.DataDir, rel)
		if err != nil {
			return st, fmt.Errorf("deriving local path for %s: %w", u, err)
		}
		if info, err := os.Stat(dest); err == nil && info.Mode().IsRegular() {
			s.log.Debug("image already on disk", "url", u)
			if err := s.index.PutLocalImage(u, rel); err != nil {
				return st, err
			}
			st.Existing++
			continue
		}
		waits = append(waits, pending{url: u, rel: rel, handle: s.dl.FetchAsync(ctx, rel, dest)})
	}

	if len(waits) > 0 {
		s.log.Info("waiting for image downloads", "count", len(waits))
	}
	for _, w := range waits {
		if _, err := w.handle.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return st, ctx.Err()
			}
			s.log.Warn("image download failed", "url", w.url, "error", err)
			st.Failed++
			continue
		}
		if err := s.index.PutLocalImage(w.url, w.rel); err != nil {
			return st, err
		}
		st.Downloaded++
	}

	s.log.Info("image sync complete",
		"parts", st.Parts, "images", st.Images, "indexed", st.Indexed,
		"downloaded", st.Downloaded, "existing", st.Existing, "failed", st.Failed)
	return st, nil
}

func (s *Syncer) partIDs(parts []*types.Part) []string {
	seen := make(map[string]bool, len(parts))
	var ids []string
	for _, p := range parts {
		if p == nil || seen[p.ID] || s.ignored(p.CategoryID) {
			continue
		}
		seen[p.ID] = true
		ids = append(ids, p.ID)
	}
	return ids
}

func (s *Syncer) ignored(categoryID string) bool {
	for _, c := range s.opts.Policy.IgnoreCategories {
		if c == categoryID {
			return true
		}
	}
	return false
}
