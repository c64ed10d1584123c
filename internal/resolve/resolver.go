// Package resolve finds the best local image for every part group of an
// inventory. Hand-placed images win; otherwise the colour archives are
// searched in a fixed colour and identifier order and the first hit is
// extracted into the local image cache.
package resolve

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/partlabels/internal/archive"
	"github.com/mesh-intelligence/partlabels/internal/fetch"
	"github.com/mesh-intelligence/partlabels/internal/inventory"
	"github.com/mesh-intelligence/partlabels/internal/logger"
	"github.com/mesh-intelligence/partlabels/internal/paths"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// Default image sizes used when an image header cannot be read.
const (
	DefaultHandPlacedSize = 250
	DefaultArchiveSize    = 500
)

// ArchiveFetcher requests the colour archives of a run.
type ArchiveFetcher interface {
	FetchArchives(ctx context.Context, colourIDs []string, dir string, knownMissing func(string) bool) (*fetch.ArchiveBatch, error)
}

// Options configures a Resolver.
type Options struct {
	DataDir string
	Policy  types.Policy
	Logger  *logger.Logger
}

// Resolver maps part groups to images.
type Resolver struct {
	catalog types.Catalog
	policy  types.Policy
	layout  paths.Layout
	log     *logger.Logger
}

// New returns a Resolver that looks up colours in c.
func New(c types.Catalog, opts Options) *Resolver {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Resolver{
		catalog: c,
		policy:  opts.Policy,
		layout:  paths.Layout{Root: opts.DataDir},
		log:     opts.Logger.With("component", "resolve"),
	}
}

// Run requests the archives for every inventory colour and every fallback
// colour, waits for all of them, and then resolves the coalesced inventory.
// No archive is searched before the whole batch has completed.
func (r *Resolver) Run(ctx context.Context, inv *inventory.Inventory, f ArchiveFetcher) (*Result, error) {
	if err := r.layout.Ensure(); err != nil {
		return nil, fmt.Errorf("preparing data directory: %w", err)
	}

	colours := inv.ColourIDs()
	seen := make(map[string]bool, len(colours))
	for _, id := range colours {
		seen[id] = true
	}
	for _, id := range r.policy.FallbackColours {
		if !seen[id] {
			seen[id] = true
			colours = append(colours, id)
		}
	}

	r.log.Info("requesting colour archives", "colours", len(colours), "entries", inv.Len())
	batch, err := f.FetchArchives(ctx, colours, r.layout.Archives(), r.policy.KnownMissing)
	if err != nil {
		return nil, err
	}
	set, err := batch.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("waiting for colour archives: %w", err)
	}
	if missing := set.Missing(); len(missing) > 0 {
		r.log.Info("colours without archives", "colours", missing)
	}

	lib := archive.NewLibrary(set, r.log)
	defer lib.Close()

	return r.Resolve(inv.Groups(), lib, set)
}

// MissingSet reports the colours that have no archive this run.
type MissingSet interface {
	IsMissing(colourID string) bool
	Missing() []string
}

// Resolve searches an image for every included group in order.
func (r *Resolver) Resolve(groups []*types.PartColourGroup, lib *archive.Library, missing MissingSet) (*Result, error) {
	res := &Result{MissingColours: missing.Missing()}

	for _, g := range groups {
		res.Groups++
		if g.Quantity() <= 1 {
			res.Excluded++
		}
		if !r.policy.Included(g) {
			continue
		}
		res.Important = append(res.Important, g)

		img, err := r.find(g, lib, missing.IsMissing)
		if err != nil {
			return nil, err
		}
		if img != nil {
			res.WithImage++
			res.Entries = append(res.Entries, Entry{Group: g, Image: img})
			continue
		}

		res.Misses++
		if r.policy.ReportMissing(g) {
			r.log.Info("no image found", "part", g.Part().ID, "colour", colourID(g))
			res.Entries = append(res.Entries, Entry{Group: g})
			res.Missing = append(res.Missing, g)
		}
	}

	r.log.Info("resolution complete",
		"groups", res.Groups,
		"important", len(res.Important),
		"quantity_one_or_less", res.Excluded,
		"with_image", res.WithImage,
		"misses", res.Misses,
		"reported_missing", len(res.Missing))
	return res, nil
}

func (r *Resolver) find(g *types.PartColourGroup, lib *archive.Library, missing func(string) bool) (*types.ImageResolution, error) {
	part := g.Part()

	img, err := r.handPlaced(part)
	if err != nil || img != nil {
		return img, err
	}

	ids := candidateIDs(part, r.policy)
	for _, colour := range candidateColours(g, r.policy, missing) {
		if !lib.Available(colour) {
			continue
		}
		for _, id := range ids {
			entry, ok := lib.Lookup(colour, id+".png")
			if !ok {
				continue
			}
			g.SetColour(r.colour(colour))
			dest, err := paths.SafeJoin(r.layout.Root, paths.LocalImageDirName+"/"+colour+"_"+part.ID+".png")
			if err != nil {
				return nil, err
			}
			wrote, err := archive.Extract(entry, dest)
			if err != nil {
				return nil, err
			}
			if wrote {
				r.log.Debug("extracted image", "part", part.ID, "colour", colour, "entry", entry.Name, "path", dest)
			}
			w, h := r.dimensions(dest, DefaultArchiveSize)
			return &types.ImageResolution{Path: dest, Width: w, Height: h, Source: types.SourceArchive, ColourID: colour}, nil
		}
	}
	return nil, nil
}

// handPlaced returns a hand-placed image for the part, copying it into the
// local image cache on first use.
func (r *Resolver) handPlaced(part *types.Part) (*types.ImageResolution, error) {
	for _, ext := range []string{".jpg", ".png"} {
		name := part.ID + ext
		src, err := paths.SafeJoin(r.layout.Root, paths.HandPlacedDirName+"/"+name)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(src)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		dest, err := paths.SafeJoin(r.layout.Root, paths.LocalImageDirName+"/"+name)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(dest); err != nil {
			r.log.Debug("copying hand-placed image", "src", src, "dest", dest)
			if err := copyFile(src, dest); err != nil {
				return nil, fmt.Errorf("copying hand-placed image %s: %w", src, err)
			}
		}
		w, h := r.dimensions(dest, DefaultHandPlacedSize)
		return &types.ImageResolution{Path: dest, Width: w, Height: h, Source: types.SourceHandPlaced}, nil
	}
	return nil, nil
}

func (r *Resolver) colour(id string) *types.Colour {
	c, err := r.catalog.Colour(id)
	if err != nil {
		r.log.Debug("fallback colour not in catalog", "colour", id)
		return &types.Colour{ID: id}
	}
	return c
}

// dimensions reads the width and height from the image header, falling back
// to def×def when the header cannot be decoded.
func (r *Resolver) dimensions(path string, def int) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		r.log.Warn("cannot open image, using default size", "path", path, "error", err)
		return def, def
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		r.log.Warn("cannot read image header, using default size", "path", path, "error", err)
		return def, def
	}
	return cfg.Width, cfg.Height
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".copy-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	_, err = io.Copy(tmp, in)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpName, dest)
	}
	if err != nil {
		os.Remove(tmpName)
	}
	return err
}

func colourID(g *types.PartColourGroup) string {
	if c := g.Colour(); c != nil {
		return c.ID
	}
	return ""
}
