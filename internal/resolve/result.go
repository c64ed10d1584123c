package resolve

import (
	"time"

	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// Entry pairs a group with its resolved image. Image is nil for a group
// without an image that belongs in the missing report.
type Entry struct {
	Group *types.PartColourGroup
	Image *types.ImageResolution
}

// Counters summarize a run.
type Counters struct {
	Groups    int // groups produced by coalescing
	Excluded  int // groups with quantity 1 or less
	WithImage int
	Misses    int // searched groups without an image, reported or not
}

// Result is the outcome of resolving one inventory.
type Result struct {
	// Entries holds every hit and every reported miss, in group order.
	Entries []Entry
	// Important holds the groups that passed the inclusion policy.
	Important []*types.PartColourGroup
	// Missing holds the groups in the missing report.
	Missing []*types.PartColourGroup
	// MissingColours lists the colours without an archive this run.
	MissingColours []string
	Counters
}

// Run returns the summary of the result for the index.
func (r *Result) Run(inventoryName string) types.Run {
	return types.Run{
		Inventory: inventoryName,
		CreatedAt: time.Now().UTC(),
		Groups:    r.Groups,
		Excluded:  r.Excluded,
		WithImage: r.WithImage,
		Misses:    r.Misses,
	}
}

// Records converts the entries into index records.
func (r *Result) Records() []types.ResolutionRecord {
	out := make([]types.ResolutionRecord, 0, len(r.Entries))
	for _, e := range r.Entries {
		rec := types.ResolutionRecord{
			PartID:    e.Group.Part().ID,
			Quantity:  e.Group.Quantity(),
			Important: true,
			Missing:   e.Image == nil,
		}
		if c := e.Group.Colour(); c != nil {
			rec.ColourID = c.ID
		}
		if e.Image != nil {
			rec.Path = e.Image.Path
			rec.Width = e.Image.Width
			rec.Height = e.Image.Height
			rec.Source = e.Image.Source
		}
		out = append(out, rec)
	}
	return out
}
