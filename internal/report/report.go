// Package report turns a resolution result into a JSON document grouped by
// part category and writes it atomically.
package report

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mesh-intelligence/partlabels/internal/logger"
	"github.com/mesh-intelligence/partlabels/internal/resolve"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// DescriptionLength is the longest description placed on a label.
const DescriptionLength = 50

// UncategorizedName names the section for parts whose category is unknown.
const UncategorizedName = "Uncategorized"

// Document is the machine-readable output of one run.
type Document struct {
	Inventory      string     `json:"inventory"`
	RunID          string     `json:"run_id,omitempty"`
	GeneratedAt    time.Time  `json:"generated_at"`
	Groups         int        `json:"groups"`
	Excluded       int        `json:"excluded"`
	WithImage      int        `json:"with_image"`
	Misses         int        `json:"misses"`
	MissingColours []string   `json:"missing_colours"`
	Categories     []Category `json:"categories"`
	Missing        []Item     `json:"missing"`
}

// Category is one section of the document.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item is one label.
type Item struct {
	PartID      string `json:"part_id"`
	Description string `json:"description"`
	ColourID    string `json:"colour_id"`
	ColourName  string `json:"colour_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Image       *Image `json:"image,omitempty"`
}

// Image locates the picture for a label.
type Image struct {
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Source    string `json:"source"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Options configures Build.
type Options struct {
	Inventory string
	RunID     string
	// Thumbnail, when set, returns the thumbnail path for an image path. An
	// empty path means no thumbnail. A failure is logged and the label keeps
	// its full-size image only.
	Thumbnail func(path string) (string, error)
	Logger    *logger.Logger
}

// Build converts res into a Document. Categories are ordered by name; items
// keep the result's order within a category.
func Build(res *resolve.Result, c types.Catalog, opts Options) *Document {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	doc := &Document{
		Inventory:      opts.Inventory,
		RunID:          opts.RunID,
		GeneratedAt:    time.Now().UTC(),
		Groups:         res.Groups,
		Excluded:       res.Excluded,
		WithImage:      res.WithImage,
		Misses:         res.Misses,
		MissingColours: append([]string{}, res.MissingColours...),
		Categories:     []Category{},
		Missing:        []Item{},
	}

	sections := make(map[string]*Category)
	for _, e := range res.Entries {
		item := newItem(e, opts.Thumbnail, log)
		if e.Image == nil {
			doc.Missing = append(doc.Missing, item)
		}

		catID := e.Group.Part().CategoryID
		sec, ok := sections[catID]
		if !ok {
			sec = &Category{ID: catID, Name: UncategorizedName}
			if cat, err := c.Category(catID); err == nil && cat.Name != "" {
				sec.Name = cat.Name
			}
			sections[catID] = sec
		}
		sec.Items = append(sec.Items, item)
	}

	for _, sec := range sections {
		doc.Categories = append(doc.Categories, *sec)
	}
	sort.SliceStable(doc.Categories, func(i, j int) bool {
		a, b := doc.Categories[i], doc.Categories[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return doc
}

func newItem(e resolve.Entry, thumbnail func(string) (string, error), log *logger.Logger) Item {
	part := e.Group.Part()
	item := Item{
		PartID:      part.ID,
		Description: TrimToLength(part.Description, DescriptionLength),
		Quantity:    e.Group.Quantity(),
	}
	if col := e.Group.Colour(); col != nil {
		item.ColourID = col.ID
		item.ColourName = col.Name
	}
	if e.Image == nil {
		return item
	}
	item.Image = &Image{
		Path:   e.Image.Path,
		Width:  e.Image.Width,
		Height: e.Image.Height,
		Source: e.Image.Source,
	}
	if thumbnail != nil {
		t, err := thumbnail(e.Image.Path)
		if err != nil {
			log.Warn("thumbnail failed", "part", part.ID, "path", e.Image.Path, "error", err)
			return item
		}
		item.Image.Thumbnail = t
	}
	return item
}

// TrimToLength shortens s to at most limit bytes, cutting at the last
// whitespace at or before limit. A string with no such whitespace is cut at
// limit.
func TrimToLength(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !unicode.IsSpace(rune(s[cut])) {
		cut--
	}
	if cut == 0 {
		cut = limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
	}
	return strings.TrimSpace(s[:cut])
}
