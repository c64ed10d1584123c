// Package inventory reads a parts inventory, merges duplicate (part, colour)
// records, orders the result and coalesces it into the groups that image
// resolution works on.
package inventory

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/partlabels/internal/catalog"
	"github.com/mesh-intelligence/partlabels/internal/logger"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// Options configures an Inventory.
type Options struct {
	// TrimLeadingZeros strips leading zeros from part identifiers read from
	// the inventory file. It must match the catalog setting.
	TrimLeadingZeros bool
	// SkipUnknown records rows whose part or colour is not in the catalog
	// instead of failing the read.
	SkipUnknown bool
	Logger      *logger.Logger
}

// UnknownRow is an inventory row that could not be matched to the catalog.
type UnknownRow struct {
	PartID   string
	ColourID string
	Quantity int
}

type cellKey struct {
	partID   string
	colourID string
}

// Inventory accumulates records keyed by (part, colour).
type Inventory struct {
	catalog types.Catalog
	opts    Options
	log     *logger.Logger

	cells   map[cellKey]*types.Record
	order   []*types.Record
	byPart  map[string][]*types.Record
	unknown []UnknownRow
}

// New returns an empty Inventory that resolves entries against c.
func New(c types.Catalog, opts Options) *Inventory {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Inventory{
		catalog: c,
		opts:    opts,
		log:     opts.Logger.With("component", "inventory"),
		cells:   make(map[cellKey]*types.Record),
		byPart:  make(map[string][]*types.Record),
	}
}

// ReadFile reads an inventory file. See Read.
func (inv *Inventory) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if err := inv.Read(f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// Read parses part,colour,quantity rows after a header line and adds each
// one. A part or colour missing from the catalog fails the read with an error
// wrapping types.ErrNotFound unless SkipUnknown is set.
func (inv *Inventory) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols, err := catalog.SplitCSV(line, 3)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := inv.addRow(cols); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning inventory: %w", err)
	}
	return nil
}

func (inv *Inventory) addRow(cols []string) error {
	partID := strings.TrimSpace(cols[0])
	if inv.opts.TrimLeadingZeros {
		partID = types.TrimLeadingZeros(partID)
	}
	colourID := strings.TrimSpace(cols[1])
	qty, err := strconv.Atoi(strings.TrimSpace(cols[2]))
	if err != nil {
		return fmt.Errorf("parsing quantity %q for part %s colour %s: %w", cols[2], partID, colourID, types.ErrParse)
	}

	part, perr := inv.catalog.Part(partID)
	colour, cerr := inv.catalog.Colour(colourID)
	if perr != nil || cerr != nil {
		if inv.opts.SkipUnknown {
			inv.log.Warn("skipping inventory row not in catalog", "part", partID, "colour", colourID, "quantity", qty)
			inv.unknown = append(inv.unknown, UnknownRow{PartID: partID, ColourID: colourID, Quantity: qty})
			return nil
		}
		if perr != nil {
			return fmt.Errorf("resolving part %s colour %s: %w", partID, colourID, perr)
		}
		return fmt.Errorf("resolving part %s colour %s: %w", partID, colourID, cerr)
	}

	inv.Add(types.Record{Part: part, Colour: colour, Quantity: qty})
	return nil
}

// Add merges a record. A (part, colour) pair already present has its
// quantity summed in place; a new pair is stored with the catalog element
// for the pair, if any.
func (inv *Inventory) Add(rec types.Record) {
	key := cellKey{rec.Part.ID, rec.Colour.ID}
	if cell, ok := inv.cells[key]; ok {
		cell.Quantity += rec.Quantity
		return
	}
	cell := &types.Record{
		Part:     rec.Part,
		Colour:   rec.Colour,
		Element:  inv.catalog.TryElement(rec.Part.ID, rec.Colour.ID),
		Quantity: rec.Quantity,
	}
	inv.cells[key] = cell
	inv.order = append(inv.order, cell)
	inv.byPart[rec.Part.ID] = append(inv.byPart[rec.Part.ID], cell)
}

// Entries returns a copy of the merged records in their current order:
// first-seen order, or sorted order after Sort.
func (inv *Inventory) Entries() []types.Record {
	out := make([]types.Record, len(inv.order))
	for i, cell := range inv.order {
		out[i] = *cell
	}
	return out
}

// Sort orders the entries by base identifier (numerically when both are
// numeric), then by full identifier. Equal keys keep their relative order.
func (inv *Inventory) Sort() {
	sort.SliceStable(inv.order, func(i, j int) bool {
		return compareParts(inv.order[i].Part, inv.order[j].Part) < 0
	})
}

// SortRecords sorts records in place with the same ordering as Sort.
func SortRecords(records []types.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return compareParts(records[i].Part, records[j].Part) < 0
	})
}

func compareParts(a, b *types.Part) int {
	if a.NumericID != nil && b.NumericID != nil {
		switch {
		case *a.NumericID < *b.NumericID:
			return -1
		case *a.NumericID > *b.NumericID:
			return 1
		}
	} else if c := strings.Compare(a.BaseID, b.BaseID); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Len returns the number of distinct (part, colour) entries.
func (inv *Inventory) Len() int {
	return len(inv.order)
}

// ColoursForPart returns how many colours the part appears in; zero when the
// part is absent.
func (inv *Inventory) ColoursForPart(partID string) int {
	return len(inv.byPart[partID])
}

// PartForID returns the part with the identifier, or nil when absent.
func (inv *Inventory) PartForID(partID string) *types.Part {
	cells := inv.byPart[partID]
	if len(cells) == 0 {
		return nil
	}
	return cells[0].Part
}

// ColourIDs returns the distinct colour identifiers in sorted order.
func (inv *Inventory) ColourIDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, cell := range inv.order {
		if !seen[cell.Colour.ID] {
			seen[cell.Colour.ID] = true
			out = append(out, cell.Colour.ID)
		}
	}
	sort.Strings(out)
	return out
}

// Unknown returns the rows skipped under SkipUnknown.
func (inv *Inventory) Unknown() []UnknownRow {
	return append([]UnknownRow(nil), inv.unknown...)
}
