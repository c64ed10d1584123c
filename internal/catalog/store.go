// Package catalog loads the bulk reference tables (colours, categories, parts
// and elements) into an in-memory store and answers lookups against them.
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/partlabels/internal/logger"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

// tables lists the bulk tables in load order: elements reference parts and
// colours, so they load last.
var tables = []struct {
	name    string
	columns int
	read    func(s *Store, cols []string)
}{
	{"colors", 4, (*Store).addColourRow},            // id,name,rgb,is_trans
	{"part_categories", 2, (*Store).addCategoryRow}, // id,name
	{"parts", 4, (*Store).addPartRow},               // part_num,name,part_cat_id,part_material
	{"elements", 4, (*Store).addElementRow},         // element_id,part_num,color_id,design_id
}

// TableNames returns the bulk table names in load order.
func TableNames() []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.name
	}
	return names
}

// Options configures a Store.
type Options struct {
	// TrimLeadingZeros strips leading zeros from part identifiers in the parts
	// and elements tables.
	TrimLeadingZeros bool
	Logger           *logger.Logger
}

type partColour struct {
	partID   string
	colourID string
}

// Store is the in-memory catalog. It is populated once and read-only
// afterwards, so lookups need no locking.
type Store struct {
	opts Options
	log  *logger.Logger

	colours       map[string]*types.Colour
	categories    map[string]*types.Category
	parts         map[string]*types.Part
	partOrder     []string
	elements      map[string]*types.Element
	byPartColour  map[partColour]*types.Element
	elementCounts map[string]int

	backfilledParts   int
	backfilledColours int
}

var _ types.Catalog = (*Store)(nil)

// New returns an empty Store.
func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Store{
		opts:          opts,
		log:           opts.Logger.With("component", "catalog"),
		colours:       make(map[string]*types.Colour),
		categories:    make(map[string]*types.Category),
		parts:         make(map[string]*types.Part),
		elements:      make(map[string]*types.Element),
		byPartColour:  make(map[partColour]*types.Element),
		elementCounts: make(map[string]int),
	}
}

// Load reads the four bulk tables from dir (colors.csv, part_categories.csv,
// parts.csv, elements.csv) in dependency order.
func Load(dir string, opts Options) (*Store, error) {
	s := New(opts)
	for _, t := range tables {
		path := filepath.Join(dir, t.name+".csv")
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		err = s.readTable(f, t.name, t.columns, t.read)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	s.log.Info("catalog loaded",
		"colours", len(s.colours),
		"categories", len(s.categories),
		"parts", len(s.parts),
		"elements", len(s.elements))
	return s, nil
}

// ReadColours reads the colours table (id,name,rgb,is_trans).
func (s *Store) ReadColours(r io.Reader) error {
	return s.readTable(r, "colors", 4, (*Store).addColourRow)
}

// ReadCategories reads the part categories table (id,name).
func (s *Store) ReadCategories(r io.Reader) error {
	return s.readTable(r, "part_categories", 2, (*Store).addCategoryRow)
}

// ReadParts reads the parts table (part_num,name,part_cat_id,part_material).
func (s *Store) ReadParts(r io.Reader) error {
	return s.readTable(r, "parts", 4, (*Store).addPartRow)
}

// ReadElements reads the elements table (element_id,part_num,color_id,design_id).
// Rows that reference a part or colour absent from the catalog insert a stub
// for it; the number of stubs is logged at warn level.
func (s *Store) ReadElements(r io.Reader) error {
	parts, colours := s.backfilledParts, s.backfilledColours
	if err := s.readTable(r, "elements", 4, (*Store).addElementRow); err != nil {
		return err
	}
	if dp, dc := s.backfilledParts-parts, s.backfilledColours-colours; dp > 0 || dc > 0 {
		s.log.Warn("elements reference entries missing from the catalog", "stub_parts", dp, "stub_colours", dc)
	}
	return nil
}

// readTable skips the header line and blank lines and hands each row, split
// into columns, to add.
func (s *Store) readTable(r io.Reader, name string, columns int, add func(*Store, []string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
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
		cols, err := SplitCSV(line, columns)
		if err != nil {
			return fmt.Errorf("reading %s line %d: %w", name, lineNo, err)
		}
		add(s, cols)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning %s: %w", name, err)
	}
	return nil
}

func (s *Store) normalizePartID(id string) string {
	if s.opts.TrimLeadingZeros {
		return types.TrimLeadingZeros(id)
	}
	return id
}

func (s *Store) addColourRow(cols []string) {
	s.colours[cols[0]] = &types.Colour{ID: cols[0], Name: cols[1]}
}

func (s *Store) addCategoryRow(cols []string) {
	s.categories[cols[0]] = &types.Category{ID: cols[0], Name: cols[1]}
}

func (s *Store) addPartRow(cols []string) {
	s.putPart(types.NewPart(s.normalizePartID(cols[0]), cols[1], cols[2]))
}

func (s *Store) putPart(p *types.Part) {
	if _, ok := s.parts[p.ID]; !ok {
		s.partOrder = append(s.partOrder, p.ID)
	}
	s.parts[p.ID] = p
}

func (s *Store) addElementRow(cols []string) {
	partID := s.normalizePartID(cols[1])
	e := &types.Element{ID: cols[0], PartID: partID, ColourID: cols[2], DesignID: cols[3]}

	if _, ok := s.parts[partID]; !ok {
		s.putPart(types.NewPart(partID, "", ""))
		s.backfilledParts++
	}
	if _, ok := s.colours[e.ColourID]; !ok {
		s.colours[e.ColourID] = &types.Colour{ID: e.ColourID}
		s.backfilledColours++
	}

	s.elements[e.ID] = e
	s.byPartColour[partColour{partID, e.ColourID}] = e
	s.elementCounts[partID]++
}

// Part returns the part with the given identifier.
func (s *Store) Part(id string) (*types.Part, error) {
	p, ok := s.parts[id]
	if !ok {
		return nil, fmt.Errorf("looking up part %s: %w", id, types.ErrNotFound)
	}
	return p, nil
}

// Colour returns the colour with the given identifier.
func (s *Store) Colour(id string) (*types.Colour, error) {
	c, ok := s.colours[id]
	if !ok {
		return nil, fmt.Errorf("looking up colour %s: %w", id, types.ErrNotFound)
	}
	return c, nil
}

// Category returns the category with the given identifier.
func (s *Store) Category(id string) (*types.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("looking up category %s: %w", id, types.ErrNotFound)
	}
	return c, nil
}

// Element returns the element for a (part, colour) pair.
func (s *Store) Element(partID, colourID string) (*types.Element, error) {
	e := s.TryElement(partID, colourID)
	if e == nil {
		return nil, fmt.Errorf("looking up element for part %s colour %s: %w", partID, colourID, types.ErrNotFound)
	}
	return e, nil
}

// TryElement returns the element for a (part, colour) pair, or nil.
func (s *Store) TryElement(partID, colourID string) *types.Element {
	return s.byPartColour[partColour{partID, colourID}]
}

// ElementByID returns the element with the given element identifier.
func (s *Store) ElementByID(id string) (*types.Element, error) {
	e, ok := s.elements[id]
	if !ok {
		return nil, fmt.Errorf("looking up element %s: %w", id, types.ErrNotFound)
	}
	return e, nil
}

// ElementCount returns how many elements reference the part; zero when none do.
func (s *Store) ElementCount(partID string) int {
	return s.elementCounts[partID]
}

// TryPartByDescription returns the first part, in load order, whose
// description matches case-insensitively, or nil.
func (s *Store) TryPartByDescription(description string) *types.Part {
	for _, id := range s.partOrder {
		if p := s.parts[id]; strings.EqualFold(p.Description, description) {
			return p
		}
	}
	return nil
}

// TryPartByIDPrefix returns the first part, in load order, whose identifier
// starts with prefix, or nil.
func (s *Store) TryPartByIDPrefix(prefix string) *types.Part {
	for _, id := range s.partOrder {
		if strings.HasPrefix(id, prefix) {
			return s.parts[id]
		}
	}
	return nil
}

// Backfilled returns how many stub parts and colours were inserted for
// element rows that referenced unknown entries.
func (s *Store) Backfilled() (parts, colours int) {
	return s.backfilledParts, s.backfilledColours
}

// Stats returns the number of colours, categories, parts and elements.
func (s *Store) Stats() (colours, categories, parts, elements int) {
	return len(s.colours), len(s.categories), len(s.parts), len(s.elements)
}
