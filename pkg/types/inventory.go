package types

// Record is one resolved inventory line: a part in a colour with a quantity.
// Element is nil when the catalog has no element for the pair.
type Record struct {
	Part     *Part
	Colour   *Colour
	Element  *Element
	Quantity int
}

// PartColourGroup is the unit of image resolution: one lead part (plus any
// print variants coalesced into it) and the quantity observed per colour.
type PartColourGroup struct {
	part        *Part
	quantities  map[string]int
	colours     map[string]*Colour
	order       []string // colour IDs in first-seen order
	preferred   *Colour
	preferredQt int
}

// NewPartColourGroup returns an empty group led by part.
func NewPartColourGroup(part *Part) *PartColourGroup {
	return &PartColourGroup{
		part:       part,
		quantities: make(map[string]int),
		colours:    make(map[string]*Colour),
	}
}

// Part returns the lead part of the group.
func (g *PartColourGroup) Part() *Part {
	return g.part
}

// BaseID returns the base identifier shared by every part in the group.
func (g *PartColourGroup) BaseID() string {
	return g.part.BaseID
}

// AddColour adds quantity to colour. The preferred colour becomes colour when
// its cumulative quantity is strictly greater than the current preferred
// quantity, so ties keep the first maximum seen.
func (g *PartColourGroup) AddColour(colour *Colour, quantity int) {
	if _, ok := g.quantities[colour.ID]; !ok {
		g.order = append(g.order, colour.ID)
		g.colours[colour.ID] = colour
	}
	q := g.quantities[colour.ID] + quantity
	g.quantities[colour.ID] = q
	if g.preferred == nil || q > g.preferredQt {
		g.preferred = colour
		g.preferredQt = q
	}
}

// SetColour overrides the preferred colour, typically with the colour an
// image was actually found in.
func (g *PartColourGroup) SetColour(colour *Colour) {
	g.preferred = colour
	g.preferredQt = g.quantities[colour.ID]
}

// Colour returns the preferred colour, or nil for an empty group.
func (g *PartColourGroup) Colour() *Colour {
	return g.preferred
}

// Quantity returns the total quantity across all colours.
func (g *PartColourGroup) Quantity() int {
	total := 0
	for _, q := range g.quantities {
		total += q
	}
	return total
}

// ColourQuantity returns the quantity recorded for a colour ID.
func (g *PartColourGroup) ColourQuantity(colourID string) int {
	return g.quantities[colourID]
}

// ColourIDs returns the colour IDs of the group in first-seen order.
func (g *PartColourGroup) ColourIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}
