package types

// Colour is a finish variant, independent of part shape. Colour IDs are the
// join key for archive names and extracted image names.
type Colour struct {
	ID   string
	Name string
}

// Category groups parts for display and policy lookups.
type Category struct {
	ID   string
	Name string
}
