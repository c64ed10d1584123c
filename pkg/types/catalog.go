package types

// Catalog provides read-only lookups over the reference tables.
// Part, Colour and Category return an error wrapping ErrNotFound when the key
// is absent. TryElement returns nil when the (part, colour) pair has no
// element, which is a normal condition.
type Catalog interface {
	Part(id string) (*Part, error)
	Colour(id string) (*Colour, error)
	Category(id string) (*Category, error)
	TryElement(partID, colourID string) *Element
	ElementCount(partID string) int
}
