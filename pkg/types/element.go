package types

// Element ties one (part, colour) combination to an externally issued ID.
// Not every (part, colour) pair in an inventory has an Element.
type Element struct {
	ID              string
	PartID          string
	ColourID        string
	DesignID        string
	ElementImageURL string // Optional; only populated from the structured API.
	PartImageURL    string // Optional; only populated from the structured API.
}

// ImageURL returns the preferred image URL for the element: the element image
// when present, otherwise the part image. Empty when neither is known.
func (e *Element) ImageURL() string {
	if e.ElementImageURL != "" {
		return e.ElementImageURL
	}
	return e.PartImageURL
}
