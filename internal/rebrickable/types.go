package rebrickable

// Part is a part as returned by the parts endpoints.
type Part struct {
	PartNum    string `json:"part_num"`
	Name       string `json:"name"`
	PartCatID  int    `json:"part_cat_id"`
	YearFrom   int    `json:"year_from"`
	YearTo     int    `json:"year_to"`
	PartURL    string `json:"part_url"`
	PartImgURL string `json:"part_img_url"`
	PrintOf    string `json:"print_of"`
}

// Colour is a colour as returned by the colors endpoint.
type Colour struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	RGB     string `json:"rgb"`
	IsTrans bool   `json:"is_trans"`
}

// Element is an element as returned by the elements endpoint. Either image
// URL may be empty.
type Element struct {
	ElementID     string `json:"element_id"`
	DesignID      string `json:"design_id"`
	Part          Part   `json:"part"`
	Colour        Colour `json:"color"`
	ElementImgURL string `json:"element_img_url"`
	PartImgURL    string `json:"part_img_url"`
}

// ImageURL returns the element image when present and the part image
// otherwise.
func (e Element) ImageURL() string {
	if e.ElementImgURL != "" {
		return e.ElementImgURL
	}
	return e.PartImgURL
}

// page is one page of a list endpoint.
type page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []T    `json:"results"`
}
