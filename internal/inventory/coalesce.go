package inventory

import "github.com/mesh-intelligence/partlabels/pkg/types"

// Coalesce turns records into PartColourGroups, one per distinct part
// identifier, in sorted order. A print variant joins the group immediately
// before it when that group shares its base identifier and the base part
// itself is not among the records; when the base part is present, each print
// keeps its own group. The input slice is not modified.
func Coalesce(records []types.Record) []*types.PartColourGroup {
	sorted := append([]types.Record(nil), records...)
	SortRecords(sorted)

	present := make(map[string]bool, len(sorted))
	for _, r := range sorted {
		present[r.Part.ID] = true
	}

	var groups []*types.PartColourGroup
	var current *types.PartColourGroup
	for _, r := range sorted {
		switch {
		case current == nil:
			current = types.NewPartColourGroup(r.Part)
			groups = append(groups, current)
		case current.Part().ID == r.Part.ID:
			// same part in another colour
		case r.Part.IsPrintVariant() &&
			current.BaseID() == r.Part.BaseID &&
			!present[r.Part.BaseID]:
			// print of a base part that is not owned
		default:
			current = types.NewPartColourGroup(r.Part)
			groups = append(groups, current)
		}
		current.AddColour(r.Colour, r.Quantity)
	}
	return groups
}

// Groups sorts the inventory and coalesces it.
func (inv *Inventory) Groups() []*types.PartColourGroup {
	inv.Sort()
	return Coalesce(inv.Entries())
}
