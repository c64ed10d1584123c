package inventory

import "github.com/mesh-intelligence/partlabels/pkg/types"

// Diff returns the entries of current whose part identifier and base
// identifier both appear nowhere in previous, in current's order. Colour and
// quantity changes of parts already owned are not reported.
func Diff(current, previous *Inventory) []types.Record {
	known := make(map[string]bool)
	for _, r := range previous.order {
		known[r.Part.ID] = true
		known[r.Part.BaseID] = true
	}
	for _, u := range previous.unknown {
		known[u.PartID] = true
		known[types.BaseID(u.PartID)] = true
	}

	var out []types.Record
	for _, r := range current.order {
		if known[r.Part.ID] || known[r.Part.BaseID] {
			continue
		}
		out = append(out, *r)
	}
	return out
}
