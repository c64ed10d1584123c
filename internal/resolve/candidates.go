package resolve

import "github.com/mesh-intelligence/partlabels/pkg/types"

// candidateColours returns the colours to search for a group, in order.
// Black parts outside the prefer-black categories, and parts whose colour
// has no archive, search the fallback order only; everything else tries its
// own colour first.
func candidateColours(g *types.PartColourGroup, p types.Policy, missing func(colourID string) bool) []string {
	c := g.Colour()
	var out []string
	useOwn := c != nil &&
		!(c.ID == p.BlackColourID && !p.PrefersBlack(g.Part().CategoryID)) &&
		!missing(c.ID)
	if useOwn {
		out = append(out, c.ID)
	}
	for _, id := range p.FallbackColours {
		if useOwn && id == c.ID {
			continue
		}
		out = append(out, id)
	}
	return out
}

// candidateIDs returns the identifiers to look for in an archive: the part's
// own identifier, its remapped identifier, then its base identifier when
// the category allows simplification.
func candidateIDs(part *types.Part, p types.Policy) []string {
	ids := []string{part.ID}
	if alt, ok := p.IDRemap[part.ID]; ok && alt != part.ID {
		ids = append(ids, alt)
	}
	if part.IsPrintVariant() && p.Simplifiable(part.CategoryID) {
		ids = append(ids, part.BaseID)
	}
	return ids
}
