package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/partlabels/pkg/types"
)

func groupIDs(groups []*types.PartColourGroup) []string {
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.Part().ID
	}
	return ids
}

func TestCoalesce(t *testing.T) {
	c := testCatalog(t)

	t.Run("prints merge when the base part is absent", func(t *testing.T) {
		groups := Coalesce([]types.Record{
			record(t, c, "3622pr0005", "4", 2),
			record(t, c, "3622pr0004", "1", 3),
		})
		require.Len(t, groups, 1)
		assert.Equal(t, "3622pr0004", groups[0].Part().ID)
		assert.Equal(t, 5, groups[0].Quantity())
		assert.Equal(t, "1", groups[0].Colour().ID)
	})

	t.Run("prints stay distinct when the base part is present", func(t *testing.T) {
		groups := Coalesce([]types.Record{
			record(t, c, "3001pr0002", "4", 2),
			record(t, c, "3001", "4", 4),
			record(t, c, "3001pr0001", "4", 3),
		})
		assert.Equal(t, []string{"3001", "3001pr0001", "3001pr0002"}, groupIDs(groups))
		assert.Equal(t, 4, groups[0].Quantity())
	})

	t.Run("same part in several colours forms one group", func(t *testing.T) {
		groups := Coalesce([]types.Record{
			record(t, c, "3001", "4", 1),
			record(t, c, "300", "4", 1),
			record(t, c, "3001", "71", 6),
		})
		assert.Equal(t, []string{"300", "3001"}, groupIDs(groups))
		assert.Equal(t, 7, groups[1].Quantity())
		assert.Equal(t, "71", groups[1].Colour().ID)
		assert.Equal(t, []string{"4", "71"}, groups[1].ColourIDs())
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Coalesce(nil))
	})

	t.Run("input is not reordered", func(t *testing.T) {
		in := []types.Record{record(t, c, "3622", "4", 1), record(t, c, "3001", "4", 1)}
		Coalesce(in)
		assert.Equal(t, "3622", in[0].Part.ID)
	})
}

func TestInventoryGroups(t *testing.T) {
	c := testCatalog(t)
	inv := New(c, Options{})
	inv.Add(record(t, c, "3622pr0004", "4", 1))
	inv.Add(record(t, c, "3001", "4", 2))
	inv.Add(record(t, c, "3622pr0005", "4", 1))

	groups := inv.Groups()
	assert.Equal(t, []string{"3001", "3622pr0004"}, groupIDs(groups))
	assert.Equal(t, 2, groups[1].Quantity())
}
