package inventory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/partlabels/internal/catalog"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

func testCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	s := catalog.New(catalog.Options{TrimLeadingZeros: true})
	require.NoError(t, s.ReadColours(strings.NewReader(`id,name,rgb,is_trans
0,Black,05131D,f
1,Blue,0055BF,f
4,Red,C91A09,f
71,Light Bluish Gray,A0A5A9,f
`)))
	require.NoError(t, s.ReadCategories(strings.NewReader("id,name\n11,Bricks\n")))
	require.NoError(t, s.ReadParts(strings.NewReader(`part_num,name,part_cat_id,part_material
3001,Brick 2 x 4,11,Plastic
3001pr0001,Brick 2 x 4 with Print A,11,Plastic
3001pr0002,Brick 2 x 4 with Print B,11,Plastic
3622,Brick 1 x 3,11,Plastic
3622pr0004,Brick 1 x 3 with Print,11,Plastic
3622pr0005,Brick 1 x 3 with Other Print,11,Plastic
2454a,Brick 1 x 2 x 5,11,Plastic
300,Small Part,11,Plastic
`)))
	require.NoError(t, s.ReadElements(strings.NewReader(`element_id,part_num,color_id,design_id
300121,3001,4,3001
`)))
	return s
}

func record(t *testing.T, c *catalog.Store, partID, colourID string, qty int) types.Record {
	t.Helper()
	p, err := c.Part(partID)
	require.NoError(t, err)
	col, err := c.Colour(colourID)
	require.NoError(t, err)
	return types.Record{Part: p, Colour: col, Quantity: qty}
}

func TestAddMergesDuplicates(t *testing.T) {
	c := testCatalog(t)
	inv := New(c, Options{})
	inv.Add(record(t, c, "3001", "4", 3))
	inv.Add(record(t, c, "3001", "4", 2))

	entries := inv.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].Quantity)
	require.NotNil(t, entries[0].Element)
	assert.Equal(t, "300121", entries[0].Element.ID)
	assert.Equal(t, 1, inv.Len())
}

func TestRead(t *testing.T) {
	c := testCatalog(t)

	t.Run("parses rows, trims ids and merges", func(t *testing.T) {
		inv := New(c, Options{TrimLeadingZeros: true})
		err := inv.Read(strings.NewReader("Part,Color,Quantity\n3001,4,3\n0300,71,2\n\n3001,4,2\n3001,1,6\n"))
		require.NoError(t, err)
		assert.Equal(t, 3, inv.Len())
		assert.Equal(t, 2, inv.ColoursForPart("3001"))
		assert.Equal(t, 0, inv.ColoursForPart("3622"))
		require.NotNil(t, inv.PartForID("300"))
		assert.Nil(t, inv.PartForID("3622"))
		assert.Equal(t, []string{"1", "4", "71"}, inv.ColourIDs())
		assert.Equal(t, 5, inv.Entries()[0].Quantity)
	})

	t.Run("unknown part is fatal", func(t *testing.T) {
		inv := New(c, Options{})
		err := inv.Read(strings.NewReader("Part,Color,Quantity\n9999,4,1\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.Contains(t, err.Error(), "9999")
	})

	t.Run("unknown colour is fatal", func(t *testing.T) {
		inv := New(c, Options{})
		err := inv.Read(strings.NewReader("Part,Color,Quantity\n3001,777,1\n"))
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("unknown rows recorded when skipping", func(t *testing.T) {
		inv := New(c, Options{SkipUnknown: true})
		require.NoError(t, inv.Read(strings.NewReader("Part,Color,Quantity\n9999,4,1\n3001,4,1\n")))
		assert.Equal(t, 1, inv.Len())
		assert.Equal(t, []UnknownRow{{PartID: "9999", ColourID: "4", Quantity: 1}}, inv.Unknown())
	})

	t.Run("bad quantity is a parse error", func(t *testing.T) {
		inv := New(c, Options{})
		err := inv.Read(strings.NewReader("Part,Color,Quantity\n3001,4,many\n"))
		assert.ErrorIs(t, err, types.ErrParse)
	})

	t.Run("wrong column count is a parse error", func(t *testing.T) {
		inv := New(c, Options{})
		err := inv.Read(strings.NewReader("Part,Color,Quantity\n3001,4\n"))
		assert.ErrorIs(t, err, types.ErrParse)
	})
}

func TestReadFile(t *testing.T) {
	c := testCatalog(t)
	path := filepath.Join(t.TempDir(), "parts.csv")
	require.NoError(t, os.WriteFile(path, []byte("Part,Color,Quantity\r\n3001,4,3\r\n"), 0o644))

	inv := New(c, Options{})
	require.NoError(t, inv.ReadFile(path))
	assert.Equal(t, 1, inv.Len())

	assert.Error(t, New(c, Options{}).ReadFile(filepath.Join(t.TempDir(), "absent.csv")))
}

func TestSort(t *testing.T) {
	c := testCatalog(t)
	inv := New(c, Options{})
	for _, id := range []string{"3622pr0004", "2454a", "3001pr0001", "3622", "300", "3001"} {
		inv.Add(record(t, c, id, "4", 1))
	}
	inv.Sort()

	var got []string
	for _, e := range inv.Entries() {
		got = append(got, e.Part.ID)
	}
	// 300 < 3001 < 3622 numerically; 2454a compares by string with its
	// neighbours.
	assert.Equal(t, []string{"2454a", "300", "3001", "3001pr0001", "3622", "3622pr0004"}, got)
}
