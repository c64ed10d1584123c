package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/partlabels/pkg/types"
)

const (
	coloursCSV = `id,name,rgb,is_trans
0,Black,05131D,f
4,Red,C91A09,f
71,Light Bluish Gray,A0A5A9,f
`
	categoriesCSV = `id,name
11,Bricks
53,Technic Pins
`
	partsCSV = `part_num,name,part_cat_id,part_material
3001,"Brick 2 x 4",11,Plastic
3622pr0004,"Brick 1 x 3 with ""Print""",11,Plastic
02780,"Technic Pin with Friction, Ridges",53,Plastic
`
	elementsCSV = `element_id,part_num,color_id,design_id
300121,3001,4,3001

300126,3001,0,3001
4121715,02780,0,2780
6000001,99999,1234,99999
`
)

func writeTables(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"colors.csv":          coloursCSV,
		"part_categories.csv": categoriesCSV,
		"parts.csv":           partsCSV,
		"elements.csv":        elementsCSV,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	s, err := Load(writeTables(t), Options{TrimLeadingZeros: true})
	require.NoError(t, err)

	colours, categories, parts, elements := s.Stats()
	assert.Equal(t, 4, colours, "includes the backfilled colour")
	assert.Equal(t, 2, categories)
	assert.Equal(t, 4, parts, "includes the backfilled part")
	assert.Equal(t, 4, elements)

	bp, bc := s.Backfilled()
	assert.Equal(t, 1, bp)
	assert.Equal(t, 1, bc)

	p, err := s.Part("3001")
	require.NoError(t, err)
	assert.Equal(t, "Brick 2 x 4", p.Description)
	assert.Equal(t, "11", p.CategoryID)

	p, err = s.Part("3622pr0004")
	require.NoError(t, err)
	assert.Equal(t, "3622", p.BaseID)
	assert.Equal(t, "Brick 1 x 3 with Print", p.Description)

	p, err = s.Part("2780")
	require.NoError(t, err, "leading zeros trimmed in the parts table")
	assert.Equal(t, "Technic Pin with Friction, Ridges", p.Description)

	e, err := s.Element("2780", "0")
	require.NoError(t, err, "leading zeros trimmed in the elements table")
	assert.Equal(t, "4121715", e.ID)

	stub, err := s.Part("99999")
	require.NoError(t, err)
	assert.Empty(t, stub.Description)
	c, err := s.Colour("1234")
	require.NoError(t, err)
	assert.Empty(t, c.Name)
}

func TestLoadWithoutTrimming(t *testing.T) {
	s, err := Load(writeTables(t), Options{TrimLeadingZeros: false})
	require.NoError(t, err)

	_, err = s.Part("02780")
	require.NoError(t, err)
	_, err = s.Part("2780")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NotNil(t, s.TryElement("02780", "0"))
}

func TestLookups(t *testing.T) {
	s, err := Load(writeTables(t), Options{TrimLeadingZeros: true})
	require.NoError(t, err)

	t.Run("not found errors name the identifier", func(t *testing.T) {
		_, err := s.Part("nope")
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.Contains(t, err.Error(), "nope")

		_, err = s.Colour("777")
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.Contains(t, err.Error(), "777")

		_, err = s.Category("99")
		assert.ErrorIs(t, err, types.ErrNotFound)

		_, err = s.Element("3001", "71")
		assert.ErrorIs(t, err, types.ErrNotFound)

		_, err = s.ElementByID("1")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("TryElement returns nil for absent pair", func(t *testing.T) {
		assert.Nil(t, s.TryElement("3001", "71"))
		assert.NotNil(t, s.TryElement("3001", "4"))
	})

	t.Run("element counts", func(t *testing.T) {
		assert.Equal(t, 2, s.ElementCount("3001"))
		assert.Equal(t, 0, s.ElementCount("3622pr0004"))
	})

	t.Run("element by id", func(t *testing.T) {
		e, err := s.ElementByID("300126")
		require.NoError(t, err)
		assert.Equal(t, "3001", e.PartID)
		assert.Equal(t, "0", e.ColourID)
	})

	t.Run("category", func(t *testing.T) {
		c, err := s.Category("53")
		require.NoError(t, err)
		assert.Equal(t, "Technic Pins", c.Name)
	})

	t.Run("part by description", func(t *testing.T) {
		p := s.TryPartByDescription("brick 2 X 4")
		require.NotNil(t, p)
		assert.Equal(t, "3001", p.ID)
		assert.Nil(t, s.TryPartByDescription("Plate 1 x 1"))
	})

	t.Run("part by id prefix", func(t *testing.T) {
		p := s.TryPartByIDPrefix("3622")
		require.NotNil(t, p)
		assert.Equal(t, "3622pr0004", p.ID)
		assert.Nil(t, s.TryPartByIDPrefix("x"))
	})
}

func TestReadTableErrors(t *testing.T) {
	t.Run("wrong column count names the line", func(t *testing.T) {
		s := New(Options{})
		err := s.ReadColours(strings.NewReader("id,name,rgb,is_trans\n4,Red\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrParse)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("missing table file", func(t *testing.T) {
		_, err := Load(t.TempDir(), Options{})
		assert.Error(t, err)
	})

	t.Run("header only is empty", func(t *testing.T) {
		s := New(Options{})
		require.NoError(t, s.ReadCategories(strings.NewReader("id,name\n")))
		_, categories, _, _ := s.Stats()
		assert.Zero(t, categories)
	})
}
