package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func group(id, categoryID string, quantity int) *PartColourGroup {
	g := NewPartColourGroup(NewPart(id, "", categoryID))
	if quantity > 0 {
		g.AddColour(&Colour{ID: "4"}, quantity)
	}
	return g
}

func TestPolicyIncluded(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name  string
		group *PartColourGroup
		want  bool
	}{
		{"quantity above one", group("3001", "11", 2), true},
		{"quantity one excluded", group("3001", "11", 1), false},
		{"ignored category excluded", group("sticker01", "58", 10), false},
		{"non-catalog category excluded", group("x1", "17", 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Included(tt.group))
		})
	}
}

func TestPolicyReportMissing(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name  string
		group *PartColourGroup
		want  bool
	}{
		{"plain part reported", group("3001", "11", 2), true},
		{"excluded part not reported", group("3001", "11", 1), false},
		{"minifig head not reported", group("3626c", "59", 2), false},
		{"print variant not reported", group("3001pr0001", "11", 2), false},
		{"unofficial upn not reported", group("upn0342", "11", 2), false},
		{"unofficial flex not reported", group("flex01", "11", 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ReportMissing(tt.group))
		})
	}
}

func TestPolicyLookups(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.PrefersBlack("53"))
	assert.False(t, p.PrefersBlack("11"))
	assert.False(t, p.Simplifiable("59"))
	assert.True(t, p.Simplifiable("11"))
	assert.True(t, p.KnownMissing("1103"))
	assert.False(t, p.KnownMissing("4"))
	assert.Equal(t, "3940", p.IDRemap["19798"])
	assert.Equal(t, []string{"71", "72", "1", "4", "14", "0"}, p.FallbackColours)
}
