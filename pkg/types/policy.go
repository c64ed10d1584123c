package types

import "strings"

// Policy holds the lookup tables that steer image resolution. The tables are
// not exhaustive; callers start from DefaultPolicy and override entries.
type Policy struct {
	// BlackColourID identifies black, which is hard to see at label size.
	BlackColourID string `mapstructure:"black_colour_id" yaml:"black_colour_id"`

	// PreferBlackCategories are categories whose parts are normally black
	// (pins, axles, tyres), so a black image is kept.
	PreferBlackCategories []string `mapstructure:"prefer_black_categories" yaml:"prefer_black_categories"`

	// FallbackColours is the ordered colour preference used when the
	// preferred colour is unusable and as a safety net after it.
	FallbackColours []string `mapstructure:"fallback_colours" yaml:"fallback_colours"`

	// IgnoreCategories are never searched (non-catalog items, stickers).
	IgnoreCategories []string `mapstructure:"ignore_categories" yaml:"ignore_categories"`

	// IgnoreIfMissingCategories are searched but never reported missing.
	IgnoreIfMissingCategories []string `mapstructure:"ignore_if_missing_categories" yaml:"ignore_if_missing_categories"`

	// NeverSimplifyCategories keep their print details: the base identifier
	// is not tried for them.
	NeverSimplifyCategories []string `mapstructure:"never_simplify_categories" yaml:"never_simplify_categories"`

	// IDRemap maps identifiers without archive images to a close-enough
	// identifier that has one.
	IDRemap map[string]string `mapstructure:"id_remap" yaml:"id_remap"`

	// KnownMissingColours have no archive on the CDN and are never fetched.
	KnownMissingColours []string `mapstructure:"known_missing_colours" yaml:"known_missing_colours"`

	// UnofficialPrefixes mark placeholder identifiers that are never
	// reported missing.
	UnofficialPrefixes []string `mapstructure:"unofficial_prefixes" yaml:"unofficial_prefixes"`
}

// DefaultPolicy returns the built-in policy tables.
func DefaultPolicy() Policy {
	return Policy{
		BlackColourID: "0",
		PreferBlackCategories: []string{
			"53", // Technic Pins
			"46", // Technic Axles
			"29", // Wheels and Tyres
		},
		FallbackColours: []string{
			"71", // light gray
			"72", // dark gray
			"1",  // blue
			"4",  // red
			"14", // yellow
			"0",  // black
		},
		IgnoreCategories: []string{
			"17", // Non-LEGO
			"58", // Stickers
		},
		IgnoreIfMissingCategories: []string{
			"38", // Flags, Signs, Plastics and Cloth
			"27", // Minifig Accessories
			"59", // Minifig Heads
			"65", // Minifig Headwear
			"61", // Minifig Lower Body
			"60", // Minifig Upper Body
			"45", // Power Functions, Mindstorms and Electric
			"31", // String, Bands and Reels
		},
		NeverSimplifyCategories: []string{"59", "65", "61", "60"},
		IDRemap: map[string]string{
			"19798":     "3940",     // Support 2 x 2 x 2 Stand with Reinforced Underside
			"47225":     "47224c0",  // Pneumatic Cylinder with 2 Inlets
			"73590c02a": "73590a",   // Flexible Hose 8.5L with Tabbed Ends
			"73983":     "2429c01",  // Hinge Plate 1 x 4 Swivel Top / Base
			"76320c01":  "32181c03", // Technic Shock Absorber 10L
			"98560":     "3684",     // Slope 75 2 x 2 x 3 [Solid Studs]
		},
		KnownMissingColours: []string{
			"1059", // Opal Trans-Purple
			"1061", // Opal Trans-Dark Blue
			"1088", // Medium Brown
			"1089", // Warm Tan
			"1092", // Metallic Copper
			"1103", // Pearl Titanium
		},
		UnofficialPrefixes: []string{"upn", "flex"},
	}
}

// Included reports whether a group is searched for an image at all.
func (p Policy) Included(g *PartColourGroup) bool {
	if g.Quantity() <= 1 {
		return false
	}
	return !contains(p.IgnoreCategories, g.Part().CategoryID)
}

// ReportMissing reports whether a group without an image belongs in the
// missing report. It is narrower than Included.
func (p Policy) ReportMissing(g *PartColourGroup) bool {
	if !p.Included(g) {
		return false
	}
	part := g.Part()
	if contains(p.IgnoreIfMissingCategories, part.CategoryID) {
		return false
	}
	if part.IsPrintVariant() {
		return false
	}
	for _, prefix := range p.UnofficialPrefixes {
		if strings.HasPrefix(part.ID, prefix) {
			return false
		}
	}
	return true
}

// PrefersBlack reports whether black is an acceptable rendering colour for
// parts in the category.
func (p Policy) PrefersBlack(categoryID string) bool {
	return contains(p.PreferBlackCategories, categoryID)
}

// Simplifiable reports whether the base identifier may stand in for a print
// variant in the category.
func (p Policy) Simplifiable(categoryID string) bool {
	return !contains(p.NeverSimplifyCategories, categoryID)
}

// KnownMissing reports whether the colour has no archive on the CDN.
func (p Policy) KnownMissing(colourID string) bool {
	return contains(p.KnownMissingColours, colourID)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
