// Package types defines the catalog entities, inventory groups, image
// resolutions, resolution policy, configuration and standard errors shared by
// every partlabels package.
//
// Catalog entities (Part, Colour, Category, Element) are created once per
// catalog load and are read-only afterwards. PartColourGroup and
// ImageResolution values are created fresh for each resolution run.
package types
