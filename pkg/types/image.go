package types

// Image sources recorded on an ImageResolution.
const (
	SourceHandPlaced = "hand-placed"
	SourceArchive    = "archive"
)

// ImageResolution is a resolved local image for one PartColourGroup.
// A nil *ImageResolution is the explicit missing marker.
type ImageResolution struct {
	Path     string // Absolute path under the data directory.
	Width    int
	Height   int
	Source   string // SourceHandPlaced or SourceArchive.
	ColourID string // Colour of the archive hit; empty for hand-placed images.
}
