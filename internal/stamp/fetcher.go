package stamp

import (
	"context"
	"image"
)

// Fetcher is the core interface that all cutout services implement.
// Each fetcher knows how to turn a sky coordinate into a finished color
// stamp, hiding the service-specific protocol behind it: a single JPEG
// request, per-band scientific downloads plus composition, or a metadata
// lookup followed by a pixel-space crop.
type Fetcher interface {
	// Fetch retrieves a cutout centered on the requested coordinate.
	// A nil image together with a nil error means the service has no
	// data at that coordinate, which is an expected outcome rather
	// than a failure.
	Fetch(ctx context.Context, req Request) (image.Image, error)

	// Name returns the registry name for this service.
	// Examples:
	//   - sdss
	//   - hsc
	//   - skyview:DSS2 Red
	Name() string
}
