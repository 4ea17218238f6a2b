package stamp

import "image"

// Result represents the outcome of one service's attempt at a cutout.
// It's designed to be sent through channels from worker goroutines to the
// coordinator that merges per-service outcomes into a single response.
type Result struct {
	// Service is the registry name the result belongs to
	Service string

	// Image is the finished stamp. It is nil when the fetch failed or
	// when the service reported no data at the coordinate.
	Image image.Image

	// Err contains any error that occurred during the fetch. A nil Err
	// with a nil Image means the coordinate is outside the service's
	// coverage, which is not a failure.
	Err error
}

// Found reports whether the service produced an image
func (r Result) Found() bool {
	return r.Err == nil && r.Image != nil
}
