package stamp

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Request describes one cutout: a sky coordinate in degrees and a size
// whose unit is service-specific (pixels for SDSS, arcseconds for HSC and
// SkyView). The optional fields carry service-specific rendering options
// and are ignored by services they do not apply to.
type Request struct {
	RA   float64
	Dec  float64 `validate:"gte=-90,lte=90"`
	Size float64 `validate:"gt=0"`

	// Opt is a string of uppercase SDSS overlay flags (G grid, L label,
	// P photoObj, S specObj, O outline, B box, F fields, M masks,
	// Q plates, I invert).
	Opt string

	// Bands selects HSC filters in R, G, B order, e.g. "irg".
	Bands string

	// Survey names the SkyView survey to match during discovery
	// (case-sensitive exact match).
	Survey string
}

// Validate checks the coordinate and size invariants. RA normalization to
// [0,360) is a convention, not enforced here; use NormalizeRA for that.
func (r Request) Validate() error {
	if math.IsNaN(r.RA) || math.IsInf(r.RA, 0) {
		return fmt.Errorf("ra must be finite, got %v", r.RA)
	}
	if math.IsNaN(r.Dec) || math.IsInf(r.Dec, 0) {
		return fmt.Errorf("dec must be finite, got %v", r.Dec)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid cutout request: %w", err)
	}
	return nil
}

// NormalizeRA maps an arbitrary right ascension in degrees to [0, 360).
func NormalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	return ra
}
