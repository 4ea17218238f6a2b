// Package rgb renders three co-registered single-band exposures as one
// 8-bit color image using the Lupton asinh stretch.
package rgb

import (
	"image"
	"image/color"
	"math"

	"astrostamps/internal/fits"
	"astrostamps/internal/stamp"
)

// Options control the nonlinear stretch applied during composition.
type Options struct {
	// Stretch is the linear stretch of the mapped intensity.
	Stretch float64
	// Q is the asinh softening parameter.
	Q float64
	// Minimum is the blackpoint subtracted from every band before
	// stretching.
	Minimum float64
}

// DefaultOptions returns the stretch used for HSC coadds: Stretch=5, Q=8,
// blackpoint at zero.
func DefaultOptions() Options {
	return Options{Stretch: 5, Q: 8}
}

// Compose maps the red, green and blue exposures onto one color image.
// Per pixel, the blackpoint-subtracted total intensity I = r+g+b is
// stretched as asinh(Q*I/Stretch)/asinh(Q) and each channel receives its
// proportional share of the stretched intensity, clipped to [0, 255].
// Pixels with no flux above the blackpoint come out black.
//
// Exposures keep row 0 at the bottom of the frame, so rows are flipped
// into the image's top-down y axis here. Compose is a pure function:
// identical inputs always produce byte-identical output.
func Compose(red, green, blue *fits.Exposure, opts Options) (*image.NRGBA, error) {
	planes := [3]*fits.Exposure{red, green, blue}
	for _, p := range planes[1:] {
		if p.Width != red.Width || p.Height != red.Height {
			return nil, stamp.NewShapeMismatchError(red.Width, red.Height, p.Width, p.Height)
		}
	}

	if opts.Stretch <= 0 {
		opts.Stretch = DefaultOptions().Stretch
	}
	if opts.Q <= 0 {
		opts.Q = DefaultOptions().Q
	}
	norm := math.Asinh(opts.Q)

	w, h := red.Width, red.Height
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := red.At(x, y) - opts.Minimum
			g := green.At(x, y) - opts.Minimum
			b := blue.At(x, y) - opts.Minimum
			total := r + g + b

			var px color.NRGBA
			px.A = 0xff
			if total > 0 {
				scale := 255 * math.Asinh(opts.Q*total/opts.Stretch) / norm / total
				px.R = clip255(r * scale)
				px.G = clip255(g * scale)
				px.B = clip255(b * scale)
			}
			out.SetNRGBA(x, h-1-y, px)
		}
	}
	return out, nil
}

func clip255(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
