// Package fits wraps FITS decoding behind the two products the stamp
// clients need: a single-band science plane and the coordinate transform
// embedded in its header. The binary format itself is handled by
// astrogo/fitsio and treated as a black box.
package fits

import (
	"bytes"
	"fmt"

	"github.com/astrogo/fitsio"
)

// Exposure is a single-band science image plane. Data is row-major with
// row 0 at the bottom of the frame, per the FITS convention. An Exposure
// is never mutated after decoding.
type Exposure struct {
	Data   []float64
	Width  int
	Height int
	// WCS is nil when the header carries no usable transform.
	WCS *WCS
}

// At returns the pixel value at 0-indexed (x, y).
func (e *Exposure) At(x, y int) float64 {
	return e.Data[y*e.Width+x]
}

// DecodeImage parses raw FITS bytes and extracts the science plane from
// the HDU at index hdu (quarry coadds keep it in the second HDU).
func DecodeImage(raw []byte, hdu int) (*Exposure, error) {
	f, err := fitsio.Open(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse fits: %w", err)
	}
	defer f.Close()

	hdus := f.HDUs()
	if hdu >= len(hdus) {
		return nil, fmt.Errorf("fits has %d HDUs, want at least %d", len(hdus), hdu+1)
	}
	img, ok := hdus[hdu].(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("HDU %d is not an image", hdu)
	}

	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) < 2 {
		return nil, fmt.Errorf("HDU %d is not a 2-D image (NAXIS=%d)", hdu, len(axes))
	}
	w, h := axes[0], axes[1]
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("HDU %d has empty axes %dx%d", hdu, w, h)
	}

	data, err := readPlane(img, hdr.Bitpix(), w*h)
	if err != nil {
		return nil, err
	}

	return &Exposure{
		Data:   data,
		Width:  w,
		Height: h,
		WCS:    wcsFromHeader(hdr),
	}, nil
}

// DecodeWCS reads only the coordinate transform from raw FITS bytes,
// taking it from the first HDU whose header carries a complete solution.
func DecodeWCS(raw []byte) (*WCS, error) {
	f, err := fitsio.Open(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse fits: %w", err)
	}
	defer f.Close()

	for _, hdu := range f.HDUs() {
		if w := wcsFromHeader(hdu.Header()); w != nil {
			return w, nil
		}
	}
	return nil, fmt.Errorf("no coordinate transform in any HDU")
}

func readPlane(img fitsio.Image, bitpix, n int) ([]float64, error) {
	out := make([]float64, n)
	switch bitpix {
	case 16:
		var v []int16
		if err := img.Read(&v); err != nil {
			return nil, fmt.Errorf("read image data: %w", err)
		}
		for i := range out {
			out[i] = float64(v[i])
		}
	case 32:
		var v []int32
		if err := img.Read(&v); err != nil {
			return nil, fmt.Errorf("read image data: %w", err)
		}
		for i := range out {
			out[i] = float64(v[i])
		}
	case -32:
		var v []float32
		if err := img.Read(&v); err != nil {
			return nil, fmt.Errorf("read image data: %w", err)
		}
		for i := range out {
			out[i] = float64(v[i])
		}
	case -64:
		var v []float64
		if err := img.Read(&v); err != nil {
			return nil, fmt.Errorf("read image data: %w", err)
		}
		copy(out, v)
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
	return out, nil
}

// wcsFromHeader extracts a TAN solution from header cards. CDELTn headers
// are accepted as a diagonal CD matrix when no CDn_m cards are present.
func wcsFromHeader(hdr *fitsio.Header) *WCS {
	crpix1, ok1 := cardFloat(hdr, "CRPIX1")
	crpix2, ok2 := cardFloat(hdr, "CRPIX2")
	crval1, ok3 := cardFloat(hdr, "CRVAL1")
	crval2, ok4 := cardFloat(hdr, "CRVAL2")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}

	w := &WCS{
		CRPix1: crpix1, CRPix2: crpix2,
		CRVal1: crval1, CRVal2: crval2,
	}

	cd11, okCD := cardFloat(hdr, "CD1_1")
	if okCD {
		w.CD1_1 = cd11
		w.CD1_2, _ = cardFloat(hdr, "CD1_2")
		w.CD2_1, _ = cardFloat(hdr, "CD2_1")
		cd22, ok := cardFloat(hdr, "CD2_2")
		if !ok {
			return nil
		}
		w.CD2_2 = cd22
		return w
	}

	cdelt1, ok5 := cardFloat(hdr, "CDELT1")
	cdelt2, ok6 := cardFloat(hdr, "CDELT2")
	if !ok5 || !ok6 {
		return nil
	}
	w.CD1_1 = cdelt1
	w.CD2_2 = cdelt2
	return w
}

func cardFloat(hdr *fitsio.Header, name string) (float64, bool) {
	card := hdr.Get(name)
	if card == nil {
		return 0, false
	}
	switch v := card.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
