package fits

import (
	"errors"
	"math"
)

const degToRad = math.Pi / 180

// WCS holds the tangent-plane world coordinate solution read from a FITS
// header: the reference pixel, the reference sky coordinate, and the CD
// matrix in degrees per pixel.
type WCS struct {
	// CRPix1, CRPix2 are the reference pixel coordinates, 1-indexed per
	// the FITS convention.
	CRPix1, CRPix2 float64
	// CRVal1, CRVal2 are the sky coordinates (ra, dec) at the reference
	// pixel, in degrees.
	CRVal1, CRVal2 float64
	// CD matrix, degrees of sky per pixel.
	CD1_1, CD1_2, CD2_1, CD2_2 float64
}

// SkyToPix converts (ra, dec) in degrees to 0-indexed pixel coordinates
// using a gnomonic (TAN) projection about the reference coordinate.
func (w *WCS) SkyToPix(ra, dec float64) (x, y float64, err error) {
	det := w.CD1_1*w.CD2_2 - w.CD1_2*w.CD2_1
	if det == 0 {
		return 0, 0, errors.New("wcs: singular CD matrix")
	}

	ra0 := w.CRVal1 * degToRad
	dec0 := w.CRVal2 * degToRad
	raR := ra * degToRad
	decR := dec * degToRad

	cosC := math.Sin(dec0)*math.Sin(decR) + math.Cos(dec0)*math.Cos(decR)*math.Cos(raR-ra0)
	if cosC <= 0 {
		return 0, 0, errors.New("wcs: coordinate is on the far side of the tangent plane")
	}

	// Tangent-plane offsets from the reference coordinate, in degrees.
	xi := math.Cos(decR) * math.Sin(raR-ra0) / cosC / degToRad
	eta := (math.Cos(dec0)*math.Sin(decR) - math.Sin(dec0)*math.Cos(decR)*math.Cos(raR-ra0)) / cosC / degToRad

	dx := (w.CD2_2*xi - w.CD1_2*eta) / det
	dy := (-w.CD2_1*xi + w.CD1_1*eta) / det

	return w.CRPix1 + dx - 1, w.CRPix2 + dy - 1, nil
}

// PixelScale returns the mean sky sampling in arcseconds per pixel,
// derived from the CD matrix determinant.
func (w *WCS) PixelScale() float64 {
	det := w.CD1_1*w.CD2_2 - w.CD1_2*w.CD2_1
	return math.Sqrt(math.Abs(det)) * 3600
}
