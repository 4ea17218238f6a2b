// Package skyview fetches stamps from a SkyView-style simple image
// access service. The service has no cutout endpoint of its own, so each
// stamp takes three steps: a metadata query to discover which survey
// tile covers the coordinate, a fetch of the tile's coordinate
// transform, and a pixel-space crop out of the tile's preview raster.
package skyview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"astrostamps/internal/fits"
	"astrostamps/internal/ratelimit"
	"astrostamps/internal/stamp"
)

// DefaultBaseURL is the SkyView SIA metadata endpoint
const DefaultBaseURL = "https://skyview.gsfc.nasa.gov/cgi-bin/vo/sia.pl"

// SurveyFetcher resolves which tile of one named survey covers a
// coordinate, then crops the requested window out of the tile's preview.
type SurveyFetcher struct {
	survey    string
	client    *resty.Client // metadata endpoint
	raw       *resty.Client // absolute-URL follow-up fetches
	decodeWCS func(raw []byte) (*fits.WCS, error)
	log       zerolog.Logger
}

// New creates a fetcher for one survey. The survey name is matched
// against discovery rows exactly and case-sensitively.
func New(baseURL, survey string, log zerolog.Logger) *SurveyFetcher {
	return &SurveyFetcher{
		survey:    survey,
		client:    stamp.NewHTTPClient(baseURL),
		raw:       stamp.NewHTTPClient(""),
		decodeWCS: fits.DecodeWCS,
		log:       log,
	}
}

// Fetch runs the three-phase protocol. req.Size is the window size in
// arcseconds. A nil image with a nil error means the survey has no
// coverage at the coordinate, which is an expected outcome, not a fault.
func (f *SurveyFetcher) Fetch(ctx context.Context, req stamp.Request) (image.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rec, err := f.discover(ctx, req.RA, req.Dec)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		f.log.Info().
			Str("survey", f.survey).
			Float64("ra", req.RA).
			Float64("dec", req.Dec).
			Msg("no coverage at coordinate")
		return nil, nil
	}

	wcs, err := f.resolveWCS(ctx, rec.AccessURL)
	if err != nil {
		return nil, err
	}

	frame, err := f.fetchPreview(ctx, rec.Preview)
	if err != nil {
		return nil, err
	}

	return cropWindow(frame, wcs, req.RA, req.Dec, req.Size)
}

// Name returns the registry name for this service
func (f *SurveyFetcher) Name() string {
	return "skyview:" + f.survey
}

// discover queries the metadata endpoint with a zero-size search box and
// returns the row matching the configured survey, or nil when no row
// matches.
func (f *SurveyFetcher) discover(ctx context.Context, ra, dec float64) (*surveyRecord, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.ServiceSkyView); err != nil {
		return nil, err
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"POS":  fmt.Sprintf("%.6f,%.6f", ra, dec),
			"SIZE": "0",
		}).
		Get("")

	if err != nil {
		return nil, stamp.NewNetworkError(err)
	}
	if !resp.IsSuccess() {
		return nil, stamp.NewRemoteError(resp.StatusCode(), resp.String())
	}

	records, err := parseSIAResponse(resp.Bytes())
	if err != nil {
		return nil, stamp.NewDecodeError("parse discovery response", err)
	}
	for i := range records {
		if records[i].Survey == f.survey {
			return &records[i], nil
		}
	}
	return nil, nil
}

func (f *SurveyFetcher) get(ctx context.Context, url string) ([]byte, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.ServiceSkyView); err != nil {
		return nil, err
	}
	resp, err := f.raw.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, stamp.NewNetworkError(err)
	}
	if !resp.IsSuccess() {
		return nil, stamp.NewRemoteError(resp.StatusCode(), resp.String())
	}
	return resp.Bytes(), nil
}

// resolveWCS fetches the matched row's FITS product and reads the
// coordinate transform out of its header.
func (f *SurveyFetcher) resolveWCS(ctx context.Context, url string) (*fits.WCS, error) {
	raw, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	wcs, err := f.decodeWCS(raw)
	if err != nil {
		return nil, stamp.NewDecodeError("resolve coordinate transform", err)
	}
	return wcs, nil
}

func (f *SurveyFetcher) fetchPreview(ctx context.Context, url string) (image.Image, error) {
	raw, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, stamp.NewDecodeError("decode preview raster", err)
	}
	return img, nil
}

// cropWindow converts the target coordinate to pixel space, flips the
// frame so row 0 sits at the bottom (the preview origin is upper-left,
// the sky convention is lower-left), and crops a square window of
// sizeArcsec/pixelScale pixels centered on the target. Windows that run
// past the frame edge are clipped to the frame, never padded, so an edge
// crop comes back smaller than requested.
func cropWindow(frame image.Image, wcs *fits.WCS, ra, dec, sizeArcsec float64) (image.Image, error) {
	x, y, err := wcs.SkyToPix(ra, dec)
	if err != nil {
		return nil, stamp.NewDecodeError("apply coordinate transform", err)
	}
	scale := wcs.PixelScale()
	if scale <= 0 {
		return nil, stamp.NewDecodeError("coordinate transform has no pixel scale", nil)
	}

	side := int(sizeArcsec/scale + 0.5)
	if side < 1 {
		side = 1
	}
	half := side / 2
	cx := int(x + 0.5)
	cy := int(y + 0.5)

	flipped := imaging.FlipV(frame)
	window := image.Rect(cx-half, cy-half, cx-half+side, cy-half+side)
	return imaging.Crop(flipped, window), nil
}
