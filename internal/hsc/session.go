// Package hsc downloads per-band scientific exposures from the HSC
// quarry cutout service and composes them into color stamps. Unlike the
// SDSS service there is no finished image on the wire: each band is a
// separate authenticated FITS download, and the color image is
// synthesized locally with the Lupton stretch.
package hsc

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"

	"astrostamps/internal/fits"
	"astrostamps/internal/ratelimit"
	"astrostamps/internal/rgb"
	"astrostamps/internal/stamp"
)

const (
	// DefaultBaseURL is the quarry cutout endpoint of the HSC release site
	DefaultBaseURL = "https://hsc-release.mtk.nao.ac.jp/das_quarry/cgi-bin/quarryImage"
	// DefaultBands selects filters in R, G, B order
	DefaultBands = "irg"

	// The science plane of a quarry coadd lives in the second HDU.
	scienceHDU = 1
)

// BandResult records the outcome of one band's download. Failed bands
// are omitted from the stack but always show up here, so callers can
// tell which bands degraded a partial stack.
type BandResult struct {
	Band byte
	Err  error
}

// Stack is an ordered set of co-registered exposures, one per band that
// downloaded successfully, in request band order.
type Stack []*fits.Exposure

// Session is an authenticated client for the quarry cutout service
type Session struct {
	client *resty.Client
	decode func(raw []byte) (*fits.Exposure, error)
	log    zerolog.Logger
}

// NewSession resolves credentials once and builds the session. The
// secret lives only in the HTTP client's basic-auth slot and is never
// logged.
func NewSession(baseURL string, creds CredentialProvider, log zerolog.Logger) (*Session, error) {
	user, password, err := creds.Credentials()
	if err != nil {
		return nil, err
	}
	return &Session{
		client: stamp.NewHTTPClient(baseURL).SetBasicAuth(user, password),
		decode: func(raw []byte) (*fits.Exposure, error) {
			return fits.DecodeImage(raw, scienceHDU)
		},
		log: log,
	}, nil
}

// FetchBands downloads one exposure per band character, concurrently.
// Bands are case-normalized to uppercase; width and height are angular
// extents in arcseconds, sent as half-extents per the service's
// convention. A band whose download fails is omitted from the stack and
// recorded in the report; a partial stack is not an error here. Callers
// that need strict band completeness must check the stack length.
func (s *Session) FetchBands(ctx context.Context, ra, dec, width, height float64, bands string) (Stack, []BandResult, error) {
	bands = strings.ToUpper(bands)
	if bands == "" {
		return nil, nil, fmt.Errorf("no bands requested")
	}

	exps := make([]*fits.Exposure, len(bands))
	report := make([]BandResult, len(bands))

	var g errgroup.Group
	for i := 0; i < len(bands); i++ {
		i := i
		g.Go(func() error {
			exp, err := s.fetchBand(ctx, ra, dec, width, height, bands[i])
			exps[i] = exp
			report[i] = BandResult{Band: bands[i], Err: err}
			return nil
		})
	}
	// Workers record their own outcomes and never return errors.
	_ = g.Wait()

	stack := make(Stack, 0, len(bands))
	for i, exp := range exps {
		if exp == nil {
			s.log.Warn().
				Str("band", string(bands[i])).
				Err(report[i].Err).
				Msg("band download failed, omitting from stack")
			continue
		}
		stack = append(stack, exp)
	}
	return stack, report, nil
}

func (s *Session) fetchBand(ctx context.Context, ra, dec, width, height float64, band byte) (*fits.Exposure, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.ServiceHSC); err != nil {
		return nil, err
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ra":     fmt.Sprintf("%.6f", ra),
			"dec":    fmt.Sprintf("%.6f", dec),
			"sw":     fmt.Sprintf("%.6fasec", width/2),
			"sh":     fmt.Sprintf("%.6fasec", height/2),
			"type":   "coadd",
			"image":  "on",
			"filter": "HSC-" + string(band),
			"tract":  "",
			"rerun":  "",
		}).
		Get("")

	if err != nil {
		return nil, stamp.NewNetworkError(err)
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return nil, stamp.NewAuthError(fmt.Sprintf("credentials rejected (status %d)", resp.StatusCode()))
	}
	if !resp.IsSuccess() {
		return nil, stamp.NewRemoteError(resp.StatusCode(), resp.String())
	}

	exp, err := s.decode(resp.Bytes())
	if err != nil {
		return nil, stamp.NewDecodeError("decode band exposure", err)
	}
	return exp, nil
}

// ComposeStack renders a previously fetched stack, treating the first
// three entries positionally as red, green and blue. Stacks with fewer
// than three bands cannot be composed.
func (s *Session) ComposeStack(stack Stack, opts rgb.Options) (image.Image, error) {
	if len(stack) < 3 {
		return nil, stamp.NewInvalidStackError(len(stack))
	}
	return rgb.Compose(stack[0], stack[1], stack[2], opts)
}

// ComposeRGB fetches the requested bands and composes them. Band order
// is R, G, B; an empty bands string selects DefaultBands.
func (s *Session) ComposeRGB(ctx context.Context, ra, dec, width, height float64, bands string, opts rgb.Options) (image.Image, error) {
	if bands == "" {
		bands = DefaultBands
	}
	stack, _, err := s.FetchBands(ctx, ra, dec, width, height, bands)
	if err != nil {
		return nil, err
	}
	return s.ComposeStack(stack, opts)
}

// Fetch implements the stamp.Fetcher interface. req.Size is the angular
// width and height in arcseconds.
func (s *Session) Fetch(ctx context.Context, req stamp.Request) (image.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.ComposeRGB(ctx, req.RA, req.Dec, req.Size, req.Size, req.Bands, rgb.DefaultOptions())
}

// Name returns the registry name for this service
func (s *Session) Name() string {
	return "hsc"
}
