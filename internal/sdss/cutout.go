// Package sdss fetches finished color cutouts from the SkyServer
// ImgCutout service. One GET returns one JPEG; there is no composition
// step and no retry on failure.
package sdss

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"strconv"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"astrostamps/internal/ratelimit"
	"astrostamps/internal/stamp"
)

const (
	// DefaultBaseURL is the DR13 ImgCutout endpoint
	DefaultBaseURL = "http://skyserver.sdss.org/dr13/SkyServerWS/ImgCutout/getjpeg"
	// DefaultScale is the pixel scale in arcseconds per pixel
	DefaultScale = 0.4
)

// CutoutFetcher fetches SDSS color stamps
type CutoutFetcher struct {
	scale  float64
	client *resty.Client
	log    zerolog.Logger
}

// New creates an SDSS cutout fetcher. A non-positive scale falls back to
// DefaultScale.
func New(baseURL string, scale float64, log zerolog.Logger) *CutoutFetcher {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &CutoutFetcher{
		scale:  scale,
		client: stamp.NewHTTPClient(baseURL),
		log:    log,
	}
}

// Fetch issues a single request for a finished stamp. req.Size is the
// stamp width and height in pixels (the service accepts 64 to 2048);
// req.Opt passes overlay flags through unchanged. The query parameters
// are a deterministic function of the inputs. Out-of-footprint
// coordinates surface as the service's own error status.
func (f *CutoutFetcher) Fetch(ctx context.Context, req stamp.Request) (image.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.ServiceSDSS); err != nil {
		return nil, err
	}

	size := int(req.Size + 0.5)
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ra":     fmt.Sprintf("%.8f", req.RA),
			"dec":    fmt.Sprintf("%.8f", req.Dec),
			"scale":  fmt.Sprintf("%.5f", f.scale),
			"width":  strconv.Itoa(size),
			"height": strconv.Itoa(size),
			"opt":    req.Opt,
		}).
		Get("")

	if err != nil {
		return nil, stamp.NewNetworkError(err)
	}
	if !resp.IsSuccess() {
		return nil, stamp.NewRemoteError(resp.StatusCode(), resp.String())
	}

	img, err := jpeg.Decode(bytes.NewReader(resp.Bytes()))
	if err != nil {
		return nil, stamp.NewDecodeError("decode cutout jpeg", err)
	}
	f.log.Debug().Float64("ra", req.RA).Float64("dec", req.Dec).Int("size", size).Msg("fetched sdss stamp")
	return img, nil
}

// Name returns the registry name for this service
func (f *CutoutFetcher) Name() string {
	return "sdss"
}
