package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"astrostamps/internal/stamp"
)

// MockFetcher is a mock implementation of the stamp.Fetcher interface
// for testing
type MockFetcher struct {
	FetchFunc func(ctx context.Context, req stamp.Request) (image.Image, error)
	NameFunc  func() string
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, req stamp.Request) (image.Image, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, req)
	}
	return nil, nil
}

// Name implements the Fetcher interface
func (m *MockFetcher) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}

// NewMockFetcher creates a simple mock fetcher with predefined values
func NewMockFetcher(name string, img image.Image, err error) stamp.Fetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context, req stamp.Request) (image.Image, error) {
			return img, err
		},
		NameFunc: func() string {
			return name
		},
	}
}

// SolidImage returns a uniform test image
func SolidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// VerticalGradient returns a grayscale image whose row y has intensity y
// (clamped at 255), so tests can tell which rows survived a flip or crop
func VerticalGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		v := uint8(min(y, 255))
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 0xff})
		}
	}
	return img
}

// EncodeJPEG encodes an image for use in a mock HTTP response
func EncodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// EncodePNG encodes an image for use in a mock HTTP response
func EncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
