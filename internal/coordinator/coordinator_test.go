package coordinator

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"astrostamps/internal/stamp"
	"astrostamps/internal/testutil"
)

func testRequest() stamp.Request {
	return stamp.Request{RA: 150.1, Dec: 2.2, Size: 30}
}

func TestRegister(t *testing.T) {
	registry := New(zerolog.Nop())

	if err := registry.Register("sdss", testutil.NewMockFetcher("sdss", nil, nil)); err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}
	if err := registry.Register("hsc", testutil.NewMockFetcher("hsc", nil, nil)); err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}

	if registry.Len() != 2 {
		t.Errorf("Len() = %d, want 2", registry.Len())
	}
}

func TestRegister_Duplicate(t *testing.T) {
	registry := New(zerolog.Nop())

	if err := registry.Register("sdss", testutil.NewMockFetcher("sdss", nil, nil)); err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}
	if err := registry.Register("sdss", testutil.NewMockFetcher("sdss", nil, nil)); err == nil {
		t.Error("Register() with duplicate name should return an error")
	}
	if registry.Len() != 1 {
		t.Errorf("Len() = %d after duplicate Register(), want 1", registry.Len())
	}
}

func TestServices_InsertionOrder(t *testing.T) {
	registry := New(zerolog.Nop())
	names := []string{"sdss", "hsc", "skyview:DSS2 Red", "skyview:DSS2 Blue"}
	for _, name := range names {
		if err := registry.Register(name, testutil.NewMockFetcher(name, nil, nil)); err != nil {
			t.Fatalf("Register(%q) returned unexpected error: %v", name, err)
		}
	}

	if diff := cmp.Diff(names, registry.Services()); diff != "" {
		t.Errorf("Services() order mismatch (-want +got):\n%s", diff)
	}
}

func TestGetStamps_AllSucceed(t *testing.T) {
	img := testutil.SolidImage(8, 8, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	registry := New(zerolog.Nop())
	for _, name := range []string{"sdss", "hsc", "skyview:DSS2 Red"} {
		if err := registry.Register(name, testutil.NewMockFetcher(name, img, nil)); err != nil {
			t.Fatalf("Register(%q) returned unexpected error: %v", name, err)
		}
	}

	results := registry.GetStamps(context.Background(), testRequest())

	if len(results) != 3 {
		t.Fatalf("GetStamps() returned %d results, want 3", len(results))
	}
	for name, res := range results {
		if !res.Found() {
			t.Errorf("result for %q not found: err=%v", name, res.Err)
		}
		if res.Service != name {
			t.Errorf("result keyed %q carries service %q", name, res.Service)
		}
	}
}

func TestGetStamps_OneFailureDoesNotAbortSiblings(t *testing.T) {
	img := testutil.SolidImage(8, 8, color.NRGBA{A: 255})
	failure := errors.New("quarry is down")

	registry := New(zerolog.Nop())
	if err := registry.Register("sdss", testutil.NewMockFetcher("sdss", img, nil)); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register("hsc", testutil.NewMockFetcher("hsc", nil, failure)); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register("skyview:DSS2 Red", testutil.NewMockFetcher("skyview:DSS2 Red", img, nil)); err != nil {
		t.Fatal(err)
	}

	results := registry.GetStamps(context.Background(), testRequest())

	if len(results) != 3 {
		t.Fatalf("GetStamps() returned %d results, want 3", len(results))
	}

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("got %d failed results, want exactly 1", failed)
	}
	if !errors.Is(results["hsc"].Err, failure) {
		t.Errorf("hsc error = %v, want %v", results["hsc"].Err, failure)
	}
	if !results["sdss"].Found() || !results["skyview:DSS2 Red"].Found() {
		t.Error("sibling services should still produce images when one fails")
	}
}

func TestGetStamps_NotFoundIsNotAnError(t *testing.T) {
	registry := New(zerolog.Nop())
	if err := registry.Register("skyview:VLA FIRST (1.4 GHz)",
		testutil.NewMockFetcher("skyview:VLA FIRST (1.4 GHz)", nil, nil)); err != nil {
		t.Fatal(err)
	}

	results := registry.GetStamps(context.Background(), testRequest())

	res, ok := results["skyview:VLA FIRST (1.4 GHz)"]
	if !ok {
		t.Fatal("missing result entry for the only registered service")
	}
	if res.Err != nil {
		t.Errorf("no-coverage result carries error %v, want nil", res.Err)
	}
	if res.Found() {
		t.Error("no-coverage result should not report Found()")
	}
}

func TestGetStamps_Empty(t *testing.T) {
	registry := New(zerolog.Nop())
	results := registry.GetStamps(context.Background(), testRequest())
	if len(results) != 0 {
		t.Errorf("GetStamps() with no services returned %d results, want 0", len(results))
	}
}
