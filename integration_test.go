package main

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"astrostamps/internal/coordinator"
	"astrostamps/internal/sdss"
	"astrostamps/internal/skyview"
	"astrostamps/internal/stamp"
	"astrostamps/internal/testutil"
)

// TestIntegration_MixedOutcomes runs real clients against mock HTTP
// servers: one service succeeds, one always fails, one has no coverage.
// The aggregator must report all three outcomes independently.
func TestIntegration_MixedOutcomes(t *testing.T) {
	// Healthy SDSS server returning a finished stamp.
	stampJPEG := testutil.EncodeJPEG(t, testutil.SolidImage(32, 32, color.NRGBA{R: 80, A: 255}))
	sdssServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(stampJPEG)
	}))
	defer sdssServer.Close()

	// A second cutout service that is down hard.
	brokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer brokenServer.Close()

	// A discovery service whose response has no row for the requested
	// survey: an expected no-coverage outcome, not a failure.
	siaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(testutil.SIAResponse(testutil.SIARecord{
			Survey:    "DSS2 Blue",
			AccessURL: "http://unused/tile.fits",
			Preview:   "http://unused/tile.png",
		}))
	}))
	defer siaServer.Close()

	log := zerolog.Nop()
	registry := coordinator.New(log)
	if err := registry.Register("sdss", sdss.New(sdssServer.URL, 0.4, log)); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register("broken", sdss.New(brokenServer.URL, 0.4, log)); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register("skyview:DSS2 Red", skyview.New(siaServer.URL, "DSS2 Red", log)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results := registry.GetStamps(ctx, stamp.Request{
		RA: 202.4696, Dec: 47.1952, Size: 64, Survey: "DSS2 Red",
	})

	if len(results) != 3 {
		t.Fatalf("got %d results, want one per registered service", len(results))
	}

	if !results["sdss"].Found() {
		t.Errorf("sdss result should carry an image, got err=%v", results["sdss"].Err)
	}

	if stamp.KindOf(results["broken"].Err) != stamp.KindRemote {
		t.Errorf("broken service error = %v, want remote error", results["broken"].Err)
	}

	sky := results["skyview:DSS2 Red"]
	if sky.Err != nil {
		t.Errorf("no-coverage outcome should not be an error, got %v", sky.Err)
	}
	if sky.Found() {
		t.Error("no-coverage outcome should not report an image")
	}
}

// TestIntegration_FailureIsolation checks that a hanging-slow failure in
// one service does not delay or poison its siblings' results.
func TestIntegration_FailureIsolation(t *testing.T) {
	stampJPEG := testutil.EncodeJPEG(t, testutil.SolidImage(16, 16, color.NRGBA{G: 120, A: 255}))
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(stampJPEG)
	}))
	defer okServer.Close()

	slowServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		http.Error(w, "timed out upstream", http.StatusGatewayTimeout)
	}))
	defer slowServer.Close()

	log := zerolog.Nop()
	registry := coordinator.New(log)
	if err := registry.Register("fast", sdss.New(okServer.URL, 0.4, log)); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register("slow", sdss.New(slowServer.URL, 0.4, log)); err != nil {
		t.Fatal(err)
	}

	results := registry.GetStamps(context.Background(), stamp.Request{RA: 10, Dec: 10, Size: 32})

	if !results["fast"].Found() {
		t.Errorf("fast service should succeed, got err=%v", results["fast"].Err)
	}
	if results["slow"].Err == nil {
		t.Error("slow service should report its own failure")
	}
}
