package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"astrostamps/internal/config"
	"astrostamps/internal/coordinator"
	"astrostamps/internal/hsc"
	"astrostamps/internal/sdss"
	"astrostamps/internal/skyview"
	"astrostamps/internal/stamp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("received interrupt signal, shutting down")
		cancel()
	}()

	// Register service clients from configuration. The aggregator
	// request carries an angular size, so the pixel-sized SDSS client
	// goes in behind an adapter that divides by its pixel scale.
	registry := coordinator.New(log)

	sdssFetcher := sdss.New(cfg.SDSSBaseURL, cfg.SDSSScale, log)
	if err := registry.Register(sdssFetcher.Name(), angularSDSS{sdssFetcher, cfg.SDSSScale}); err != nil {
		log.Fatal().Err(err).Msg("register sdss")
	}

	if cfg.HSCUsername != "" {
		var creds hsc.CredentialProvider
		if cfg.HSCPassword != "" {
			creds = hsc.Static{User: cfg.HSCUsername, Password: cfg.HSCPassword}
		} else {
			creds = hsc.TerminalPrompt{User: cfg.HSCUsername}
		}
		session, err := hsc.NewSession(cfg.HSCBaseURL, creds, log)
		if err != nil {
			log.Fatal().Err(err).Msg("open hsc session")
		}
		if err := registry.Register(session.Name(), session); err != nil {
			log.Fatal().Err(err).Msg("register hsc")
		}
	} else {
		log.Info().Msg("HSC_USERNAME not set, skipping hsc service")
	}

	for _, survey := range cfg.Surveys {
		f := skyview.New(cfg.SkyViewBaseURL, survey, log)
		if err := registry.Register(f.Name(), f); err != nil {
			log.Fatal().Err(err).Msg("register skyview survey")
		}
	}

	// Add timeout to prevent hanging indefinitely
	fetchCtx, fetchCancel := context.WithTimeout(ctx, 120*time.Second)
	defer fetchCancel()

	req := stamp.Request{
		RA:     stamp.NormalizeRA(cfg.RA),
		Dec:    cfg.Dec,
		Size:   cfg.StampArcsec,
		Bands:  cfg.Bands,
		Survey: firstOr(cfg.Surveys, ""),
	}

	log.Info().
		Float64("ra", req.RA).
		Float64("dec", req.Dec).
		Strs("services", registry.Services()).
		Msg("fetching stamps")

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create output dir")
	}

	results := registry.GetStamps(fetchCtx, req)

	saved := 0
	for _, name := range registry.Services() {
		res := results[name]
		switch {
		case res.Err != nil:
			fmt.Printf("%s: ERROR - %v\n", name, res.Err)
		case !res.Found():
			fmt.Printf("%s: no data at this coordinate\n", name)
		default:
			path := filepath.Join(cfg.OutputDir, sanitize(name)+".png")
			if err := imaging.Save(res.Image, path); err != nil {
				fmt.Printf("%s: ERROR - save: %v\n", name, err)
				continue
			}
			fmt.Printf("%s: saved %s\n", name, path)
			saved++
		}
	}

	log.Info().Int("saved", saved).Int("services", registry.Len()).Msg("done")
}

// angularSDSS adapts the pixel-sized SDSS client to the angular request
// size shared by the other services.
type angularSDSS struct {
	*sdss.CutoutFetcher
	scale float64
}

func (a angularSDSS) Fetch(ctx context.Context, req stamp.Request) (image.Image, error) {
	req.Size = req.Size / a.scale
	return a.CutoutFetcher.Fetch(ctx, req)
}

func firstOr(items []string, fallback string) string {
	if len(items) > 0 {
		return items[0]
	}
	return fallback
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', ' ':
			return '_'
		}
		return r
	}, name)
}
