package ratelimit

import (
	"context"
	"os"
	"sync"

	"golang.org/x/time/rate"
)

// Service identifies the external imaging services we throttle
type Service string

const (
	// ServiceSDSS represents the SkyServer ImgCutout service
	ServiceSDSS Service = "sdss"
	// ServiceHSC represents the HSC quarry cutout service
	ServiceHSC Service = "hsc"
	// ServiceSkyView represents the SkyView SIA service
	ServiceSkyView Service = "skyview"
)

// Limiter manages rate limits for the different imaging services
type Limiter struct {
	limiters map[Service]*rate.Limiter
	mu       sync.RWMutex
}

var (
	instance *Limiter
	once     sync.Once
)

// GetLimiter returns the singleton rate limiter instance
func GetLimiter() *Limiter {
	once.Do(func() {
		instance = &Limiter{
			limiters: make(map[Service]*rate.Limiter),
		}
		instance.initLimiters()
	})
	return instance
}

// initLimiters initializes rate limiters for each service with conservative defaults
func (l *Limiter) initLimiters() {
	// In test mode, use unlimited rate limits to avoid slowing down tests
	if os.Getenv("GO_TESTING") == "1" || isTestMode() {
		l.limiters[ServiceSDSS] = rate.NewLimiter(rate.Inf, 1)
		l.limiters[ServiceHSC] = rate.NewLimiter(rate.Inf, 1)
		l.limiters[ServiceSkyView] = rate.NewLimiter(rate.Inf, 1)
		return
	}

	// SkyServer asks bulk users to stay under a few requests per second
	l.limiters[ServiceSDSS] = rate.NewLimiter(rate.Limit(4), 1)

	// The quarry service serves a full FITS cutout per band; keep it slow
	l.limiters[ServiceHSC] = rate.NewLimiter(rate.Limit(2), 1)

	// SkyView discovery plus two follow-up fetches per stamp
	l.limiters[ServiceSkyView] = rate.NewLimiter(rate.Limit(2), 1)
}

// isTestMode checks if we're running in test mode
func isTestMode() bool {
	for _, arg := range os.Args {
		if len(arg) > 6 && arg[:6] == "-test." {
			return true
		}
	}
	return false
}

// Wait blocks until the rate limiter permits an event for the given service.
// It returns an error if the context is canceled before the event can proceed
func (l *Limiter) Wait(ctx context.Context, svc Service) error {
	l.mu.RLock()
	limiter, exists := l.limiters[svc]
	l.mu.RUnlock()

	if !exists {
		return nil
	}

	return limiter.Wait(ctx)
}

// Allow reports whether an event for the given service may happen now
func (l *Limiter) Allow(svc Service) bool {
	l.mu.RLock()
	limiter, exists := l.limiters[svc]
	l.mu.RUnlock()

	if !exists {
		return true
	}

	return limiter.Allow()
}
