package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"astrostamps/internal/stamp"
)

// Registry holds one configured client per known service and fans cutout
// requests out to all of them. It is populated at process start and
// read-only afterwards.
type Registry struct {
	names    []string
	fetchers map[string]stamp.Fetcher
	log      zerolog.Logger
}

// New creates an empty Registry
func New(log zerolog.Logger) *Registry {
	return &Registry{
		fetchers: make(map[string]stamp.Fetcher),
		log:      log,
	}
}

// Register adds a named service. Names must be unique; registering a
// duplicate is a configuration mistake and returns an error.
func (r *Registry) Register(name string, f stamp.Fetcher) error {
	if _, dup := r.fetchers[name]; dup {
		return fmt.Errorf("service %q already registered", name)
	}
	r.names = append(r.names, name)
	r.fetchers[name] = f
	return nil
}

// Services returns the registered service names in registration order
func (r *Registry) Services() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered services
func (r *Registry) Len() int {
	return len(r.names)
}

// GetStamps fans the request out to every registered service and
// collects one Result per service. Each fetch runs in its own goroutine
// and sends its result to a shared channel; one service's failure never
// aborts another's attempt. The returned map always has exactly one
// entry per registered service, so a caller can distinguish "no data for
// this survey" from "this survey was not queried".
func (r *Registry) GetStamps(ctx context.Context, req stamp.Request) map[string]stamp.Result {
	resultChan := make(chan stamp.Result, len(r.names))

	var wg sync.WaitGroup
	for _, name := range r.names {
		wg.Add(1)
		go func(name string, f stamp.Fetcher) {
			defer wg.Done()
			img, err := f.Fetch(ctx, req)
			resultChan <- stamp.Result{Service: name, Image: img, Err: err}
		}(name, r.fetchers[name])
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make(map[string]stamp.Result, len(r.names))
	for res := range resultChan {
		switch {
		case res.Err != nil:
			r.log.Warn().Str("service", res.Service).Err(res.Err).Msg("stamp fetch failed")
		case res.Image == nil:
			r.log.Info().Str("service", res.Service).Msg("no data at coordinate")
		}
		results[res.Service] = res
	}
	return results
}
