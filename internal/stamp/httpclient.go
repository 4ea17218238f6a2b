package stamp

import (
	"time"

	"resty.dev/v3"
)

const defaultTimeout = 60 * time.Second

// NewHTTPClient creates the HTTP client owned by a single service
// instance. Each client gets its own session so connection reuse and
// authentication state are never shared across services. Responses are
// never retried: a single failed attempt is a failed request, and remote
// errors surface with their original status.
func NewHTTPClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "*/*").
		SetTimeout(defaultTimeout).
		SetRetryCount(0)
}
