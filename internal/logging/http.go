package logging

import (
	"net/http"
	"time"
)

// RoundTripper wraps an http.RoundTripper and logs request/response
// metadata at debug level. Bodies are not captured so streaming
// responses pass through untouched.
type RoundTripper struct {
	next   http.RoundTripper
	logger *Logger
}

// NewRoundTripper creates a logging round-tripper around next.
func NewRoundTripper(next http.RoundTripper, logger *Logger) *RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &RoundTripper{next: next, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	rt.logger.Debug("http request", Fields{
		"method": req.Method,
		"url":    redactQuery(req),
		"host":   req.URL.Host,
	})

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		rt.logger.Error("http request failed", err, Fields{
			"method":      req.Method,
			"url":         redactQuery(req),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil, err
	}

	rt.logger.Debug("http response", Fields{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return resp, nil
}

// redactQuery strips query parameters, which may carry API keys.
func redactQuery(req *http.Request) string {
	u := *req.URL
	if u.RawQuery != "" {
		u.RawQuery = "[REDACTED]"
	}
	return u.String()
}
