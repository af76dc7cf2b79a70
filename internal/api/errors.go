package api

import "fmt"

// TransportError reports a failed model call: dial errors, timeouts,
// cancellation, non-success statuses, or a connection dropped
// mid-stream. Partial holds whatever text had been received before
// the failure so the caller can decide whether to keep it.
type TransportError struct {
	Partial string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError reports a structured error returned by the remote
// service in place of content. It is treated like a transport failure
// by callers: the turn fails but the shell keeps running.
type UpstreamError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error: status %d", e.StatusCode)
}
