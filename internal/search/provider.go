// Package search fetches reference text from a web-search provider.
// The conversation layer consumes it through the Provider interface
// and treats the returned context block as an opaque string.
package search

import "context"

// Provider is the narrow interface the conversation layer depends on.
type Provider interface {
	// FetchContext searches for query and returns a single block of
	// plain text suitable for splicing into a model request as a
	// system turn. An empty string means nothing relevant was found.
	FetchContext(ctx context.Context, query string, maxResults int) (string, error)
}
