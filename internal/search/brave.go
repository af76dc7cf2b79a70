package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"searchshell/internal/config"
	"searchshell/internal/constants"
	"searchshell/internal/logging"
)

// BraveAPIURL is the Brave web search endpoint.
const BraveAPIURL = "https://api.search.brave.com/res/v1/web/search"

const cacheSize = 64

// braveResponse represents the Brave search response.
type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

// braveResult represents a single search result.
type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// APIError reports a non-success search response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// BraveClient queries the Brave Search API and formats results as a
// reference-context block. Repeated queries are served from a small
// LRU cache. On auth or rate-limit failures the client fails over to
// the next configured API key.
type BraveClient struct {
	httpClient *http.Client
	keys       *config.KeyRotator
	baseURL    string
	logger     *logging.Logger
	cache      *lru.Cache[string, string]
}

var _ Provider = (*BraveClient)(nil)

// NewBraveClient creates a Brave search client using the key pool
// from cfg.
func NewBraveClient(cfg *config.Config, logger *logging.Logger) *BraveClient {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	cache, _ := lru.New[string, string](cacheSize)
	return &BraveClient{
		httpClient: &http.Client{Timeout: constants.DefaultSearchTimeout},
		keys:       cfg.BraveKeys,
		baseURL:    BraveAPIURL,
		logger:     logger,
		cache:      cache,
	}
}

// FetchContext implements Provider.
func (c *BraveClient) FetchContext(ctx context.Context, query string, maxResults int) (string, error) {
	if maxResults < 1 {
		maxResults = constants.DefaultSearchResults
	}

	cacheKey := strconv.Itoa(maxResults) + "\x00" + query
	if cached, ok := c.cache.Get(cacheKey); ok {
		c.logger.Debug("search cache hit", logging.Fields{"query": query})
		return cached, nil
	}

	resp, err := c.search(ctx, query, maxResults)
	if err != nil {
		return "", err
	}

	block := formatContext(resp.Web.Results)
	c.cache.Add(cacheKey, block)
	return block, nil
}

// search performs the API call, rotating to the next key on auth or
// rate-limit failures. This is key failover within a single fetch,
// not a retry of a failed turn.
func (c *BraveClient) search(ctx context.Context, query string, maxResults int) (*braveResponse, error) {
	for {
		resp, err := c.doSearch(ctx, query, maxResults)
		if err == nil {
			return resp, nil
		}

		apiErr, ok := err.(*APIError)
		if !ok || !shouldRotateKey(apiErr.StatusCode) {
			return nil, err
		}
		if _, rerr := c.keys.Rotate(); rerr != nil {
			return nil, fmt.Errorf("%v (no more search API keys available)", err)
		}
		c.logger.Warn("rotated search API key", logging.Fields{
			"status":    apiErr.StatusCode,
			"key_index": c.keys.GetCurrentIndex() + 1,
			"key_count": c.keys.GetKeyCount(),
		})
	}
}

func (c *BraveClient) doSearch(ctx context.Context, query string, maxResults int) (*braveResponse, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse search URL: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(maxResults))
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.keys.GetCurrentKey())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("search API error: status code %d", resp.StatusCode),
		}
	}

	var braveResp braveResponse
	if err := json.Unmarshal(body, &braveResp); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	return &braveResp, nil
}

func shouldRotateKey(statusCode int) bool {
	for _, code := range config.RotatableErrorCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}

// formatContext renders results as the reference block handed to the
// model: Source/URL/Content entries separated by rules.
func formatContext(results []braveResult) string {
	if len(results) == 0 {
		return ""
	}

	sep := strings.Repeat("=", 50)
	var entries []string
	for _, r := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "Source: %s\n", r.Title)
		fmt.Fprintf(&b, "URL: %s\n", r.URL)
		if r.Description != "" {
			fmt.Fprintf(&b, "\nContent:\n%s\n", r.Description)
		}
		b.WriteString(sep + "\n")
		entries = append(entries, b.String())
	}
	return strings.Join(entries, "\n")
}
