package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/mcpgate/mcpgate/internal/errors"
)

// Client provides methods for querying the Brave Search API.
type Client struct {
	config      Config
	httpClient  *http.Client
	cache       *cache.Cache
	rateLimiter *time.Ticker
	logger      *slog.Logger
}

// NewClient creates a new search client. An empty API key is allowed at
// construction time; Search fails with a configuration error until one is
// set, mirroring a gateway that starts without the upstream credential.
func NewClient(config Config, logger *slog.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultConfig().CacheTTL
	}
	if config.RateLimitMS == 0 {
		config.RateLimitMS = DefaultConfig().RateLimitMS
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache:       cache.New(config.CacheTTL, config.CacheTTL*2),
		rateLimiter: time.NewTicker(time.Duration(config.RateLimitMS) * time.Millisecond),
		logger:      logger.With("service", "search"),
	}

	client.logger.Info("search client initialized",
		"base_url", config.BaseURL,
		"cache_ttl", config.CacheTTL,
		"rate_limit_ms", config.RateLimitMS,
		"api_key_configured", config.APIKey != "")

	return client
}

// HTTPClient exposes the underlying HTTP client so callers can install
// custom transports.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Close cleans up client resources
func (c *Client) Close() {
	c.rateLimiter.Stop()
	c.logger.Info("closing search client")
}

// Search queries the upstream API with the given request, serving repeated
// queries from the response cache.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if c.config.APIKey == "" {
		return nil, errors.Newf("search API key not configured; set BRAVE_API_KEY").
			Category(errors.CategoryConfiguration).
			Build()
	}

	req.Normalize()

	cacheKey := fmt.Sprintf("search:%s:%d:%d:%s:%s",
		req.Query, req.Count, req.Offset, req.Country, req.SearchLang)

	if cached, found := c.cache.Get(cacheKey); found {
		if response, ok := cached.(*SearchResponse); ok {
			c.logger.Debug("search cache hit", "cache_key", cacheKey)
			return response, nil
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	response, err := c.doSearch(reqCtx, req)
	if err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, response, cache.DefaultExpiration)

	c.logger.Debug("search response cached",
		"cache_key", cacheKey,
		"results", len(response.Results))

	return response, nil
}

// doSearch performs one upstream request and normalizes the response.
func (c *Client) doSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	// Rate limiting. A cancelled request must not consume a tick or hold
	// up concurrent searches waiting for one.
	select {
	case <-c.rateLimiter.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("count", strconv.Itoa(req.Count))
	params.Set("offset", strconv.Itoa(req.Offset))
	params.Set("country", req.Country)
	params.Set("search_lang", req.SearchLang)

	requestURL := c.config.BaseURL + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			NetworkContext(c.config.BaseURL, c.config.Timeout).
			Build()
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Subscription-Token", c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("search API request failed",
			"error", err,
			"url", c.config.BaseURL)
		return nil, errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			NetworkContext(c.config.BaseURL, c.config.Timeout).
			Build()
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is not actionable

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("status_code", resp.StatusCode).
			Build()
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("search API error",
			"status_code", resp.StatusCode,
			"body_length", len(bodyBytes))
		return nil, errors.New(&UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       fmt.Sprintf("search API error: %s", string(bodyBytes)),
		}).
			Category(errors.CategoryHTTP).
			Context("status_code", resp.StatusCode).
			Build()
	}

	var raw braveResponse
	if err := json.Unmarshal(bodyBytes, &raw); err != nil {
		return nil, errors.Newf("failed to decode search response: %w", err).
			Category(errors.CategoryNetwork).
			Build()
	}

	return normalizeResponse(&raw, req), nil
}

// normalizeResponse converts the upstream payload to the gateway's response
// shape, computing pagination the same way for every caller.
func normalizeResponse(raw *braveResponse, req SearchRequest) *SearchResponse {
	results := make([]SearchResult, 0, len(raw.Web.Results))
	for _, item := range raw.Web.Results {
		results = append(results, SearchResult{
			Title:         item.Title,
			URL:           item.URL,
			Description:   item.Description,
			PublishedDate: item.PublishedDate,
		})
	}

	response := &SearchResponse{
		Results:    results,
		TotalCount: raw.Web.TotalResults,
	}

	if next := req.Offset + req.Count; next < response.TotalCount {
		response.NextOffset = &next
	}

	return response
}
