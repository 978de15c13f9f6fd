// Package search provides a client for the Brave Search API, used by the
// gateway's web-search passthrough endpoint.
package search

import "time"

// SearchRequest holds the normalized query options. Defaults are applied
// explicitly by Normalize rather than relying on zero values downstream.
type SearchRequest struct {
	Query      string `json:"query"`
	Count      int    `json:"count"`
	Offset     int    `json:"offset"`
	Country    string `json:"country"`
	SearchLang string `json:"search_lang"`
}

// Default values for optional SearchRequest fields.
const (
	DefaultCount      = 10
	DefaultCountry    = "US"
	DefaultSearchLang = "en"
)

// Normalize fills unset optional fields with their documented defaults.
func (r *SearchRequest) Normalize() {
	if r.Count <= 0 {
		r.Count = DefaultCount
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	if r.Country == "" {
		r.Country = DefaultCountry
	}
	if r.SearchLang == "" {
		r.SearchLang = DefaultSearchLang
	}
}

// SearchResult is one normalized result item.
type SearchResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Description   string `json:"description"`
	PublishedDate string `json:"published_date,omitempty"`
}

// SearchResponse is the normalized upstream response.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	TotalCount int            `json:"total_count"`
	NextOffset *int           `json:"next_offset"`
}

// braveResponse mirrors the subset of the Brave Search API response the
// gateway consumes.
type braveResponse struct {
	Web struct {
		Results []struct {
			Title         string `json:"title"`
			URL           string `json:"url"`
			Description   string `json:"description"`
			PublishedDate string `json:"published_date"`
		} `json:"results"`
		TotalResults int `json:"total_results"`
	} `json:"web"`
}

// Config holds configuration for the search client.
type Config struct {
	APIKey      string        `json:"api_key"`
	BaseURL     string        `json:"base_url"`
	Timeout     time.Duration `json:"timeout"`
	CacheTTL    time.Duration `json:"cache_ttl"`
	RateLimitMS int           `json:"rate_limit_ms"` // Milliseconds between requests
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://api.search.brave.com/res/v1/web/search",
		Timeout:     15 * time.Second,
		CacheTTL:    5 * time.Minute,
		RateLimitMS: 1000, // Brave free tier allows one request per second
	}
}

// UpstreamError reports a non-success status from the Brave Search API.
// The transport layer passes the upstream status code through to the client.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return e.Body
}
