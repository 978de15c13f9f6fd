package search

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpgate/mcpgate/internal/errors"
)

const testBaseURL = "https://api.search.brave.com/res/v1/web/search"

// newMockedClient returns a client whose HTTP transport is intercepted by
// httpmock and whose rate limiter fires immediately.
func newMockedClient(t *testing.T, apiKey string) *Client {
	t.Helper()

	client := NewClient(Config{
		APIKey:      apiKey,
		BaseURL:     testBaseURL,
		Timeout:     5 * time.Second,
		RateLimitMS: 1,
	}, nil)
	t.Cleanup(client.Close)

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func braveSuccessBody() string {
	return `{
		"web": {
			"results": [
				{
					"title": "Example Domain",
					"url": "https://example.com",
					"description": "Example description",
					"published_date": "2024-05-01"
				},
				{
					"title": "Second Result",
					"url": "https://example.org",
					"description": "Another description"
				}
			],
			"total_results": 40
		}
	}`
}

func TestSearch_Success(t *testing.T) {
	client := newMockedClient(t, "test-token")

	httpmock.RegisterResponder(http.MethodGet, testBaseURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "test-token", req.Header.Get("X-Subscription-Token"))
			assert.Equal(t, "golang", req.URL.Query().Get("q"))
			assert.Equal(t, "10", req.URL.Query().Get("count"))
			assert.Equal(t, "US", req.URL.Query().Get("country"))
			assert.Equal(t, "en", req.URL.Query().Get("search_lang"))
			return httpmock.NewStringResponse(http.StatusOK, braveSuccessBody()), nil
		})

	response, err := client.Search(context.Background(), SearchRequest{Query: "golang"})
	require.NoError(t, err)

	require.Len(t, response.Results, 2)
	assert.Equal(t, "Example Domain", response.Results[0].Title)
	assert.Equal(t, "https://example.com", response.Results[0].URL)
	assert.Equal(t, "2024-05-01", response.Results[0].PublishedDate)
	assert.Equal(t, 40, response.TotalCount)
	require.NotNil(t, response.NextOffset)
	assert.Equal(t, 10, *response.NextOffset)
}

func TestSearch_NoNextOffsetAtEnd(t *testing.T) {
	client := newMockedClient(t, "test-token")

	httpmock.RegisterResponder(http.MethodGet, testBaseURL,
		httpmock.NewStringResponder(http.StatusOK, `{"web":{"results":[],"total_results":5}}`))

	response, err := client.Search(context.Background(), SearchRequest{Query: "rare", Offset: 0, Count: 10})
	require.NoError(t, err)
	assert.Nil(t, response.NextOffset)
}

func TestSearch_NoAPIKey(t *testing.T) {
	client := NewClient(Config{RateLimitMS: 1}, nil)
	defer client.Close()

	_, err := client.Search(context.Background(), SearchRequest{Query: "anything"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.Contains(t, err.Error(), "BRAVE_API_KEY")
}

func TestSearch_UpstreamError(t *testing.T) {
	client := newMockedClient(t, "test-token")

	httpmock.RegisterResponder(http.MethodGet, testBaseURL,
		httpmock.NewStringResponder(http.StatusUnprocessableEntity, `{"error":"bad query"}`))

	_, err := client.Search(context.Background(), SearchRequest{Query: "bad"})
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.StatusCode)
	assert.True(t, errors.IsCategory(err, errors.CategoryHTTP))
}

func TestSearch_CancelledDuringRateLimitWait(t *testing.T) {
	t.Parallel()

	// A rate limit window far longer than the test; the cancelled context
	// must win the wait instead of consuming a tick.
	client := NewClient(Config{
		APIKey:      "test-token",
		BaseURL:     testBaseURL,
		RateLimitMS: 60_000,
	}, nil)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		_, err := client.Search(ctx, SearchRequest{Query: "anything"})
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Search did not return promptly after context cancellation")
	}
}

func TestSearch_CachesResponses(t *testing.T) {
	client := newMockedClient(t, "test-token")

	httpmock.RegisterResponder(http.MethodGet, testBaseURL,
		httpmock.NewStringResponder(http.StatusOK, braveSuccessBody()))

	_, err := client.Search(context.Background(), SearchRequest{Query: "golang"})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), SearchRequest{Query: "golang"})
	require.NoError(t, err)

	assert.Equal(t, 1, httpmock.GetTotalCallCount(), "second identical query must be served from cache")
}

func TestSearchRequest_Normalize(t *testing.T) {
	t.Parallel()

	req := SearchRequest{Query: "x"}
	req.Normalize()
	assert.Equal(t, DefaultCount, req.Count)
	assert.Equal(t, 0, req.Offset)
	assert.Equal(t, DefaultCountry, req.Country)
	assert.Equal(t, DefaultSearchLang, req.SearchLang)

	req = SearchRequest{Query: "x", Count: 3, Offset: 6, Country: "FI", SearchLang: "fi"}
	req.Normalize()
	assert.Equal(t, 3, req.Count)
	assert.Equal(t, 6, req.Offset)
	assert.Equal(t, "FI", req.Country)
	assert.Equal(t, "fi", req.SearchLang)
}
