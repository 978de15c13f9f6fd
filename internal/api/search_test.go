package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpgate/mcpgate/internal/conf"
	"github.com/mcpgate/mcpgate/internal/observability"
	"github.com/mcpgate/mcpgate/internal/search"
	"github.com/mcpgate/mcpgate/internal/securefs"
)

// setupSearchController builds a controller whose search client carries an
// upstream credential, with httpmock installed on its transport.
func setupSearchController(t *testing.T) *Controller {
	t.Helper()

	sfs, err := securefs.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sfs.Close() })

	settings := &conf.Settings{}
	settings.Server.Host = "localhost"
	settings.Server.Port = 8000

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	searchClient := search.NewClient(search.Config{
		APIKey:      "test-token",
		BaseURL:     "https://api.search.example.com/res/v1/web/search",
		RateLimitMS: 1,
	}, nil)
	t.Cleanup(searchClient.Close)

	httpmock.ActivateNonDefault(searchClient.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	return New(settings, sfs, searchClient, metrics, nil)
}

func TestSearchWeb_Success(t *testing.T) {
	controller := setupSearchController(t)

	httpmock.RegisterResponder(http.MethodGet, "https://api.search.example.com/res/v1/web/search",
		httpmock.NewStringResponder(http.StatusOK, `{
			"web": {
				"total_results": 42,
				"results": [
					{"title": "First", "url": "https://example.com/1", "description": "one"},
					{"title": "Second", "url": "https://example.com/2", "description": "two"}
				]
			}
		}`))

	rec := doRequest(t, controller, http.MethodPost, "/search", `{"query":"golang"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp search.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "First", resp.Results[0].Title)
	assert.Equal(t, 42, resp.TotalCount)
	require.NotNil(t, resp.NextOffset)
	assert.Equal(t, 10, *resp.NextOffset)
}

func TestSearchWeb_EmptyQuery(t *testing.T) {
	controller := setupSearchController(t)

	rec := doRequest(t, controller, http.MethodPost, "/search", `{"query":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchWeb_UpstreamFailurePassthrough(t *testing.T) {
	controller := setupSearchController(t)

	httpmock.RegisterResponder(http.MethodGet, "https://api.search.example.com/res/v1/web/search",
		httpmock.NewStringResponder(http.StatusTooManyRequests, `{"error":"rate limited"}`))

	rec := doRequest(t, controller, http.MethodPost, "/search", `{"query":"golang"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSearchWeb_MissingCredential(t *testing.T) {
	// Client from the default fixture has no upstream key configured
	controller, _ := setupTestController(t, "")

	rec := doRequest(t, controller, http.MethodPost, "/search", `{"query":"golang"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
