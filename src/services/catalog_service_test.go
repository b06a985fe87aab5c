package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/flipfolio/backend/src/logger"
)

func newCatalogTestServer(t *testing.T, payload string, requests *int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			*requests++
		}
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "flipfolio-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestCatalogService(baseURL string) CatalogService {
	logger.InitLogger("error")
	return NewCatalogService(baseURL, "flipfolio-test", time.Minute, 1000, 5*time.Second)
}

func TestCatalogSearchBareArrayPayload(t *testing.T) {
	server := newCatalogTestServer(t, `[
		{"id": 536, "name": "Dragon bones", "price": 2800, "icon": "536.png"},
		{"id": 0, "name": "Broken entry"},
		{"id": 99, "name": "   "}
	]`, nil)
	svc := newTestCatalogService(server.URL)

	matches, err := svc.Search(context.Background(), "Dragon bones")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(536), matches[0].ID)
	assert.Equal(t, "Dragon bones", matches[0].Name)
	require.NotNil(t, matches[0].Price)
	assert.Equal(t, int64(2800), *matches[0].Price)
	assert.Equal(t, "536.png", matches[0].Icon)
}

func TestCatalogSearchWrappedPayload(t *testing.T) {
	server := newCatalogTestServer(t, `{"items": [{"id": 1515, "name": "Yew logs"}]}`, nil)
	svc := newTestCatalogService(server.URL)

	matches, err := svc.Search(context.Background(), "Yew logs")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(1515), matches[0].ID)
	assert.Nil(t, matches[0].Price)
}

func TestCatalogSearchCachesByNormalizedQuery(t *testing.T) {
	requests := 0
	server := newCatalogTestServer(t, `[{"id": 453, "name": "Coal"}]`, &requests)
	svc := newTestCatalogService(server.URL)
	ctx := context.Background()

	_, err := svc.Search(ctx, "Coal")
	require.NoError(t, err)
	_, err = svc.Search(ctx, "  coal ")
	require.NoError(t, err)

	assert.Equal(t, 1, requests)
}

func TestCatalogSearchEmptyQuery(t *testing.T) {
	requests := 0
	server := newCatalogTestServer(t, `[]`, &requests)
	svc := newTestCatalogService(server.URL)

	matches, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, matches)
	assert.Zero(t, requests)
}

func TestCatalogSearchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	svc := newTestCatalogService(server.URL)

	_, err := svc.Search(context.Background(), "Dragon bones")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCatalogSearchGarbagePayload(t *testing.T) {
	server := newCatalogTestServer(t, `"not a list"`, nil)
	svc := newTestCatalogService(server.URL)

	matches, err := svc.Search(context.Background(), "Dragon bones")
	require.NoError(t, err)
	assert.Empty(t, matches)
}
