package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/flipfolio/backend/src/logger"
	"github.com/username/flipfolio/backend/src/models"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// catalogItemPayload is the loose wire shape of one catalog search
// result. The catalog API is not under our control; absent or extra
// fields are tolerated and normalized at this boundary.
type catalogItemPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price *int64 `json:"price"`
	Icon  string `json:"icon"`
}

type catalogSearchResponse struct {
	Items []catalogItemPayload `json:"items"`
}

// catalogServiceImpl implements CatalogService against the live item
// price API, with a shared cookie jar, per-query memoization and a rate
// limiter so candidate batches never hammer the upstream.
type catalogServiceImpl struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	searchCache *cache.Cache
	limiter     *rate.Limiter
}

func NewCatalogService(baseURL, userAgent string, cacheTTL time.Duration, ratePerSec float64, httpTimeout time.Duration) CatalogService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar for catalog client", "error", err)
	}
	return &catalogServiceImpl{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: httpTimeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   userAgent,
		searchCache: cache.New(cacheTTL, 2*cacheTTL),
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// Search queries the catalog for items whose name matches query. The
// upstream owns the ranking; results come back in its order.
func (s *catalogServiceImpl) Search(ctx context.Context, query string) ([]models.CatalogMatch, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return nil, nil
	}
	if cached, found := s.searchCache.Get(key); found {
		logger.L.Debug("Catalog search cache hit", "query", key)
		return cached.([]models.CatalogMatch), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("catalog rate limiter: %w", err)
	}

	searchURL := fmt.Sprintf("%s/items?name=%s", s.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating catalog search request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading catalog search response: %w", err)
	}

	matches := normalizeCatalogPayload(body)
	s.searchCache.Set(key, matches, cache.DefaultExpiration)
	logger.L.Debug("Catalog search complete", "query", key, "results", len(matches))
	return matches, nil
}

// normalizeCatalogPayload accepts either a bare JSON array or an
// {"items": [...]} wrapper and drops entries without a usable identity.
func normalizeCatalogPayload(body []byte) []models.CatalogMatch {
	var payload []catalogItemPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		var wrapped catalogSearchResponse
		if err := json.Unmarshal(body, &wrapped); err != nil {
			logger.L.Warn("Unrecognized catalog search payload shape", "error", err)
			return nil
		}
		payload = wrapped.Items
	}

	matches := make([]models.CatalogMatch, 0, len(payload))
	for _, item := range payload {
		if item.ID <= 0 || strings.TrimSpace(item.Name) == "" {
			continue
		}
		matches = append(matches, models.CatalogMatch{
			ID:    item.ID,
			Name:  item.Name,
			Price: item.Price,
			Icon:  item.Icon,
		})
	}
	return matches
}
