package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/flipfolio/backend/src/database"
	"github.com/username/flipfolio/backend/src/logger"
	"github.com/username/flipfolio/backend/src/models"
	"github.com/username/flipfolio/backend/src/security/validation"
)

type stubCatalog struct {
	results map[string][]models.CatalogMatch
	err     error
	calls   int
}

func (s *stubCatalog) Search(ctx context.Context, query string) ([]models.CatalogMatch, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results[strings.ToLower(query)], nil
}

func int64Ptr(v int64) *int64 { return &v }

func newTestImportService(t *testing.T, catalog CatalogService) ImportService {
	t.Helper()
	logger.InitLogger("error")
	database.InitDB(filepath.Join(t.TempDir(), "flipfolio_test.db"))
	return NewImportService(catalog, cache.New(time.Minute, 5*time.Minute))
}

func TestNormalizeOCRConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 1},
		{-3, 1},
		{0.45, 0.45},
		{1, 1},
		{90, 0.9},
		{100, 1},
		{250, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeOCRConfidence(tt.in), "NormalizeOCRConfidence(%v)", tt.in)
	}
}

func TestScanTextPipeline(t *testing.T) {
	catalog := &stubCatalog{results: map[string][]models.CatalogMatch{
		"dragon bones": {{ID: 536, Name: "Dragon bones", Price: int64Ptr(2800)}},
		"yew logs":     {{ID: 1515, Name: "Yew logs", Price: int64Ptr(280)}},
	}}
	svc := newTestImportService(t, catalog)

	rows, err := svc.ScanText(context.Background(), 1, "1.2K x Dragon bones\nBank\n500 Yew logs", 90)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].Match)
	assert.Equal(t, int64(536), rows[0].Match.ID)
	assert.Equal(t, 1200, rows[0].Candidate.Quantity)
	// Extraction 0.7 scaled by 0.9, exact name match.
	assert.InDelta(t, 0.63, rows[0].Candidate.Confidence, 1e-9)
	assert.InDelta(t, 0.63, rows[0].MatchConfidence, 1e-9)
	assert.True(t, rows[0].Selected)
	assert.Equal(t, int64(2800), rows[0].BuyPrice)

	require.NotNil(t, rows[1].Match)
	assert.Equal(t, int64(1515), rows[1].Match.ID)
	assert.Equal(t, 500, rows[1].Candidate.Quantity)
}

func TestScanTextSurvivesCatalogOutage(t *testing.T) {
	catalog := &stubCatalog{err: assert.AnError}
	svc := newTestImportService(t, catalog)

	rows, err := svc.ScanText(context.Background(), 1, "500 Yew logs", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Match)
	assert.False(t, rows[0].Selected)
}

func TestScanTextEmptyInput(t *testing.T) {
	svc := newTestImportService(t, &stubCatalog{})

	rows, err := svc.ScanText(context.Background(), 1, "Bank\nTab 2\n\n", 0)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestConfirmImportRequiresEligibleCandidates(t *testing.T) {
	svc := newTestImportService(t, &stubCatalog{})

	match := &models.CatalogMatch{ID: 536, Name: "Dragon bones"}
	candidates := []models.ImportCandidate{
		{Match: match, Selected: false},
		{Match: nil, Selected: true},
	}
	_, err := svc.ConfirmImport(context.Background(), 1, candidates)
	assert.ErrorIs(t, err, ErrNoEligibleCandidates)

	_, err = svc.ConfirmImport(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrNoEligibleCandidates)
}

func TestConfirmImportRejectsInvalidCandidates(t *testing.T) {
	svc := newTestImportService(t, &stubCatalog{})
	ctx := context.Background()

	valid := models.ImportCandidate{
		Candidate: models.RecognizedCandidate{RawName: "Dragon bones", Quantity: 10},
		Match:     &models.CatalogMatch{ID: 536, Name: "Dragon bones"},
		Selected:  true,
		BuyPrice:  2800,
	}

	zeroQty := valid
	zeroQty.Candidate.Quantity = 0
	negativeQty := valid
	negativeQty.Candidate.Quantity = -50
	negativePrice := valid
	negativePrice.BuyPrice = -100

	for _, bad := range []models.ImportCandidate{zeroQty, negativeQty, negativePrice} {
		_, err := svc.ConfirmImport(ctx, 1, []models.ImportCandidate{valid, bad})
		assert.ErrorIs(t, err, validation.ErrValidationFailed)
	}

	// One bad row rejects the whole batch; nothing is persisted.
	holdings, err := svc.ListHoldings(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestConfirmImportPersistsHoldings(t *testing.T) {
	svc := newTestImportService(t, &stubCatalog{})
	ctx := context.Background()

	candidates := []models.ImportCandidate{
		{
			Candidate: models.RecognizedCandidate{RawName: "Dragon bones", Quantity: 10},
			Match:     &models.CatalogMatch{ID: 536, Name: "Dragon bones", Icon: "536.png"},
			Selected:  true,
			BuyPrice:  2800,
		},
		{
			Candidate: models.RecognizedCandidate{RawName: "Yew logs", Quantity: 500},
			Match:     &models.CatalogMatch{ID: 1515, Name: "Yew logs"},
			Selected:  true,
			BuyPrice:  280,
		},
	}
	imported, err := svc.ConfirmImport(ctx, 1, candidates)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	holdings, err := svc.ListHoldings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	// Ordered by item name.
	assert.Equal(t, "Dragon bones", holdings[0].ItemName)
	assert.Equal(t, int64(536), holdings[0].ItemID)
	assert.Equal(t, 10, holdings[0].Quantity)
	assert.Equal(t, int64(2800), holdings[0].AvgBuyPrice)
	assert.Equal(t, "536.png", holdings[0].Icon)
	assert.Equal(t, "Yew logs", holdings[1].ItemName)
}

func TestConfirmImportMergesReimportedItems(t *testing.T) {
	svc := newTestImportService(t, &stubCatalog{})
	ctx := context.Background()

	first := []models.ImportCandidate{{
		Candidate: models.RecognizedCandidate{RawName: "Dragon bones", Quantity: 10},
		Match:     &models.CatalogMatch{ID: 536, Name: "Dragon bones"},
		Selected:  true,
		BuyPrice:  2800,
	}}
	second := []models.ImportCandidate{{
		Candidate: models.RecognizedCandidate{RawName: "Dragon bones", Quantity: 10},
		Match:     &models.CatalogMatch{ID: 536, Name: "Dragon bones"},
		Selected:  true,
		BuyPrice:  3000,
	}}

	_, err := svc.ConfirmImport(ctx, 1, first)
	require.NoError(t, err)

	// Prime the cache, then confirm again; the second confirmation must
	// invalidate it so the merged row is visible.
	_, err = svc.ListHoldings(ctx, 1)
	require.NoError(t, err)

	_, err = svc.ConfirmImport(ctx, 1, second)
	require.NoError(t, err)

	holdings, err := svc.ListHoldings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, 20, holdings[0].Quantity)
	// Weighted average: (2800*10 + 3000*10) / 20.
	assert.Equal(t, int64(2900), holdings[0].AvgBuyPrice)
}

func TestListHoldingsScopedToAccount(t *testing.T) {
	svc := newTestImportService(t, &stubCatalog{})
	ctx := context.Background()

	_, err := svc.ConfirmImport(ctx, 1, []models.ImportCandidate{{
		Candidate: models.RecognizedCandidate{RawName: "Coal", Quantity: 100},
		Match:     &models.CatalogMatch{ID: 453, Name: "Coal"},
		Selected:  true,
		BuyPrice:  150,
	}})
	require.NoError(t, err)

	holdings, err := svc.ListHoldings(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}
