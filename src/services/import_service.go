package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/flipfolio/backend/src/database"
	"github.com/username/flipfolio/backend/src/logger"
	"github.com/username/flipfolio/backend/src/models"
	"github.com/username/flipfolio/backend/src/parsers"
	"github.com/username/flipfolio/backend/src/processors"
	"github.com/username/flipfolio/backend/src/security/validation"
	"github.com/username/flipfolio/backend/src/utils"
)

const ckHoldings = "res_holdings_account_%d"

type importServiceImpl struct {
	catalog     CatalogService
	reportCache *cache.Cache
}

func NewImportService(catalog CatalogService, reportCache *cache.Cache) ImportService {
	return &importServiceImpl{
		catalog:     catalog,
		reportCache: reportCache,
	}
}

// NormalizeOCRConfidence brings the recognition collaborator's overall
// confidence into the 0-1 range. Providers report either 0-1 or 0-100;
// a missing value means the scalar was not reported and scales by 1.
func NormalizeOCRConfidence(v float64) float64 {
	if v <= 0 {
		return 1
	}
	if v > 1 {
		v /= 100
	}
	return utils.ClampUnit(v)
}

// ScanText runs the full screenshot ingestion pipeline: sanitize the
// recognized text, extract candidate items, resolve each against the
// catalog and assemble review-ready import rows.
func (s *importServiceImpl) ScanText(ctx context.Context, accountID int64, rawText string, ocrConfidence float64) ([]models.ImportCandidate, error) {
	start := time.Now()
	logger.L.Info("ScanText START", "accountID", accountID, "textBytes", len(rawText))

	text := validation.StripUnprintable(rawText)
	scale := NormalizeOCRConfidence(ocrConfidence)

	candidates := parsers.ParseLinesAll(text)
	for i := range candidates {
		candidates[i].Confidence *= scale
	}

	matcher := processors.NewCatalogMatcher(s.catalog.Search)
	matched := matcher.MatchCandidates(ctx, candidates)
	rows := processors.BuildImportCandidates(matched, nil)
	if rows == nil {
		rows = []models.ImportCandidate{}
	}

	logger.L.Info("ScanText END", "accountID", accountID, "candidates", len(rows), "duration", time.Since(start))
	return rows, nil
}

// ConfirmImport persists the eligible candidates as holdings in one
// transaction and reports how many were written. Re-imported items are
// merged additively with a weighted average buy price.
func (s *importServiceImpl) ConfirmImport(ctx context.Context, accountID int64, candidates []models.ImportCandidate) (int, error) {
	eligible := processors.EligibleForSubmission(candidates)
	if len(eligible) == 0 {
		return 0, ErrNoEligibleCandidates
	}
	for _, c := range eligible {
		if err := validation.ValidateHolding(c.Match.Name, c.Candidate.Quantity, c.BuyPrice); err != nil {
			return 0, err
		}
	}

	dbTx, err := database.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO holdings (account_id, item_id, item_name, icon, quantity, avg_buy_price, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, item_id) DO UPDATE SET
			avg_buy_price = (holdings.avg_buy_price * holdings.quantity + excluded.avg_buy_price * excluded.quantity) / (holdings.quantity + excluded.quantity),
			quantity = holdings.quantity + excluded.quantity`)
	if err != nil {
		return 0, fmt.Errorf("error preparing holdings insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range eligible {
		_, err := stmt.Exec(accountID, c.Match.ID, c.Match.Name, c.Match.Icon, c.Candidate.Quantity, c.BuyPrice, c.CategoryID)
		if err != nil {
			return 0, fmt.Errorf("error inserting holding (itemID: %d): %w", c.Match.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing holdings: %w", err)
	}

	s.reportCache.Delete(fmt.Sprintf(ckHoldings, accountID))
	logger.L.Info("Import confirmed", "accountID", accountID, "imported", len(eligible))
	return len(eligible), nil
}

func (s *importServiceImpl) ListHoldings(ctx context.Context, accountID int64) ([]models.Holding, error) {
	cacheKey := fmt.Sprintf(ckHoldings, accountID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for holdings", "accountID", accountID)
		return cached.([]models.Holding), nil
	}

	rows, err := database.DB.QueryContext(ctx, `SELECT id, item_id, item_name, icon, quantity, avg_buy_price, category_id
		FROM holdings WHERE account_id = ? ORDER BY item_name ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("error querying holdings for accountID %d: %w", accountID, err)
	}
	defer rows.Close()

	holdings := []models.Holding{}
	for rows.Next() {
		var h models.Holding
		h.AccountID = accountID
		if err := rows.Scan(&h.ID, &h.ItemID, &h.ItemName, &h.Icon, &h.Quantity, &h.AvgBuyPrice, &h.CategoryID); err != nil {
			return nil, fmt.Errorf("error scanning holding row for accountID %d: %w", accountID, err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over holding rows for accountID %d: %w", accountID, err)
	}

	s.reportCache.Set(cacheKey, holdings, cache.DefaultExpiration)
	return holdings, nil
}
