package services

import (
	"context"
	"errors"

	"github.com/username/flipfolio/backend/src/models"
)

var (
	// ErrNoEligibleCandidates rejects an import confirmation in which
	// nothing is both selected and matched against the catalog.
	ErrNoEligibleCandidates = errors.New("no eligible import candidates selected")

	// ErrTradeNotFound covers lookups and updates against trades that do
	// not exist, belong to another account, or were already closed.
	ErrTradeNotFound = errors.New("trade not found")
)

// CatalogService is the live item-catalog search collaborator.
type CatalogService interface {
	Search(ctx context.Context, query string) ([]models.CatalogMatch, error)
}

// ImportService runs the screenshot ingestion pipeline: recognized text
// in, review-ready candidates out, confirmed candidates persisted as
// holdings.
type ImportService interface {
	ScanText(ctx context.Context, accountID int64, rawText string, ocrConfidence float64) ([]models.ImportCandidate, error)
	ConfirmImport(ctx context.Context, accountID int64, candidates []models.ImportCandidate) (int, error)
	ListHoldings(ctx context.Context, accountID int64) ([]models.Holding, error)
}

// TradeService owns trade records and the derived trading profile.
type TradeService interface {
	CreateTrade(ctx context.Context, accountID int64, trade models.Trade) (models.Trade, error)
	CloseTrade(ctx context.Context, accountID, tradeID, sellPrice, sellTimeMs int64) error
	DeleteTrade(ctx context.Context, accountID, tradeID int64) error
	ListTrades(ctx context.Context, accountID int64) ([]models.TradeReport, error)
	GetProfile(ctx context.Context, accountID int64) (models.TradingProfile, error)
}
