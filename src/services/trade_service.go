package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/flipfolio/backend/src/database"
	"github.com/username/flipfolio/backend/src/logger"
	"github.com/username/flipfolio/backend/src/models"
	"github.com/username/flipfolio/backend/src/processors"
	"github.com/username/flipfolio/backend/src/security/validation"
)

const ckTradingProfile = "agg_trading_profile_account_%d"

type tradeServiceImpl struct {
	profileProcessor *processors.ProfileProcessor
	reportCache      *cache.Cache
	profileTTL       time.Duration
}

func NewTradeService(profileProcessor *processors.ProfileProcessor, reportCache *cache.Cache, profileTTL time.Duration) TradeService {
	return &tradeServiceImpl{
		profileProcessor: profileProcessor,
		reportCache:      reportCache,
		profileTTL:       profileTTL,
	}
}

func (s *tradeServiceImpl) CreateTrade(ctx context.Context, accountID int64, trade models.Trade) (models.Trade, error) {
	if err := validation.ValidateNewTrade(trade.ItemName, trade.Quantity, trade.BuyPrice); err != nil {
		return models.Trade{}, err
	}
	if trade.BuyTime == 0 {
		trade.BuyTime = time.Now().UnixMilli()
	}
	trade.AccountID = accountID

	res, err := database.DB.ExecContext(ctx, `INSERT INTO trades (account_id, item_id, item_name, quantity, buy_price, sell_price, buy_time, sell_time, strategy, is_members)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		accountID, trade.ItemID, trade.ItemName, trade.Quantity, trade.BuyPrice, trade.SellPrice, trade.BuyTime, trade.SellTime, trade.Strategy, trade.IsMembers)
	if err != nil {
		return models.Trade{}, fmt.Errorf("error inserting trade for accountID %d: %w", accountID, err)
	}
	trade.ID, err = res.LastInsertId()
	if err != nil {
		return models.Trade{}, fmt.Errorf("error reading inserted trade id: %w", err)
	}

	s.invalidateAccountCache(accountID)
	logger.L.Info("Trade created", "accountID", accountID, "tradeID", trade.ID, "item", trade.ItemName)
	return trade, nil
}

// CloseTrade records the sale of an open position. Closing a trade that
// does not exist, belongs to another account, or is already closed
// reports ErrTradeNotFound.
func (s *tradeServiceImpl) CloseTrade(ctx context.Context, accountID, tradeID, sellPrice, sellTimeMs int64) error {
	if sellPrice < 0 {
		return fmt.Errorf("%w: sell price cannot be negative", validation.ErrValidationFailed)
	}
	if sellTimeMs == 0 {
		sellTimeMs = time.Now().UnixMilli()
	}

	res, err := database.DB.ExecContext(ctx, `UPDATE trades SET sell_price = ?, sell_time = ?
		WHERE id = ? AND account_id = ? AND deleted = FALSE AND sell_price IS NULL`,
		sellPrice, sellTimeMs, tradeID, accountID)
	if err != nil {
		return fmt.Errorf("error closing trade %d for accountID %d: %w", tradeID, accountID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking close result for trade %d: %w", tradeID, err)
	}
	if affected == 0 {
		return ErrTradeNotFound
	}

	s.invalidateAccountCache(accountID)
	logger.L.Info("Trade closed", "accountID", accountID, "tradeID", tradeID, "sellPrice", sellPrice)
	return nil
}

func (s *tradeServiceImpl) DeleteTrade(ctx context.Context, accountID, tradeID int64) error {
	res, err := database.DB.ExecContext(ctx, `UPDATE trades SET deleted = TRUE
		WHERE id = ? AND account_id = ? AND deleted = FALSE`, tradeID, accountID)
	if err != nil {
		return fmt.Errorf("error deleting trade %d for accountID %d: %w", tradeID, accountID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking delete result for trade %d: %w", tradeID, err)
	}
	if affected == 0 {
		return ErrTradeNotFound
	}

	s.invalidateAccountCache(accountID)
	logger.L.Info("Trade deleted", "accountID", accountID, "tradeID", tradeID)
	return nil
}

// ListTrades returns the account's live trades, newest first, each with
// its computed economics so every surface reports the same numbers.
func (s *tradeServiceImpl) ListTrades(ctx context.Context, accountID int64) ([]models.TradeReport, error) {
	trades, err := fetchAccountTrades(ctx, accountID)
	if err != nil {
		return nil, err
	}

	reports := make([]models.TradeReport, 0, len(trades))
	for i := len(trades) - 1; i >= 0; i-- {
		t := trades[i]
		reports = append(reports, models.TradeReport{
			Trade:     t,
			Economics: processors.ComputeProfit(&t),
		})
	}
	return reports, nil
}

func (s *tradeServiceImpl) GetProfile(ctx context.Context, accountID int64) (models.TradingProfile, error) {
	cacheKey := fmt.Sprintf(ckTradingProfile, accountID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for trading profile", "accountID", accountID)
		return cached.(models.TradingProfile), nil
	}

	trades, err := fetchAccountTrades(ctx, accountID)
	if err != nil {
		return models.TradingProfile{}, err
	}

	profile := s.profileProcessor.Synthesize(trades)
	s.reportCache.Set(cacheKey, profile, s.profileTTL)
	logger.L.Info("Trading profile synthesized", "accountID", accountID, "completedTrades", profile.TotalTrades)
	return profile, nil
}

func (s *tradeServiceImpl) invalidateAccountCache(accountID int64) {
	s.reportCache.Delete(fmt.Sprintf(ckTradingProfile, accountID))
}

func fetchAccountTrades(ctx context.Context, accountID int64) ([]models.Trade, error) {
	logger.L.Debug("Fetching trades from DB", "accountID", accountID)
	rows, err := database.DB.QueryContext(ctx, `SELECT id, item_id, item_name, quantity, buy_price, sell_price, buy_time, sell_time, strategy, is_members
		FROM trades WHERE account_id = ? AND deleted = FALSE ORDER BY buy_time ASC, id ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("error querying trades for accountID %d: %w", accountID, err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t := models.Trade{AccountID: accountID}
		if err := rows.Scan(&t.ID, &t.ItemID, &t.ItemName, &t.Quantity, &t.BuyPrice, &t.SellPrice, &t.BuyTime, &t.SellTime, &t.Strategy, &t.IsMembers); err != nil {
			return nil, fmt.Errorf("error scanning trade row for accountID %d: %w", accountID, err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over trade rows for accountID %d: %w", accountID, err)
	}
	return trades, nil
}
