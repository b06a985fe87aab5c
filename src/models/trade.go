package models

// Trade represents a single buy/sell cycle (a "flip") on one item.
// SellPrice and SellTime are nil while the position is still open.
// Timestamps are Unix milliseconds.
type Trade struct {
	ID        int64  `json:"id,omitempty"` // Database primary key
	AccountID int64  `json:"account_id,omitempty"`
	ItemID    *int64 `json:"item_id"` // Catalog id, nil when the item was never matched
	ItemName  string `json:"item_name"`
	Quantity  int    `json:"quantity"`
	BuyPrice  int64  `json:"buy_price"` // Per-unit, in base currency units
	SellPrice *int64 `json:"sell_price"`
	BuyTime   int64  `json:"buy_time"`
	SellTime  *int64 `json:"sell_time"`
	Strategy  string `json:"strategy,omitempty"` // Free-text category, e.g. "Fast Flip", "Speculative"
	IsMembers bool   `json:"is_members"`
	Deleted   bool   `json:"-"`
}

// Completed reports whether the trade has been sold. Profit and ROI are
// undefined for open positions.
func (t *Trade) Completed() bool {
	return t.SellPrice != nil
}

// TradeReport pairs a trade with its computed economics for reporting
// surfaces. Economics is nil for open positions.
type TradeReport struct {
	Trade     Trade      `json:"trade"`
	Economics *TaxResult `json:"economics"`
}

// TaxResult holds the economics of one completed trade after the
// marketplace transaction tax.
type TaxResult struct {
	GrossRevenue int64   `json:"gross_revenue"`
	Tax          int64   `json:"tax"`
	NetRevenue   int64   `json:"net_revenue"`
	TotalCost    int64   `json:"total_cost"`
	Profit       int64   `json:"profit"`
	ROIPercent   float64 `json:"roi_percent"`
}
