package models

// Risk classifications derived from a trader's history.
const (
	RiskConservative = "conservative"
	RiskModerate     = "moderate"
	RiskAggressive   = "aggressive"
)

// Membership preferences.
const (
	PrefMembers = "members"
	PrefF2P     = "f2p"
	PrefBoth    = "both"
)

// StrategyStats accumulates per-strategy performance across completed
// trades.
type StrategyStats struct {
	Strategy    string  `json:"strategy"`
	Count       int     `json:"count"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"` // 0-100
	TotalProfit int64   `json:"total_profit"`
	AvgROI      float64 `json:"avg_roi"`
}

// ItemPerformance is one item's aggregate result, used for the
// top-performing and frequently-traded lists.
type ItemPerformance struct {
	ItemName    string `json:"item_name"`
	Count       int    `json:"count"`
	TotalProfit int64  `json:"total_profit"`
}

// PriceRange is the span of per-unit prices the trader has operated in.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// VolumeWindows sums traded value over three rolling windows measured
// from each trade's buy timestamp.
type VolumeWindows struct {
	Day   int64 `json:"day"`
	Week  int64 `json:"week"`
	Month int64 `json:"month"`
}

// TradingProfile is the behavioral summary of an account's completed
// trades. It is derived on demand and never persisted.
type TradingProfile struct {
	TotalTrades          int             `json:"total_trades"`
	TotalProfit          int64           `json:"total_profit"`
	AvgROI               float64         `json:"avg_roi"`
	AvgHoldTimeMs        int64           `json:"avg_hold_time_ms"`
	RiskProfile          string          `json:"risk_profile"`
	MembershipPreference string          `json:"membership_preference"`
	Strategies           []StrategyStats `json:"strategies"`
	PriceRange           PriceRange      `json:"price_range"`
	TopItems             []ItemPerformance `json:"top_items"`
	FrequentItems        []ItemPerformance `json:"frequent_items"`
	Volume               VolumeWindows   `json:"volume"`
}
