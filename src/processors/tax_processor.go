package processors

import (
	"github.com/username/flipfolio/backend/src/models"
	"github.com/username/flipfolio/backend/src/utils"
)

// Marketplace transaction tax rules. The tax is taken per unit and
// floored before multiplying by quantity, matching the marketplace's
// own rounding, then the total is capped per trade.
const (
	TaxRatePercent        = 2
	TaxExemptionThreshold = 49
	TaxCap                = 5_000_000
)

// ComputeTax returns the total transaction tax for selling quantity
// units at sellPricePerUnit each. Items at or below the exemption
// threshold are tax free. Invalid inputs yield zero rather than an
// error; a bad trade row must not abort a report.
func ComputeTax(sellPricePerUnit int64, quantity int) int64 {
	if sellPricePerUnit <= TaxExemptionThreshold || quantity <= 0 {
		return 0
	}
	perUnit := sellPricePerUnit * TaxRatePercent / 100
	total := perUnit * int64(quantity)
	if total > TaxCap {
		return TaxCap
	}
	return total
}

// ComputeProfit computes the full economics of a trade. Returns nil for
// open positions, where profit is undefined. Negative inputs clamp to a
// zero result instead of propagating garbage.
func ComputeProfit(t *models.Trade) *models.TaxResult {
	if t == nil || !t.Completed() {
		return nil
	}
	sell := *t.SellPrice
	if t.Quantity <= 0 || sell < 0 || t.BuyPrice < 0 {
		return &models.TaxResult{}
	}

	qty := int64(t.Quantity)
	gross := sell * qty
	tax := ComputeTax(sell, t.Quantity)
	net := gross - tax
	cost := t.BuyPrice * qty
	profit := net - cost

	roi := 0.0
	if cost > 0 {
		roi = utils.RoundFloat(float64(profit)/float64(cost)*100, 2)
	}

	return &models.TaxResult{
		GrossRevenue: gross,
		Tax:          tax,
		NetRevenue:   net,
		TotalCost:    cost,
		Profit:       profit,
		ROIPercent:   roi,
	}
}
