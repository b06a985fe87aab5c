package processors

import (
	"sort"
	"time"

	"github.com/username/flipfolio/backend/src/models"
	"github.com/username/flipfolio/backend/src/utils"
)

// Rolling volume windows, measured from each trade's buy timestamp.
const (
	windowDayMs   = 86_400_000
	windowWeekMs  = 604_800_000
	windowMonthMs = 2_592_000_000
)

// Strategy tags with special meaning for risk classification.
const (
	StrategySpeculative = "Speculative"
	StrategyFastFlip    = "Fast Flip"
	StrategyOther       = "Other"
)

// Risk and list-size thresholds.
const (
	aggressiveROIThreshold   = 15.0
	conservativeROIThreshold = 5.0
	topItemsLimit            = 5
	frequentItemsLimit       = 10
)

// ProfileProcessor aggregates an account's completed trades into the
// behavioral statistics consumed by the recommendation layer.
type ProfileProcessor struct {
	now func() time.Time
}

func NewProfileProcessor() *ProfileProcessor {
	return &ProfileProcessor{now: time.Now}
}

type strategyTally struct {
	count       int
	wins        int
	totalProfit int64
	sumROI      float64
}

type itemTally struct {
	count       int
	totalProfit int64
}

// Synthesize derives a trading profile from the full trade set. Open and
// deleted trades are ignored. Purely input-driven: no side effects, no
// caching, recomputed fresh on every call.
func (p *ProfileProcessor) Synthesize(trades []models.Trade) models.TradingProfile {
	nowMs := p.now().UnixMilli()

	strategies := make(map[string]*strategyTally)
	items := make(map[string]*itemTally)
	var profile models.TradingProfile
	var totalROI float64
	var totalHoldMs int64
	var membersCount, f2pCount int
	var minPrice, maxPrice int64

	completed := 0
	for _, t := range trades {
		if t.Deleted || !t.Completed() {
			continue
		}
		res := ComputeProfit(&t)
		if res == nil {
			continue
		}
		completed++

		strategy := t.Strategy
		if strategy == "" {
			strategy = StrategyOther
		}
		tally := strategies[strategy]
		if tally == nil {
			tally = &strategyTally{}
			strategies[strategy] = tally
		}
		tally.count++
		tally.totalProfit += res.Profit
		tally.sumROI += res.ROIPercent
		if res.Profit > 0 {
			tally.wins++
		}

		item := items[t.ItemName]
		if item == nil {
			item = &itemTally{}
			items[t.ItemName] = item
		}
		item.count++
		item.totalProfit += res.Profit

		profile.TotalProfit += res.Profit
		totalROI += res.ROIPercent
		if t.SellTime != nil {
			totalHoldMs += *t.SellTime - t.BuyTime
		}

		if t.IsMembers {
			membersCount++
		} else {
			f2pCount++
		}

		low, high := t.BuyPrice, *t.SellPrice
		if high < low {
			low, high = high, low
		}
		if completed == 1 || low < minPrice {
			minPrice = low
		}
		if high > maxPrice {
			maxPrice = high
		}

		elapsed := nowMs - t.BuyTime
		if elapsed < windowDayMs {
			profile.Volume.Day += res.GrossRevenue
		}
		if elapsed < windowWeekMs {
			profile.Volume.Week += res.GrossRevenue
		}
		if elapsed < windowMonthMs {
			profile.Volume.Month += res.GrossRevenue
		}
	}

	profile.TotalTrades = completed
	if completed == 0 {
		profile.RiskProfile = models.RiskModerate
		profile.MembershipPreference = models.PrefBoth
		return profile
	}

	profile.AvgROI = utils.RoundFloat(totalROI/float64(completed), 2)
	profile.AvgHoldTimeMs = totalHoldMs / int64(completed)
	profile.PriceRange = models.PriceRange{Min: minPrice, Max: maxPrice}
	profile.RiskProfile = classifyRisk(strategies, profile.AvgROI)
	profile.MembershipPreference = classifyMembership(membersCount, f2pCount)
	profile.Strategies = summarizeStrategies(strategies)
	profile.TopItems = rankItems(items, topItemsLimit, byProfit)
	profile.FrequentItems = rankItems(items, frequentItemsLimit, byCount)
	return profile
}

func classifyRisk(strategies map[string]*strategyTally, avgROI float64) string {
	speculative, fastFlip := 0, 0
	if t := strategies[StrategySpeculative]; t != nil {
		speculative = t.count
	}
	if t := strategies[StrategyFastFlip]; t != nil {
		fastFlip = t.count
	}
	switch {
	case speculative > 1 || avgROI > aggressiveROIThreshold:
		return models.RiskAggressive
	case fastFlip > 2 || avgROI < conservativeROIThreshold:
		return models.RiskConservative
	default:
		return models.RiskModerate
	}
}

func classifyMembership(members, f2p int) string {
	switch {
	case members > 2*f2p:
		return models.PrefMembers
	case f2p > 2*members:
		return models.PrefF2P
	default:
		return models.PrefBoth
	}
}

func summarizeStrategies(strategies map[string]*strategyTally) []models.StrategyStats {
	out := make([]models.StrategyStats, 0, len(strategies))
	for name, t := range strategies {
		out = append(out, models.StrategyStats{
			Strategy:    name,
			Count:       t.count,
			Wins:        t.wins,
			WinRate:     utils.RoundFloat(float64(t.wins)/float64(t.count)*100, 2),
			TotalProfit: t.totalProfit,
			AvgROI:      utils.RoundFloat(t.sumROI/float64(t.count), 2),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out
}

type itemRanking func(a, b models.ItemPerformance) bool

func byProfit(a, b models.ItemPerformance) bool {
	if a.TotalProfit != b.TotalProfit {
		return a.TotalProfit > b.TotalProfit
	}
	return a.ItemName < b.ItemName
}

func byCount(a, b models.ItemPerformance) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.ItemName < b.ItemName
}

func rankItems(items map[string]*itemTally, limit int, less itemRanking) []models.ItemPerformance {
	ranked := make([]models.ItemPerformance, 0, len(items))
	for name, t := range items {
		ranked = append(ranked, models.ItemPerformance{
			ItemName:    name,
			Count:       t.count,
			TotalProfit: t.totalProfit,
		})
	}
	sort.Slice(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
