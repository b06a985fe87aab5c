package processors

import (
	"github.com/username/flipfolio/backend/src/models"
)

// Pre-selection thresholds. A high-confidence extraction alone
// justifies pre-selecting a row even with a middling text match, and
// vice versa.
const (
	selectionMatchThreshold      = 0.5
	selectionExtractionThreshold = 0.7
)

// PriceSource resolves the suggested buy price for a catalog match.
type PriceSource func(models.CatalogMatch) int64

// DefaultPriceSource uses the catalog's current price, or 0 when the
// catalog has none.
func DefaultPriceSource(m models.CatalogMatch) int64 {
	if m.Price != nil {
		return *m.Price
	}
	return 0
}

// BuildImportCandidates turns matched candidates into review-ready
// import rows. Rows resolving to the same catalog item are merged:
// quantities add up and the higher-confidence reading wins. Unmatched
// rows have no catalog identity and are never merged.
func BuildImportCandidates(matched []models.MatchedCandidate, priceSource PriceSource) []models.ImportCandidate {
	if priceSource == nil {
		priceSource = DefaultPriceSource
	}

	var out []models.ImportCandidate
	byItem := make(map[int64]int) // catalog id -> index into out

	for _, mc := range matched {
		if mc.Match != nil {
			if idx, ok := byItem[mc.Match.ID]; ok {
				merged := &out[idx]
				qty := merged.Candidate.Quantity + mc.Candidate.Quantity
				if mc.MatchConfidence > merged.MatchConfidence {
					merged.Candidate = mc.Candidate
					merged.MatchConfidence = mc.MatchConfidence
				}
				merged.Candidate.Quantity = qty
				merged.Selected = merged.Selected || preSelected(mc)
				continue
			}
		}

		row := models.ImportCandidate{
			Candidate:       mc.Candidate,
			Match:           mc.Match,
			MatchConfidence: mc.MatchConfidence,
			Selected:        preSelected(mc),
		}
		if mc.Match != nil {
			row.BuyPrice = priceSource(*mc.Match)
			byItem[mc.Match.ID] = len(out)
		}
		out = append(out, row)
	}
	return out
}

func preSelected(mc models.MatchedCandidate) bool {
	if mc.Match == nil {
		return false
	}
	return mc.MatchConfidence > selectionMatchThreshold ||
		mc.Candidate.Confidence > selectionExtractionThreshold
}

// EligibleForSubmission filters to the rows that may actually be
// persisted: selected by the user and resolved against the catalog.
func EligibleForSubmission(candidates []models.ImportCandidate) []models.ImportCandidate {
	var eligible []models.ImportCandidate
	for _, c := range candidates {
		if c.Eligible() {
			eligible = append(eligible, c)
		}
	}
	return eligible
}
