package processors

import (
	"context"
	"strings"

	"github.com/username/flipfolio/backend/src/logger"
	"github.com/username/flipfolio/backend/src/models"
)

// minTokenSimilarity floors the token-overlap ratio so weak matches are
// never reported as zero confidence.
const minTokenSimilarity = 0.3

// SearchFunc is the external catalog-search collaborator. The list is
// returned in the collaborator's own ranking order; it may fail per
// call.
type SearchFunc func(ctx context.Context, query string) ([]models.CatalogMatch, error)

// CatalogMatcher resolves recognized candidates against the live item
// catalog.
type CatalogMatcher struct {
	search SearchFunc
}

func NewCatalogMatcher(search SearchFunc) *CatalogMatcher {
	return &CatalogMatcher{search: search}
}

// MatchCandidates looks up each candidate and scores the best match.
// Output order matches input order. A failed or empty lookup produces an
// unmatched entry with zero confidence; one bad lookup never aborts the
// batch. Repeated names within the batch hit a local memo instead of the
// collaborator.
func (m *CatalogMatcher) MatchCandidates(ctx context.Context, candidates []models.RecognizedCandidate) []models.MatchedCandidate {
	memo := make(map[string][]models.CatalogMatch)
	out := make([]models.MatchedCandidate, 0, len(candidates))

	for _, cand := range candidates {
		key := strings.ToLower(cand.RawName)
		results, seen := memo[key]
		if !seen {
			var err error
			results, err = m.search(ctx, cand.RawName)
			if err != nil {
				logger.L.Warn("Catalog search failed, treating as no match", "query", cand.RawName, "error", err)
				results = nil
			}
			memo[key] = results
		}

		if len(results) == 0 {
			out = append(out, models.MatchedCandidate{Candidate: cand})
			continue
		}

		top := results[0]
		out = append(out, models.MatchedCandidate{
			Candidate:       cand,
			Match:           &top,
			MatchConfidence: NameSimilarity(cand.RawName, top.Name) * cand.Confidence,
		})
	}
	return out
}

// NameSimilarity scores how well a recognized name matches a canonical
// catalog name: 1.0 for case-insensitive equality, 0.9 for substring
// containment either direction, otherwise a token-overlap ratio floored
// at minTokenSimilarity.
func NameSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return minTokenSimilarity
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.9
	}

	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	seen := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		seen[t] = struct{}{}
	}
	common := 0
	for _, t := range tokensB {
		if _, ok := seen[t]; ok {
			common++
		}
	}

	ratio := 2 * float64(common) / float64(len(tokensA)+len(tokensB))
	if ratio < minTokenSimilarity {
		return minTokenSimilarity
	}
	return ratio
}
