package parsers

import (
	"iter"
	"regexp"
	"strings"

	"github.com/username/flipfolio/backend/src/models"
)

const (
	minLineLength = 3
	minNameLength = 3

	// A located quantity lowers the chance the line is noise, so the
	// quantity-bearing orderings score higher than a bare name.
	confQuantityFirst = 0.7
	confQuantityLast  = 0.6
	confNameOnly      = 0.4
)

const quantityToken = `[0-9][0-9,]*(?:\.[0-9]+)?[kKmMbB]?`

// lineStrategy is one named extraction attempt. Strategies are tried in
// priority order; the first whose pattern matches decides the line.
type lineStrategy struct {
	name       string
	pattern    *regexp.Regexp
	qtyIdx     int
	nameIdx    int
	confidence float64
}

var extractionStrategies = []lineStrategy{
	{
		// "1.2K x Dragon bones", "500 Yew logs"
		name:       "quantity-first",
		pattern:    regexp.MustCompile(`^(` + quantityToken + `)\s*[xX]?\s+(.+)$`),
		qtyIdx:     1,
		nameIdx:    2,
		confidence: confQuantityFirst,
	},
	{
		// "Dragon bones x 1.2K", "Yew logs 500"
		name:       "quantity-last",
		pattern:    regexp.MustCompile(`^(.+?)\s+[xX]?\s*(` + quantityToken + `)$`),
		qtyIdx:     2,
		nameIdx:    1,
		confidence: confQuantityLast,
	},
}

var (
	nameCharFilter = regexp.MustCompile(`[^a-zA-Z0-9\s\-'()]+`)
	wsCollapser    = regexp.MustCompile(`\s+`)
	bareNumber     = regexp.MustCompile(`^[0-9][0-9\s]*$`)
	tabLabel       = regexp.MustCompile(`^(?i)tab\s*[0-9]*$`)
)

// Structural interface words that show up in marketplace screenshots
// but are never item names.
var noiseWords = map[string]struct{}{
	"bank":      {},
	"inventory": {},
	"equipment": {},
	"total":     {},
	"price":     {},
	"value":     {},
	"search":    {},
	"deposit":   {},
	"withdraw":  {},
	"quantity":  {},
	"coins":     {},
}

// SanitizeName strips every character outside letters, digits,
// whitespace, hyphen, apostrophe and parentheses, then collapses
// repeated whitespace. Sanitizing an already-sanitized name is a no-op.
func SanitizeName(raw string) string {
	s := nameCharFilter.ReplaceAllString(raw, "")
	s = wsCollapser.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// isNoise reports whether a sanitized name is a structural UI label or
// otherwise too degenerate to be an item.
func isNoise(name string) bool {
	if len(name) < minNameLength {
		return true
	}
	if bareNumber.MatchString(name) || tabLabel.MatchString(name) {
		return true
	}
	_, ok := noiseWords[strings.ToLower(name)]
	return ok
}

// ParseLines splits raw recognized text into candidate items. The
// returned sequence is lazy and single-use; candidates appear in source
// line order. Lines that cannot be an item are silently dropped.
func ParseLines(rawText string) iter.Seq[models.RecognizedCandidate] {
	return func(yield func(models.RecognizedCandidate) bool) {
		for _, line := range strings.Split(rawText, "\n") {
			line = strings.TrimSpace(line)
			if len(line) < minLineLength {
				continue
			}
			cand, ok := extractCandidate(line)
			if !ok {
				continue
			}
			if !yield(cand) {
				return
			}
		}
	}
}

// ParseLinesAll materializes ParseLines for callers that want the whole
// batch at once.
func ParseLinesAll(rawText string) []models.RecognizedCandidate {
	var out []models.RecognizedCandidate
	for cand := range ParseLines(rawText) {
		out = append(out, cand)
	}
	return out
}

func extractCandidate(line string) (models.RecognizedCandidate, bool) {
	for _, strat := range extractionStrategies {
		m := strat.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := SanitizeName(m[strat.nameIdx])
		if isNoise(name) {
			return models.RecognizedCandidate{}, false
		}
		return models.RecognizedCandidate{
			RawName:    name,
			Quantity:   ParseQuantity(m[strat.qtyIdx]),
			Confidence: strat.confidence,
		}, true
	}

	// No quantity located anywhere: the whole line is a name with an
	// implicit quantity of one.
	name := SanitizeName(line)
	if isNoise(name) {
		return models.RecognizedCandidate{}, false
	}
	return models.RecognizedCandidate{
		RawName:    name,
		Quantity:   1,
		Confidence: confNameOnly,
	}, true
}
