package parsers

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// quantityPattern accepts optional thousands separators, a numeric
// mantissa and an optional K/M/B shorthand suffix.
var quantityPattern = regexp.MustCompile(`^([0-9][0-9,]*(?:\.[0-9]+)?)([kKmMbB])?$`)

// ParseQuantity converts a human shorthand quantity ("12.5K", "3M",
// "1,200") into an integer, rounded to nearest. Unparseable input
// yields 1 so a malformed quantity never aborts extraction of the
// surrounding item.
func ParseQuantity(raw string) int {
	m := quantityPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 1
	}
	mantissa, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 1
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		mantissa *= 1_000
	case "M":
		mantissa *= 1_000_000
	case "B":
		mantissa *= 1_000_000_000
	}
	qty := int(math.Round(mantissa))
	if qty < 1 {
		return 1
	}
	return qty
}
