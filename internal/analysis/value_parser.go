package analysis

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var valueTokenRegex = regexp.MustCompile(`(?i)\$?\s*([\d][\d,]*(?:\.\d+)?)\s*(k|m|mm|b|thousand|million|billion)?`)

var valueMultipliers = map[string]int64{
	"k":        1_000,
	"thousand": 1_000,
	"m":        1_000_000,
	"mm":       1_000_000,
	"million":  1_000_000,
	"b":        1_000_000_000,
	"billion":  1_000_000_000,
}

// ParseEstimatedValue extracts a dollar range from free-text contract value
// statements like "$1.5M - $2M", "up to $500K", or "approximately $12
// million". Returns nil bounds when nothing numeric is present.
func ParseEstimatedValue(text string) (min, max *decimal.Decimal) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	matches := valueTokenRegex.FindAllStringSubmatch(text, -1)
	var amounts []decimal.Decimal
	for _, m := range matches {
		raw := strings.ReplaceAll(m[1], ",", "")
		val, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		if mult, ok := valueMultipliers[strings.ToLower(m[2])]; ok {
			val = val.Mul(decimal.NewFromInt(mult))
		}
		if val.IsPositive() {
			amounts = append(amounts, val)
		}
	}

	if len(amounts) == 0 {
		return nil, nil
	}

	lower := strings.ToLower(text)
	if len(amounts) == 1 {
		v := amounts[0]
		if strings.Contains(lower, "up to") || strings.Contains(lower, "not to exceed") || strings.Contains(lower, "maximum") {
			return nil, &v
		}
		if strings.Contains(lower, "at least") || strings.Contains(lower, "minimum") {
			return &v, nil
		}
		// Single figure with no qualifier: treat as the ceiling.
		return nil, &v
	}

	lo := amounts[0]
	hi := amounts[0]
	for _, a := range amounts[1:] {
		if a.LessThan(lo) {
			lo = a
		}
		if a.GreaterThan(hi) {
			hi = a
		}
	}
	return &lo, &hi
}
