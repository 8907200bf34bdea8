// Package markup computes marked-up prices.
package markup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPercent is returned for non-numeric, exponent or negative percentages.
var ErrInvalidPercent = errors.New("invalid markup percent")

var hundred = decimal.NewFromInt(100)

// ParsePercent reads a user supplied percentage. Both "." and "," are
// accepted as the decimal separator. Exponent notation is rejected.
func ParsePercent(text string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	normalized = strings.TrimSuffix(normalized, "%")
	if normalized == "" {
		return decimal.Zero, ErrInvalidPercent
	}
	if strings.ContainsAny(normalized, "eE") {
		return decimal.Zero, fmt.Errorf("%w: %q uses exponent notation", ErrInvalidPercent, text)
	}

	percent, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPercent, text)
	}
	if percent.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidPercent, percent)
	}

	return percent, nil
}

// Apply returns base * (1 + percent/100) rounded to two decimal places.
func Apply(base, percent decimal.Decimal) (decimal.Decimal, error) {
	if percent.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidPercent, percent)
	}

	factor := decimal.NewFromInt(1).Add(percent.Div(hundred))
	return base.Mul(factor).Round(2), nil
}

// Format renders a price with exactly two decimal places.
func Format(price decimal.Decimal) string {
	return price.StringFixed(2)
}
