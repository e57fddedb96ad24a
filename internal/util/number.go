package util

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrNotANumber = errors.New("not a number")

// ParseLocaleDecimal parses pt-BR formatted numerals: "." groups thousands and
// "," is the decimal separator ("1.234,56" -> 1234.56). Anything that is not a
// plain decimal after normalization is rejected.
func ParseLocaleDecimal(token string) (decimal.Decimal, error) {
	norm := NormalizeLocaleNumber(token)
	if norm == "" || strings.ContainsAny(norm, "eE+-") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotANumber, token)
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotANumber, token)
	}
	return d, nil
}

func NormalizeLocaleNumber(token string) string {
	compact := strings.TrimSpace(token)
	compact = strings.ReplaceAll(compact, ".", "")
	return strings.ReplaceAll(compact, ",", ".")
}

// ParseLocaleFloat is ParseLocaleDecimal narrowed to a finite float64.
// Numerals too large for a float64 are rejected rather than becoming +Inf.
func ParseLocaleFloat(token string) (float64, error) {
	d, err := ParseLocaleDecimal(token)
	if err != nil {
		return 0, err
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %q out of range", ErrNotANumber, token)
	}
	return f, nil
}
