package format

import (
	"math"
	"strings"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

// ParseAmount reads a stored order total. Anything that is not a finite
// number becomes 0.
func ParseAmount(total string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(total))
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// FormatAmount renders 1234.5 as "1,234.50".
func FormatAmount(amount float64) string {
	return accounting.FormatNumberFloat64(amount, 2, ",", ".")
}

// FormatRupees renders 1234.5 as "Rs. 1,234.50".
func FormatRupees(amount float64) string {
	return "Rs. " + FormatAmount(amount)
}
