package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	titler  = cases.Title(language.English)
	printer = message.NewPrinter(language.English)
)

// FormatCurrencyCompact renders a dollar amount in dashboard-compact form:
// $1.2M, $450K, $87.
func FormatCurrencyCompact(v decimal.Decimal) string {
	f := v.InexactFloat64()
	abs := f
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("$%.1fM", f/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("$%.0fK", f/1_000)
	default:
		return fmt.Sprintf("$%.0f", f)
	}
}

// FormatCurrency renders a full dollar amount with thousands separators.
func FormatCurrency(v decimal.Decimal) string {
	return printer.Sprintf("$%.2f", v.InexactFloat64())
}

// TrendIndicator renders a change rate as a dashboard arrow, or "N/A" when
// the rate is undefined.
func TrendIndicator(rate *float64) string {
	if rate == nil {
		return "N/A"
	}
	pct := *rate * 100
	arrow := "↑"
	if pct < 0 {
		arrow = "↓"
	}
	return fmt.Sprintf("%s %.2f%%", arrow, pct)
}

// PrettyCategory turns a raw snake_case category name into a display label.
func PrettyCategory(category string) string {
	if category == "" {
		return ""
	}
	return titler.String(strings.ReplaceAll(category, "_", " "))
}
