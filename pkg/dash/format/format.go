package format

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is shown for unknown values.
const Placeholder = "—"

var printer = message.NewPrinter(language.English)

func valid(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Price renders a price with two decimals.
func Price(v *float64) string {
	if !valid(v) {
		return Placeholder
	}
	return fixed(*v, 2)
}

// USD renders an amount as $1.23.
func USD(v *float64) string {
	if !valid(v) {
		return Placeholder
	}
	if *v < 0 {
		return "-$" + fixed(-*v, 2)
	}
	return "$" + fixed(*v, 2)
}

// Pct renders a percentage with two decimals.
func Pct(v *float64) string {
	if !valid(v) {
		return Placeholder
	}
	return fixed(*v, 2) + "%"
}

// Signed renders a value with an explicit sign and the given decimals.
func Signed(v *float64, places int32) string {
	if !valid(v) {
		return Placeholder
	}
	s := fixed(*v, places)
	if *v >= 0 {
		return "+" + s
	}
	return s
}

// Shares renders a fractional share count.
func Shares(v float64) string {
	return fixed(v, 4) + " shares"
}

// Int renders an integer with thousands separators.
func Int(v *int64) string {
	if v == nil {
		return Placeholder
	}
	return printer.Sprintf("%d", *v)
}

// Range renders "lo ~ hi" when both ends are known.
func Range(lo, hi *float64) string {
	if !valid(lo) || !valid(hi) {
		return Placeholder
	}
	return Price(lo) + " ~ " + Price(hi)
}

// Or returns s, or the placeholder when s is empty.
func Or(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
