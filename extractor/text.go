package extractor

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// NormalizeSpace collapses runs of whitespace (including NBSP) to a single
// space and trims the ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParsePrice extracts the numeric amount from a display price such as
// "$1,299.99", "£51.77", "19,99€" or "1.299€". Both "." and "," are accepted
// as the decimal separator when followed by exactly two digits at the end. A
// comma-free number whose dots each precede exactly three digits uses "." as
// the thousands separator.
func ParsePrice(s string) (float64, bool) {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == ',' {
			digits.WriteRune(r)
		}
	}
	num := digits.String()
	if num == "" {
		return 0, false
	}

	// Decide which separator, if any, is the decimal point.
	lastDot := strings.LastIndexByte(num, '.')
	lastComma := strings.LastIndexByte(num, ',')
	switch {
	case lastComma > lastDot && len(num)-lastComma-1 == 2:
		num = strings.ReplaceAll(num[:lastComma], ".", "") + "." + num[lastComma+1:]
	case lastComma < 0 && dotThousands(num):
		num = strings.ReplaceAll(num, ".", "")
	default:
		num = strings.ReplaceAll(num, ",", "")
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParsePercent reads a discount like "-75%" or "30 %" and returns its
// magnitude in the range (0, 100].
func ParsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimLeft(s, "-−+ "))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f > 100 {
		return 0, false
	}
	return f, true
}

// DiscountedPrice applies discount to price and renders the result with the
// currency symbol of price kept on the same side, e.g. ("$20.00", "-25%") ->
// "$15.00" and ("19,99€", "-25%") -> "14.99€". It returns false unless both
// inputs parse.
func DiscountedPrice(price, discount string) (string, bool) {
	amount, ok := ParsePrice(price)
	if !ok {
		return "", false
	}
	pct, ok := ParsePercent(discount)
	if !ok {
		return "", false
	}
	result := math.Round(amount*(100-pct)) / 100
	prefix, suffix := currencyAffixes(price)
	return prefix + strconv.FormatFloat(result, 'f', 2, 64) + suffix, true
}

// dotThousands reports whether every "."-separated group after the first has
// exactly three digits, as in "1.299" or "12.500.000".
func dotThousands(num string) bool {
	groups := strings.Split(num, ".")
	if len(groups) < 2 || groups[0] == "" {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// currencyAffixes returns the text before the first digit and after the last
// digit of price. Spacing between a suffix symbol and the number is kept.
func currencyAffixes(price string) (prefix, suffix string) {
	price = strings.TrimSpace(price)
	first := strings.IndexFunc(price, unicode.IsDigit)
	if first < 0 {
		return "", ""
	}
	last := strings.LastIndexFunc(price, unicode.IsDigit)
	prefix = strings.TrimSpace(price[:first])
	suffix = strings.TrimRightFunc(price[last+1:], unicode.IsSpace)
	if strings.TrimSpace(suffix) == "" {
		suffix = ""
	}
	return prefix, suffix
}
