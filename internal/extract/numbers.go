package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// A lone comma followed by one or two digits is a decimal comma ("79,50"),
// anything else with commas is a thousands separator ("1,200").
var decimalComma = regexp.MustCompile(`^\d+,\d{1,2}$`)

func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "", "\u00a0", "", "'", "").Replace(s)
	if decimalComma.MatchString(s) {
		return strings.Replace(s, ",", ".", 1)
	}
	return strings.ReplaceAll(s, ",", "")
}

// ParseFloat parses a scraped number such as "1,200", "45.5" or "79,50".
// Negative and unparseable values report false.
func ParseFloat(s string) (float64, bool) {
	n := normalizeNumber(s)
	if n == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

// ParseInt parses a scraped integer, truncating any fractional part.
// Values beyond math.MaxInt32 report false.
func ParseInt(s string) (int, bool) {
	f, ok := ParseFloat(s)
	if !ok || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

var firstNumber = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// LeadingNumber finds the first number inside a free-form string like
// "800m", "188km" or "€79.50" and parses it.
func LeadingNumber(s string) (float64, bool) {
	m := firstNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	return ParseFloat(m)
}
