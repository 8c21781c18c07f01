// Package core provides the dashboard domain model and the aggregation over it.
//
// This file contains the lenient amount parser used when spreadsheet cells arrive as
// text rather than numbers.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a spreadsheet amount to a float.
//
// It accepts plain numbers, a comma or dot as decimal separator, and thousands
// separators (comma, dot, space, apostrophe). When both comma and dot are present the
// rightmost one is the decimal separator. A lone separator followed by exactly three
// digits is treated as a thousands separator. Currency symbols are not accepted.
//
// Examples:
//
//	ParseAmount("1200")      -> 1200, true
//	ParseAmount("1 200,50")  -> 1200.5, true
//	ParseAmount("1,200.50")  -> 1200.5, true
//	ParseAmount("1.200")     -> 1200, true
//	ParseAmount("12,5")      -> 12.5, true
//	ParseAmount("n/a")       -> 0, false
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", "'", "").Replace(s)

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = normalizeSingleSeparator(s, ",")
	case lastDot >= 0:
		s = normalizeSingleSeparator(s, ".")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normalizeSingleSeparator rewrites s, which contains only sep as separator, to a form
// strconv understands.
func normalizeSingleSeparator(s, sep string) string {
	parts := strings.Split(s, sep)
	if len(parts) > 2 {
		return strings.Join(parts, "")
	}
	if len(parts[1]) == 3 {
		return parts[0] + parts[1]
	}
	return parts[0] + "." + parts[1]
}
