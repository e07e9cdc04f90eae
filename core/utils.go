package core

import (
	"math"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Round1 rounds v to one decimal place using round-half-up. All grade averages
// in the system go through this one function.
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
