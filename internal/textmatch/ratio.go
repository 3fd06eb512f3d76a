// Package textmatch provides character-level sequence similarity shared by the
// lexical scorer and the consistency metrics engine.
package textmatch

import "github.com/pmezard/go-difflib/difflib"

// Ratio returns the Ratcliff/Obershelp similarity ratio between two strings at
// character granularity: 2*M/T, where M is the total number of matched
// characters across matching blocks and T is the combined length of both
// strings. Two empty strings score 1.0.
//
// The underlying matcher is order-sensitive in rare cases, so arguments are
// canonicalized first; Ratio(a, b) == Ratio(b, a) always holds.
func Ratio(a, b string) float64 {
	if a > b {
		a, b = b, a
	}
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

// chars splits a string into one element per rune so the line-oriented
// matcher operates at character granularity.
func chars(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}
