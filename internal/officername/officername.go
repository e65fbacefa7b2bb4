// Package officername normalises free-text officer names for comparison and display order.
package officername

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Key returns the comparison key of a name: trimmed, inner whitespace collapsed, case folded.
func Key(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// Equal reports whether two names refer to the same officer under case-insensitive matching.
func Equal(a, b string) bool { return Key(a) == Key(b) }

// Distinct drops blank names and names that differ only by case; the first spelling seen wins.
func Distinct(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		k := Key(n)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, strings.TrimSpace(n))
	}
	return out
}

// Sort orders names for display, ignoring case.
func Sort(names []string) {
	collate.New(language.Und, collate.IgnoreCase).SortStrings(names)
}

// EmailLocalPart returns the part of an address before '@', case folded.
func EmailLocalPart(email string) string {
	local, _, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	return Key(local)
}
