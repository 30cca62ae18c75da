// Package slug turns raw region names into filesystem-safe identifiers.
package slug

import (
	"regexp"
	"strings"
)

// Fallback is used when a name sanitizes down to nothing.
const Fallback = "unknown_region"

var nonWord = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// Make converts a region display name into a deterministic lowercase slug.
// Apostrophes are removed outright ("People's" -> "peoples"), every other run
// of non [a-zA-Z0-9_] characters collapses to a single underscore. Distinct
// names can collide; the writer lets the later one overwrite the earlier file.
func Make(name string) string {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "'", "")
	s = nonWord.ReplaceAllString(s, "_")
	s = strings.ToLower(s)
	s = strings.Trim(s, "_")
	if s == "" {
		return Fallback
	}
	return s
}
