// Package artists splits multi-artist credit strings into individual names.
//
// Media players report collaborations as a single string with ad hoc
// separators ("A feat. B", "A / B", "A & B"). The statistics aggregator
// attributes one play to each co-credited artist, so it needs a single,
// testable place that knows the separator set.
package artists

import (
	"regexp"
	"strings"
)

// Recognized separators, case-insensitive. Symbolic separators may be glued
// to the names; word separators (feat, ft, featuring, with, x) must be
// surrounded by whitespace so names containing them are left intact.
var separator = regexp.MustCompile(`(?i)\s*/\s*|\s*&\s*|\s*,\s*|\s*\+\s*|\s+feat\.?\s+|\s+featuring\s+|\s+ft\.?\s+|\s+with\s+|\s+x\s+`)

// Split returns the individual artist names credited in s, in order of
// appearance, without duplicates. An empty or blank input yields nil.
func Split(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var names []string
	seen := make(map[string]struct{})
	for _, part := range separator.Split(s, -1) {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
