package utils

import (
	"regexp"
	"strings"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// IsSlug reports whether s contains only lowercase letters, digits and hyphens.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// TagSlug lower-cases a tag name and replaces whitespace runs with "-".
func TagSlug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "-")
}
