package catalog

import (
	"regexp"
	"strings"
)

var nonKeyChar = regexp.MustCompile(`[^a-z0-9]+`)

// maxSectionKeyLen bounds a generated section key's length.
const maxSectionKeyLen = 60

// CleanKey normalizes label into a stable key: lowercase, runs of
// non-alphanumeric characters collapsed to a single underscore,
// leading/trailing underscores trimmed, truncated to maxLen. Used both for
// section keys and as a dedup-by-cleaned-key fallback when a dimension's
// css_selector is UNKNOWN.
func CleanKey(label string, maxLen int) string {
	s := nonKeyChar.ReplaceAllString(strings.ToLower(label), "_")
	s = strings.Trim(s, "_")
	if len(s) > maxLen {
		s = strings.Trim(s[:maxLen], "_")
	}
	return s
}

// SectionKey applies CleanKey at the section-key length bound, with the
// UNKNOWN sentinel mapped to the fixed "unknown_section" key.
func SectionKey(label string) string {
	if label == UnknownSelector {
		return "unknown_section"
	}
	key := CleanKey(label, maxSectionKeyLen)
	if key == "" {
		return "unknown_section"
	}
	return key
}
