package artifacts

import (
	"regexp"
	"strings"
)

var (
	nonSlugChar = regexp.MustCompile(`[^a-z0-9_-]+`)
	sepRun      = regexp.MustCompile(`[_-]{2,}`)
)

const maxSlugLen = 30

// Slugify normalizes s into a filename-safe identifier: lowercase, spaces
// to underscore, characters outside [a-z0-9_-] stripped, runs of
// separators collapsed, leading/trailing separators trimmed, truncated to
// 30 chars, "unknown" for empty input. The result always matches
// ^[a-z0-9_-]+$ and has length <= 30.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = nonSlugChar.ReplaceAllString(s, "")
	s = sepRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_-")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
		s = strings.Trim(s, "_-")
	}
	if s == "" {
		return "unknown"
	}
	return s
}
