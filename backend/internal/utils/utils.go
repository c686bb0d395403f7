package utils

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	spaceRun     = regexp.MustCompile(`[ \t]+`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

// CleanText strips markup from user-submitted text and normalises
// whitespace. The result is plain text; renderers must still escape it.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	s = spaceRun.ReplaceAllString(s, " ")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// NormalizeEmail lowercases and trims an address for comparisons.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Host returns the host part of an origin such as https://example.org.
func Host(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return "localhost"
	}
	return u.Hostname()
}
