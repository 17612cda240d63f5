package utils

import (
	"net/url"
	"strings"
)

// ExtractSite returns the hostname of a submitted link, without the
// leading "www.", for the site filter on post lists. Returns "" for
// text posts and unparseable URLs.
func ExtractSite(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
