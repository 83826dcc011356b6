// Package maps builds map-search links for street addresses.
package maps

import (
	"net/url"
	"strings"
)

// SearchURL is the Google Maps search endpoint; the query is appended.
const SearchURL = "https://www.google.com/maps/search/?api=1&query="

// BuildLink returns a Google Maps search URL for address. It does not
// validate its input; callers check for blank addresses first.
func BuildLink(address string) string {
	return SearchURL + escapeQuery(strings.TrimSpace(address))
}

// escapeQuery percent-encodes s for use as a query value, with spaces as %20.
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
