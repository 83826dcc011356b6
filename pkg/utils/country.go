// Package utils provides small helpers shared by the catalogs and the CLI.
package utils

import "strings"

// NormalizeCountry returns the lookup key for a country name: surrounding
// whitespace trimmed, lower-cased, inner runs of whitespace collapsed.
func NormalizeCountry(country string) string {
	return strings.Join(strings.Fields(strings.ToLower(country)), " ")
}

// NormalizeCurrencyCode trims and upper-cases an ISO 4217 code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsCurrencyCode reports whether s looks like a 3-letter uppercase ISO 4217 code.
func IsCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
