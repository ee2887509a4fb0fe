package rules

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	leadingTag = regexp.MustCompile(`^\[([^\]]+)\]`)
	anyTag     = regexp.MustCompile(`\[(.*?)\]`)
)

// Normalize returns the NFC form of s. Exports from macOS tools arrive in NFD,
// which would never match the Hangul literals used for site names.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// AccountTag extracts "name" from a value shaped like "[name] rest"
func AccountTag(s string) string {
	m := leadingTag.FindStringSubmatch(Normalize(strings.TrimSpace(s)))
	if m == nil {
		return ""
	}
	return m[1]
}

// BracketTag extracts the first bracketed substring anywhere in s
func BracketTag(s string) string {
	m := anyTag.FindStringSubmatch(Normalize(s))
	if m == nil {
		return ""
	}
	return m[1]
}

// ContainsSite reports whether s mentions site after normalization
func ContainsSite(s, site string) bool {
	return strings.Contains(Normalize(s), Normalize(site))
}

// FirstSite returns the first site of the list contained in s
func FirstSite(s string, sites []string) (string, bool) {
	n := Normalize(s)
	for _, site := range sites {
		if strings.Contains(n, Normalize(site)) {
			return site, true
		}
	}
	return "", false
}
