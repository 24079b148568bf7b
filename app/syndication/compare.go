package syndication

import (
	"cmp"
	"net/url"
	"slices"
	"strings"
	"time"
)

// CompareFold orders strings ignoring case.
func CompareFold(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

// CompareURL orders URLs by their absolute string form. A nil URL sorts first.
func CompareURL(a, b *url.URL) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(a.String(), b.String())
}

// CompareURLs compares URL lists element by element, in order.
func CompareURLs(a, b []*url.URL) int {
	return slices.CompareFunc(a, b, CompareURL)
}

// CompareFoldSlices compares string lists element by element, ignoring case.
func CompareFoldSlices(a, b []string) int {
	return slices.CompareFunc(a, b, CompareFold)
}

func CompareTime(a, b time.Time) int {
	return a.Compare(b)
}

func CompareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
