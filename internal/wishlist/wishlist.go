// Package wishlist treats the wishlist as a set of product ids.
package wishlist

import (
	"sort"
	"strings"
)

// Toggle adds id when absent and removes it when present.
func Toggle(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, existing := range ids {
		if existing == id {
			found = true
			continue
		}
		out = append(out, existing)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

// Contains reports membership.
func Contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Normalize sorts and de-duplicates ids into a comparison key.
func Normalize(ids []string) string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)
	return strings.Join(unique, "\x1e")
}

// Equal compares two wishlists as sets.
func Equal(a, b []string) bool {
	return Normalize(a) == Normalize(b)
}
