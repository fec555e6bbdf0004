package models

import "slices"

// Sets of ids are stored as JSON arrays in insertion order. These helpers keep
// them duplicate-free.

func addToSet(set []string, v string) ([]string, bool) {
	if slices.Contains(set, v) {
		return set, false
	}
	return append(set, v), true
}

func removeFromSet(set []string, v string) ([]string, bool) {
	i := slices.Index(set, v)
	if i < 0 {
		return set, false
	}
	out := make([]string, 0, len(set)-1)
	out = append(out, set[:i]...)
	return append(out, set[i+1:]...), true
}

func hasDuplicates(set []string) bool {
	seen := make(map[string]struct{}, len(set))
	for _, v := range set {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}
