package catalog

import "strings"

// Normalize lower-cases a category or size name, trims it and collapses
// internal whitespace to single spaces.
func Normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// normalizeNames normalizes every name and drops blanks and duplicates,
// keeping first-seen order.
func normalizeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = Normalize(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

const minNameLength = 3

func validateName(kind, name string) error {
	if len([]rune(name)) < minNameLength {
		return validationError("%s name must be at least %d characters long", kind, minNameLength)
	}
	return nil
}
