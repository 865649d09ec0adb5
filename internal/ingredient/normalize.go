// Package ingredient provides ingredient text normalization, line parsing,
// and the pantry-staples vocabulary.
package ingredient

import "strings"

// Normalize builds the matching key for an ingredient name: lowercase, trim,
// and strip a single trailing "s" or "n" so that common German singular and
// plural forms collapse ("Zwiebeln" becomes "zwiebel"). The result is used
// for aggregation and staple matching only; display keeps the original name.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if len(n) > 1 && (strings.HasSuffix(n, "s") || strings.HasSuffix(n, "n")) {
		n = n[:len(n)-1]
	}
	return n
}

// IsWater reports whether the name normalizes to "wasser". Water is never
// put on a shopping list.
func IsWater(name string) bool {
	return Normalize(name) == "wasser"
}
