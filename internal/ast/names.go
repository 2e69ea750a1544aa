package ast

import "unicode"

// IsUpper reports whether s has at least one cased letter and no lower-case
// ones. Such names are treated as constants and globals.
func IsUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
