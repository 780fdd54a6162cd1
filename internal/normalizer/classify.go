package normalizer

import "unicode"

// IsAlphabetic reports whether s is non-empty and consists only of letters.
func IsAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// IsNumeric reports whether s is non-empty and consists only of digits,
// optionally with a single decimal point.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	dots := 0
	for _, r := range s {
		if r == '.' {
			dots++
			if dots > 1 {
				return false
			}
			continue
		}
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return dots < 1 || len(s) > 1
}
