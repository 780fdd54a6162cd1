// Package fuzzy implements the approximate string matching used for
// popular-word suggestion: Levenshtein edit distance and the Soundex
// phonetic key.
package fuzzy

// Levenshtein computes the edit distance between two strings: the minimum
// number of single-character insertions, deletions, or substitutions needed
// to turn one into the other. It operates on runes so multi-byte input is
// compared per character.
func Levenshtein(a, b string) int {
	runesA := []rune(a)
	runesB := []rune(b)

	lenA := len(runesA)
	lenB := len(runesB)
	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// Two-row rolling matrix keeps allocation proportional to the shorter
	// string.
	if lenB > lenA {
		runesA, runesB = runesB, runesA
		lenA, lenB = lenB, lenA
	}
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)
	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}
	for i := 1; i <= lenA; i++ {
		curr[0] = i
		for j := 1; j <= lenB; j++ {
			cost := 1
			if runesA[i-1] == runesB[j-1] {
				cost = 0
			}
			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost
			curr[j] = min3(deletion, insertion, substitution)
		}
		prev, curr = curr, prev
	}
	return prev[lenB]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
