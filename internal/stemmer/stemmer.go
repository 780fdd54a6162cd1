// Package stemmer reduces words to their linguistic root. The capability is
// pluggable: the Suffix stemmer covers common English inflections, and NoOp
// disables stemming entirely. The same stemmer must be used at indexing and
// query time for postings to match.
package stemmer

import "strings"

// Stemmer maps a token to its root form.
type Stemmer interface {
	Stem(word string) string
}

// NoOp returns every word unchanged.
type NoOp struct{}

// Stem returns word as-is.
func (NoOp) Stem(word string) string { return word }

// Suffix is a rule-table suffix stripper. Rules are tried longest-first and
// the first rule that leaves a long-enough root wins.
type Suffix struct{}

type suffixRule struct {
	suffix      string
	replacement string
	minLen      int
}

var suffixRules = []suffixRule{
	{"ational", "ate", 2},
	{"tional", "tion", 2},
	{"encies", "ence", 2},
	{"ances", "ance", 2},
	{"ments", "ment", 2},
	{"izing", "ize", 2},
	{"ating", "ate", 2},
	{"iness", "y", 2},
	{"ously", "ous", 2},
	{"ively", "ive", 2},
	{"eness", "ene", 2},
	{"tion", "t", 3},
	{"sion", "s", 3},
	{"ying", "y", 2},
	{"ling", "l", 3},
	{"ies", "y", 2},
	{"ing", "", 3},
	{"ers", "er", 2},
	{"est", "", 3},
	{"ful", "", 3},
	{"ous", "", 3},
	{"ess", "", 3},
	{"ble", "", 3},
	{"ed", "", 3},
	{"er", "", 3},
	{"ly", "", 3},
	{"es", "", 3},
	{"ss", "ss", 2},
	{"s", "", 3},
}

// Stem applies the first suffix rule that matches and leaves a root of at
// least the rule's minimum length.
func (Suffix) Stem(word string) string {
	for _, rule := range suffixRules {
		if strings.HasSuffix(word, rule.suffix) {
			root := word[:len(word)-len(rule.suffix)] + rule.replacement
			if len(root) >= rule.minLen {
				return root
			}
		}
	}
	return word
}
