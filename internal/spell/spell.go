// Package spell defines the pluggable spell-checking capability consulted
// by the query engine and, for personal-wordlist learning, by the indexer.
package spell

import (
	"strings"
	"unicode"
)

// SpellChecker finds misspelled words and their suggested corrections.
type SpellChecker interface {
	// MisspellingsInPhrase maps each misspelled word of phrase to its
	// suggested correction.
	MisspellingsInPhrase(phrase string) (map[string]string, error)
	// ProperSpelling returns the corrected form of word, or word itself if
	// it is already correct or no suggestion exists.
	ProperSpelling(word string) (string, error)
	// AddToPersonalWordlist records word as known-correct, suppressing
	// future suggestions for it.
	AddToPersonalWordlist(word string) error
}

// NoOp accepts every word as spelled correctly.
type NoOp struct{}

// MisspellingsInPhrase returns an empty map.
func (NoOp) MisspellingsInPhrase(string) (map[string]string, error) {
	return map[string]string{}, nil
}

// ProperSpelling returns word unchanged.
func (NoOp) ProperSpelling(word string) (string, error) { return word, nil }

// AddToPersonalWordlist does nothing.
func (NoOp) AddToPersonalWordlist(string) error { return nil }

func isAlphabetic(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func splitPhrase(phrase string) []string {
	return strings.Fields(phrase)
}
