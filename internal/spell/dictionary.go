package spell

import (
	"strings"
	"sync"
)

// Dictionary is a SpellChecker driven by an explicit incorrect-to-correct
// mapping, typically loaded from a misspellings file.
type Dictionary struct {
	mu          sync.RWMutex
	corrections map[string]string
	personal    map[string]struct{}
}

// NewDictionary builds a Dictionary from a corrections map. Keys are folded
// to lower case.
func NewDictionary(corrections map[string]string) *Dictionary {
	folded := make(map[string]string, len(corrections))
	for incorrect, correct := range corrections {
		folded[strings.ToLower(incorrect)] = correct
	}
	return &Dictionary{
		corrections: folded,
		personal:    make(map[string]struct{}),
	}
}

// MisspellingsInPhrase maps each word of phrase found in the corrections
// table to its correction, skipping words learned into the personal
// wordlist.
func (d *Dictionary) MisspellingsInPhrase(phrase string) (map[string]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	misspellings := make(map[string]string)
	for _, word := range splitPhrase(phrase) {
		key := strings.ToLower(word)
		if _, ok := d.personal[key]; ok {
			continue
		}
		if correct, ok := d.corrections[key]; ok {
			misspellings[word] = correct
		}
	}
	return misspellings, nil
}

// ProperSpelling returns the correction for word if one is known.
func (d *Dictionary) ProperSpelling(word string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	key := strings.ToLower(word)
	if _, ok := d.personal[key]; ok {
		return word, nil
	}
	if correct, ok := d.corrections[key]; ok {
		return correct, nil
	}
	return word, nil
}

// AddToPersonalWordlist marks word as correct.
func (d *Dictionary) AddToPersonalWordlist(word string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.personal[strings.ToLower(word)] = struct{}{}
	return nil
}
