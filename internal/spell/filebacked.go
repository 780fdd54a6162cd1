package spell

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/searchcore/fulltext/internal/fuzzy"
	"github.com/searchcore/fulltext/pkg/errors"
)

// FileBacked is a SpellChecker driven by a newline-delimited wordlist of
// known-correct words. Suggestions are the closest known word by
// Levenshtein distance (at most 2 edits), falling back to an equal Soundex
// key. Personal-wordlist additions are appended to a separate file so they
// survive restarts.
type FileBacked struct {
	mu           sync.RWMutex
	known        map[string]struct{}
	personal     map[string]struct{}
	personalPath string
}

// NewFileBacked loads the wordlist at dictPath and, if personalPath is
// non-empty and exists, the previously learned personal words.
func NewFileBacked(dictPath, personalPath string) (*FileBacked, error) {
	known, err := loadWordSet(dictPath)
	if err != nil {
		return nil, errors.Newf(errors.ErrSpellChecker, "loading wordlist %s: %v", dictPath, err)
	}
	personal := make(map[string]struct{})
	if personalPath != "" {
		if _, statErr := os.Stat(personalPath); statErr == nil {
			personal, err = loadWordSet(personalPath)
			if err != nil {
				return nil, errors.Newf(errors.ErrSpellChecker, "loading personal wordlist %s: %v", personalPath, err)
			}
		}
	}
	return &FileBacked{
		known:        known,
		personal:     personal,
		personalPath: personalPath,
	}, nil
}

// MisspellingsInPhrase maps each alphabetic word of phrase that is neither
// known nor personal to its best suggestion, when one exists.
func (f *FileBacked) MisspellingsInPhrase(phrase string) (map[string]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	misspellings := make(map[string]string)
	for _, word := range splitPhrase(phrase) {
		if !isAlphabetic(word) {
			continue
		}
		key := strings.ToLower(word)
		if f.acceptedLocked(key) {
			continue
		}
		if suggestion, ok := f.suggestLocked(key); ok {
			misspellings[word] = suggestion
		}
	}
	return misspellings, nil
}

// ProperSpelling returns the best suggestion for word, or word itself when
// it is accepted or nothing close is known.
func (f *FileBacked) ProperSpelling(word string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	key := strings.ToLower(word)
	if f.acceptedLocked(key) {
		return word, nil
	}
	if suggestion, ok := f.suggestLocked(key); ok {
		return suggestion, nil
	}
	return word, nil
}

// AddToPersonalWordlist records word as known-correct and appends it to the
// personal wordlist file when one is configured.
func (f *FileBacked) AddToPersonalWordlist(word string) error {
	key := strings.ToLower(word)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.personal[key]; ok {
		return nil
	}
	f.personal[key] = struct{}{}
	if f.personalPath == "" {
		return nil
	}
	file, err := os.OpenFile(f.personalPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Newf(errors.ErrSpellChecker, "opening personal wordlist %s: %v", f.personalPath, err)
	}
	defer file.Close()
	if _, err := fmt.Fprintln(file, key); err != nil {
		return errors.Newf(errors.ErrSpellChecker, "appending to personal wordlist %s: %v", f.personalPath, err)
	}
	return nil
}

func (f *FileBacked) acceptedLocked(key string) bool {
	if _, ok := f.known[key]; ok {
		return true
	}
	_, ok := f.personal[key]
	return ok
}

// suggestLocked finds the known word with the smallest Levenshtein distance
// of at most 2; among equally distant candidates the lexicographically
// smallest wins so suggestions are stable. Words with a matching Soundex key
// are accepted at distance 3 as a phonetic fallback.
func (f *FileBacked) suggestLocked(key string) (string, bool) {
	const maxEdits = 2
	soundexKey := fuzzy.Soundex(key)
	best := ""
	bestDistance := maxEdits + 2
	for candidate := range f.known {
		d := fuzzy.Levenshtein(key, candidate)
		if d > maxEdits {
			if soundexKey == "" || fuzzy.Soundex(candidate) != soundexKey {
				continue
			}
			d = maxEdits + 1
		}
		if d < bestDistance || (d == bestDistance && candidate < best) {
			best = candidate
			bestDistance = d
		}
	}
	return best, best != ""
}

func loadWordSet(path string) (map[string]struct{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}
		words[word] = struct{}{}
	}
	return words, scanner.Err()
}
