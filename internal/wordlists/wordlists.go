// Package wordlists loads the flat word-list files injected into the
// indexer and query engine at startup: a newline-delimited word file and a
// comma-delimited misspellings file.
package wordlists

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadWords reads a newline-delimited word file, trimming whitespace and
// skipping blank lines. Used for blocked words and unindexed words.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word list %s: %w", path, err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading word list %s: %w", path, err)
	}
	return words, nil
}

// LoadMisspellings reads an "incorrect,correct" file into a corrections
// map. Blank lines are skipped; a line without a comma is an error.
func LoadMisspellings(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening misspellings file %s: %w", path, err)
	}
	defer file.Close()

	corrections := make(map[string]string)
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		incorrect, correct, found := strings.Cut(text, ",")
		if !found {
			return nil, fmt.Errorf("misspellings file %s line %d: want incorrect,correct", path, line)
		}
		corrections[strings.TrimSpace(incorrect)] = strings.TrimSpace(correct)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading misspellings file %s: %w", path, err)
	}
	return corrections, nil
}
