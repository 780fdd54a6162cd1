package fuzzy

import "strings"

// soundexCode maps a letter to its Soundex digit, or 0 for letters that are
// dropped ( vowels, h, w, y).
func soundexCode(r rune) byte {
	switch r {
	case 'b', 'f', 'p', 'v':
		return '1'
	case 'c', 'g', 'j', 'k', 'q', 's', 'x', 'z':
		return '2'
	case 'd', 't':
		return '3'
	case 'l':
		return '4'
	case 'm', 'n':
		return '5'
	case 'r':
		return '6'
	}
	return 0
}

// Soundex returns the four-character Soundex phonetic key for a word, e.g.
// "robert" and "rupert" both map to "R163". Non-alphabetic input yields an
// empty key.
func Soundex(word string) string {
	word = strings.ToLower(word)
	var first rune
	rest := word
	for i, r := range word {
		if r >= 'a' && r <= 'z' {
			first = r
			rest = word[i:]
			break
		}
	}
	if first == 0 {
		return ""
	}

	key := make([]byte, 0, 4)
	key = append(key, byte(first-'a'+'A'))
	prev := soundexCode(first)
	for _, r := range rest[1:] {
		if r < 'a' || r > 'z' {
			// h and w are treated as transparent by classic Soundex; any
			// other non-letter resets the run.
			prev = 0
			continue
		}
		code := soundexCode(r)
		if code == 0 {
			if r != 'h' && r != 'w' {
				prev = 0
			}
			continue
		}
		if code != prev {
			key = append(key, code)
			if len(key) == 4 {
				break
			}
		}
		prev = code
	}
	for len(key) < 4 {
		key = append(key, '0')
	}
	return string(key)
}
