// Package normalizer provides the text-processing stages of the indexing
// pipeline: markup stripping, spelling-stage and searching-stage
// normalization, and proximity-weighted tokenization.
//
// All proximity math operates on byte offsets of the rendered text, not
// character counts, so multi-byte input scores identically across
// platforms.
package normalizer

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/searchcore/fulltext/pkg/errors"
)

// Token is one word of a document or query together with its proximity
// delta: the rendered byte distance from the end of the previous token. The
// first token of a text has proximity 0.
type Token struct {
	Word      string
	Proximity int
}

// GapWeights assigns a rendered width to each separator class. A wider gap
// pushes subsequent tokens further apart in the location space used for
// distance scoring.
type GapWeights struct {
	Sentence    int // . ? !
	Tab         int
	Newline     int
	Punctuation int // ; : , -
	Space       int
}

// DefaultGapWeights returns the standard gap widths: end-of-sentence
// punctuation, tabs, and newlines read as five spaces, mid-sentence
// punctuation as two, a plain space as one.
func DefaultGapWeights() GapWeights {
	return GapWeights{
		Sentence:    5,
		Tab:         5,
		Newline:     5,
		Punctuation: 2,
		Space:       1,
	}
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	dashRunPattern    = regexp.MustCompile(`-{2,}`)
	innerJunkPattern  = regexp.MustCompile(`[^\p{L}\p{N}_\s]*\s+[^\p{L}\p{N}_\s]*`)
	edgeJunkPattern   = regexp.MustCompile(`^[^\p{L}\p{N}_]+|[^\p{L}\p{N}_]+$`)
	spaceRunPattern   = regexp.MustCompile(`\s+`)
	possessivePattern = regexp.MustCompile(`['` + "’" + `]s\b`)
	gapRunPattern     = regexp.MustCompile(`[\s.?!;:,\-]+`)
	strayPunctPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	wordRunPattern    = regexp.MustCompile(`\S+`)
)

// NormalizeForSpelling cleans markup and punctuation noise out of text
// without folding case, leaving words in the form a spell checker should
// see. It strips <...> tags, decodes HTML entities, collapses repeated
// dashes, collapses punctuation runs around whitespace to single spaces,
// and trims non-word runs from both ends.
func NormalizeForSpelling(text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", errors.New(errors.ErrNormalization, "input is not valid UTF-8")
	}
	s := tagPattern.ReplaceAllString(text, " ")
	s = html.UnescapeString(s)
	s = dashRunPattern.ReplaceAllString(s, "-")
	s = innerJunkPattern.ReplaceAllString(s, " ")
	s = edgeJunkPattern.ReplaceAllString(s, "")
	s = spaceRunPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s), nil
}

// NormalizeForSearching applies the spelling-stage cleanup plus case
// folding and possessive suffix stripping. Composing it with
// NormalizeForSpelling is idempotent.
func NormalizeForSearching(text string) (string, error) {
	s, err := NormalizeForSpelling(text)
	if err != nil {
		return "", err
	}
	s = strings.ToLower(s)
	s = possessivePattern.ReplaceAllString(s, "")
	return s, nil
}

// Tokenize splits text into searching-normalized tokens carrying proximity
// deltas. Separator runs are first rendered as repeated-space placeholders
// sized by the widest class present in the run, remaining punctuation is
// dropped, and the text is split on whitespace with byte-offset capture.
// Each token's proximity is the byte distance between the end of the
// previous word and its own start in the rendered text.
func Tokenize(text string, weights GapWeights) ([]Token, error) {
	if !utf8.ValidString(text) {
		return nil, errors.New(errors.ErrNormalization, "input is not valid UTF-8")
	}
	s := tagPattern.ReplaceAllString(text, " ")
	s = html.UnescapeString(s)
	s = strings.ToLower(s)
	s = possessivePattern.ReplaceAllString(s, "")
	s = gapRunPattern.ReplaceAllStringFunc(s, func(run string) string {
		return strings.Repeat(" ", weights.widthOf(run))
	})
	s = strayPunctPattern.ReplaceAllString(s, "")

	spans := wordRunPattern.FindAllStringIndex(s, -1)
	tokens := make([]Token, 0, len(spans))
	prevEnd := -1
	for _, span := range spans {
		proximity := 0
		if prevEnd >= 0 {
			proximity = span[0] - prevEnd
		}
		tokens = append(tokens, Token{
			Word:      s[span[0]:span[1]],
			Proximity: proximity,
		})
		prevEnd = span[1]
	}
	return tokens, nil
}

// widthOf returns the rendered width of a separator run: the widest class
// present wins, and a run is never rendered narrower than one space.
func (w GapWeights) widthOf(run string) int {
	width := 0
	for _, r := range run {
		var class int
		switch r {
		case '.', '?', '!':
			class = w.Sentence
		case '\t':
			class = w.Tab
		case '\n', '\r':
			class = w.Newline
		case ';', ':', ',', '-':
			class = w.Punctuation
		default:
			class = w.Space
		}
		if class > width {
			width = class
		}
	}
	if width < 1 {
		width = 1
	}
	return width
}
