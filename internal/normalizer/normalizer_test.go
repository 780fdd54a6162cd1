package normalizer

import (
	"errors"
	"strings"
	"testing"

	ferrors "github.com/searchcore/fulltext/pkg/errors"
)

func TestNormalizeForSpelling(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"tags stripped", "<b>Hello</b> <i>World</i>", "Hello World"},
		{"entities decoded", "fish &amp; chips", "fish chips"},
		{"repeated dashes collapse", "red---hot", "red-hot"},
		{"dangling dash dropped", "red --- hot", "red hot"},
		{"edge junk trimmed", "...rose!!", "rose"},
		{"interior punctuation collapsed", "red , blue ; green", "red blue green"},
		{"whitespace collapsed", "red   \t blue", "red blue"},
		{"case preserved", "Red Roses", "Red Roses"},
		{"apostrophe kept", "rose's thorn", "rose's thorn"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeForSpelling(tt.in)
			if err != nil {
				t.Fatalf("NormalizeForSpelling(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeForSpelling(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeForSearching(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Red Roses", "red roses"},
		{"possessive stripped", "Rose's Garden", "rose garden"},
		{"markup and possessive", "<p>The Queen's Speech</p>", "the queen speech"},
		{"non-possessive apostrophe kept", "don't panic", "don't panic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeForSearching(tt.in)
			if err != nil {
				t.Fatalf("NormalizeForSearching(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeForSearching(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"<b>Red</b> Rose's --- garden!!",
		"fish &amp; chips; salt, vinegar",
		"Hello\tWorld\nagain",
	}
	for _, in := range inputs {
		spelled, err := NormalizeForSpelling(in)
		if err != nil {
			t.Fatalf("NormalizeForSpelling(%q) error: %v", in, err)
		}
		once, err := NormalizeForSearching(spelled)
		if err != nil {
			t.Fatalf("NormalizeForSearching error: %v", err)
		}
		twice, err := NormalizeForSearching(once)
		if err != nil {
			t.Fatalf("NormalizeForSearching (second pass) error: %v", err)
		}
		if once != twice {
			t.Errorf("normalization of %q is not idempotent: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeRejectsInvalidUTF8(t *testing.T) {
	bad := string([]byte{0xff, 0xfe, 0xfd})
	if _, err := NormalizeForSpelling(bad); !errors.Is(err, ferrors.ErrNormalization) {
		t.Errorf("NormalizeForSpelling(invalid) error = %v, want ErrNormalization", err)
	}
	if _, err := Tokenize(bad, DefaultGapWeights()); !errors.Is(err, ferrors.ErrNormalization) {
		t.Errorf("Tokenize(invalid) error = %v, want ErrNormalization", err)
	}
}

func TestTokenizeProximity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Token
	}{
		{
			name: "sentence gap",
			in:   "a. b",
			want: []Token{{"a", 0}, {"b", 5}},
		},
		{
			name: "plain space",
			in:   "a b",
			want: []Token{{"a", 0}, {"b", 1}},
		},
		{
			name: "mid sentence punctuation",
			in:   "red-hot chili",
			want: []Token{{"red", 0}, {"hot", 2}, {"chili", 1}},
		},
		{
			name: "newline reads as sentence",
			in:   "one\ntwo",
			want: []Token{{"one", 0}, {"two", 5}},
		},
		{
			name: "widest class in run wins",
			in:   "one, . two",
			want: []Token{{"one", 0}, {"two", 5}},
		},
		{
			name: "markup stripped before splitting",
			in:   "<b>Hello</b> World",
			want: []Token{{"hello", 0}, {"world", 1}},
		},
		{
			name: "possessive stripped",
			in:   "Rose's garden",
			want: []Token{{"rose", 0}, {"garden", 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.in, DefaultGapWeights())
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.in, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Tokenize(%q)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenizeProximityIsByteBased(t *testing.T) {
	// The word before the gap is multi-byte; the gap itself still renders
	// as one space, so the delta is 1 regardless of rune widths.
	tokens, err := Tokenize("café bar", DefaultGapWeights())
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("Tokenize = %v, want 2 tokens", tokens)
	}
	if tokens[1].Proximity != 1 {
		t.Errorf("proximity = %d, want 1", tokens[1].Proximity)
	}
	if tokens[0].Word != "café" {
		t.Errorf("multi-byte word mangled: %q", tokens[0].Word)
	}
}

func TestTokenizeCustomWeights(t *testing.T) {
	weights := GapWeights{Sentence: 9, Tab: 5, Newline: 5, Punctuation: 3, Space: 1}
	tokens, err := Tokenize("a. b", weights)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if tokens[1].Proximity != 9 {
		t.Errorf("proximity = %d, want 9", tokens[1].Proximity)
	}
}

func BenchmarkTokenize(b *testing.B) {
	text := strings.Repeat("Information retrieval systems combine tokenization, "+
		"stemming, and stop-word removal. The inverted index maps each term to "+
		"the documents containing it! ", 20)
	weights := DefaultGapWeights()
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	for i := 0; i < b.N; i++ {
		tokens, err := Tokenize(text, weights)
		if err != nil {
			b.Fatal(err)
		}
		_ = tokens
	}
}
