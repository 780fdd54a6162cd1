package fuzzy

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"rose", "rose", 0},
		{"rose", "ros", 1},
		{"rose", "roses", 1},
		{"rose", "nose", 1},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"café", "cafe", 1},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := Levenshtein(tt.b, tt.a); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestSoundex(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"robert", "R163"},
		{"Rupert", "R163"},
		{"red", "R300"},
		{"jackson", "J250"},
		{"tymczak", "T522"},
		{"a", "A000"},
		{"", ""},
		{"1234", ""},
	}
	for _, tt := range tests {
		if got := Soundex(tt.word); got != tt.want {
			t.Errorf("Soundex(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestSoundexSeparatesDistinctWords(t *testing.T) {
	if Soundex("rose") == Soundex("violet") {
		t.Error("rose and violet should not share a phonetic key")
	}
}

func BenchmarkLevenshtein(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Levenshtein("pneumonia", "pneumonoultramicroscopic")
	}
}
