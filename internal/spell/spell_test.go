package spell

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ferrors "github.com/searchcore/fulltext/pkg/errors"
)

func TestDictionary(t *testing.T) {
	d := NewDictionary(map[string]string{
		"teh":     "the",
		"recieve": "receive",
	})

	misspellings, err := d.MisspellingsInPhrase("teh cat will recieve mail")
	if err != nil {
		t.Fatalf("MisspellingsInPhrase error: %v", err)
	}
	want := map[string]string{"teh": "the", "recieve": "receive"}
	if len(misspellings) != len(want) {
		t.Fatalf("misspellings = %v, want %v", misspellings, want)
	}
	for k, v := range want {
		if misspellings[k] != v {
			t.Errorf("misspellings[%q] = %q, want %q", k, misspellings[k], v)
		}
	}

	if got, _ := d.ProperSpelling("TEH"); got != "the" {
		t.Errorf("ProperSpelling(TEH) = %q, want the", got)
	}
	if got, _ := d.ProperSpelling("cat"); got != "cat" {
		t.Errorf("ProperSpelling(cat) = %q, want unchanged", got)
	}
}

func TestDictionaryPersonalWordlistSuppresses(t *testing.T) {
	d := NewDictionary(map[string]string{"teh": "the"})
	if err := d.AddToPersonalWordlist("teh"); err != nil {
		t.Fatalf("AddToPersonalWordlist error: %v", err)
	}
	misspellings, err := d.MisspellingsInPhrase("teh cat")
	if err != nil {
		t.Fatalf("MisspellingsInPhrase error: %v", err)
	}
	if len(misspellings) != 0 {
		t.Errorf("misspellings = %v, want none after learning", misspellings)
	}
	if got, _ := d.ProperSpelling("teh"); got != "teh" {
		t.Errorf("ProperSpelling(teh) = %q, want unchanged after learning", got)
	}
}

func writeWordlist(t *testing.T, words ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte(strings.Join(words, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileBackedSuggestions(t *testing.T) {
	dict := writeWordlist(t, "rose", "violet", "garden", "tulip")
	checker, err := NewFileBacked(dict, "")
	if err != nil {
		t.Fatalf("NewFileBacked error: %v", err)
	}

	if got, _ := checker.ProperSpelling("rose"); got != "rose" {
		t.Errorf("ProperSpelling(rose) = %q, want accepted as-is", got)
	}
	if got, _ := checker.ProperSpelling("rosse"); got != "rose" {
		t.Errorf("ProperSpelling(rosse) = %q, want rose", got)
	}

	misspellings, err := checker.MisspellingsInPhrase("rosse garden 123 tulyp")
	if err != nil {
		t.Fatalf("MisspellingsInPhrase error: %v", err)
	}
	if misspellings["rosse"] != "rose" {
		t.Errorf("misspellings[rosse] = %q, want rose", misspellings["rosse"])
	}
	if misspellings["tulyp"] != "tulip" {
		t.Errorf("misspellings[tulyp] = %q, want tulip", misspellings["tulyp"])
	}
	if _, ok := misspellings["garden"]; ok {
		t.Error("known word garden flagged as misspelled")
	}
	if _, ok := misspellings["123"]; ok {
		t.Error("non-alphabetic token flagged as misspelled")
	}
}

func TestFileBackedSoundexFallback(t *testing.T) {
	dict := writeWordlist(t, "rose", "violet", "garden", "tulip")
	checker, err := NewFileBacked(dict, "")
	if err != nil {
		t.Fatalf("NewFileBacked error: %v", err)
	}
	// More than two edits from every known word, but phonetically "violet".
	if got, _ := checker.ProperSpelling("vylatt"); got != "violet" {
		t.Errorf("ProperSpelling(vylatt) = %q, want violet", got)
	}
}

func TestFileBackedSuggestionTieBreak(t *testing.T) {
	dict := writeWordlist(t, "cat", "bat")
	checker, err := NewFileBacked(dict, "")
	if err != nil {
		t.Fatalf("NewFileBacked error: %v", err)
	}
	// Equidistant candidates resolve to the lexicographically smallest.
	if got, _ := checker.ProperSpelling("aat"); got != "bat" {
		t.Errorf("ProperSpelling(aat) = %q, want bat", got)
	}
}

func TestFileBackedPersonalWordlistPersists(t *testing.T) {
	dict := writeWordlist(t, "rose")
	personal := filepath.Join(t.TempDir(), "personal.txt")

	checker, err := NewFileBacked(dict, personal)
	if err != nil {
		t.Fatalf("NewFileBacked error: %v", err)
	}
	if err := checker.AddToPersonalWordlist("Zzyzx"); err != nil {
		t.Fatalf("AddToPersonalWordlist error: %v", err)
	}

	data, err := os.ReadFile(personal)
	if err != nil {
		t.Fatalf("reading personal wordlist: %v", err)
	}
	if !strings.Contains(string(data), "zzyzx") {
		t.Errorf("personal wordlist = %q, want zzyzx recorded", data)
	}

	reloaded, err := NewFileBacked(dict, personal)
	if err != nil {
		t.Fatalf("NewFileBacked (reload) error: %v", err)
	}
	misspellings, err := reloaded.MisspellingsInPhrase("zzyzx")
	if err != nil {
		t.Fatalf("MisspellingsInPhrase error: %v", err)
	}
	if len(misspellings) != 0 {
		t.Errorf("misspellings = %v, want learned word accepted after reload", misspellings)
	}
}

func TestFileBackedMissingWordlist(t *testing.T) {
	_, err := NewFileBacked(filepath.Join(t.TempDir(), "absent.txt"), "")
	if !errors.Is(err, ferrors.ErrSpellChecker) {
		t.Errorf("NewFileBacked error = %v, want ErrSpellChecker", err)
	}
}

func TestNoOpAcceptsEverything(t *testing.T) {
	var checker SpellChecker = NoOp{}
	misspellings, err := checker.MisspellingsInPhrase("xyzzy plugh")
	if err != nil {
		t.Fatalf("MisspellingsInPhrase error: %v", err)
	}
	if len(misspellings) != 0 {
		t.Errorf("misspellings = %v, want none", misspellings)
	}
	if got, _ := checker.ProperSpelling("xyzzy"); got != "xyzzy" {
		t.Errorf("ProperSpelling = %q, want unchanged", got)
	}
}
