package rank

import (
	"math"
	"testing"
)

func TestComputeOrdersByProximityOverWeight(t *testing.T) {
	words := []string{"red", "ros"}
	postings := map[string][]Posting{
		"red": {
			{DocumentID: "doc-1", DocumentType: 1, Weight: 10, Location: 0},
			{DocumentID: "doc-2", DocumentType: 1, Weight: 1, Location: 0},
		},
		"ros": {
			{DocumentID: "doc-1", DocumentType: 1, Weight: 10, Location: 1},
			{DocumentID: "doc-2", DocumentType: 1, Weight: 1, Location: 100},
		},
	}

	scored := Compute(words, postings)
	if len(scored) != 2 {
		t.Fatalf("Compute returned %d documents, want 2", len(scored))
	}
	if scored[0].DocumentID != "doc-1" || scored[1].DocumentID != "doc-2" {
		t.Fatalf("order = [%s %s], want [doc-1 doc-2]", scored[0].DocumentID, scored[1].DocumentID)
	}
	if want := 1.0 / 20.0; math.Abs(scored[0].PrimarySort-want) > 1e-9 {
		t.Errorf("doc-1 primary = %v, want %v", scored[0].PrimarySort, want)
	}
	if want := 100.0 / 2.0; math.Abs(scored[1].PrimarySort-want) > 1e-9 {
		t.Errorf("doc-2 primary = %v, want %v", scored[1].PrimarySort, want)
	}
}

func TestComputeIsConjunctive(t *testing.T) {
	words := []string{"red", "ros"}
	postings := map[string][]Posting{
		"red": {
			{DocumentID: "doc-1", DocumentType: 1, Weight: 1, Location: 0},
			{DocumentID: "doc-3", DocumentType: 1, Weight: 9, Location: 0},
		},
		"ros": {
			{DocumentID: "doc-1", DocumentType: 1, Weight: 1, Location: 1},
		},
	}

	scored := Compute(words, postings)
	if len(scored) != 1 {
		t.Fatalf("Compute returned %d documents, want 1", len(scored))
	}
	if scored[0].DocumentID != "doc-1" {
		t.Errorf("surviving document = %s, want doc-1", scored[0].DocumentID)
	}
}

func TestComputeSingleKeyword(t *testing.T) {
	words := []string{"ros"}
	postings := map[string][]Posting{
		"ros": {
			{DocumentID: "light", DocumentType: 1, Weight: 1, Location: 7},
			{DocumentID: "heavy", DocumentType: 1, Weight: 5, Location: 3},
		},
	}

	scored := Compute(words, postings)
	if len(scored) != 2 {
		t.Fatalf("Compute returned %d documents, want 2", len(scored))
	}
	for _, sc := range scored {
		if sc.PrimarySort != 0 {
			t.Errorf("%s primary = %v, want 0 for a single keyword", sc.DocumentID, sc.PrimarySort)
		}
	}
	// Heavier total weight means a smaller secondary key, so it sorts first.
	if scored[0].DocumentID != "heavy" {
		t.Errorf("order = [%s %s], want heavy first", scored[0].DocumentID, scored[1].DocumentID)
	}
}

func TestComputeUsesClosestLocationPair(t *testing.T) {
	words := []string{"red", "ros"}
	postings := map[string][]Posting{
		"red": {
			{DocumentID: "doc-1", DocumentType: 1, Weight: 1, Location: 0},
			{DocumentID: "doc-1", DocumentType: 1, Weight: 1, Location: 50},
		},
		"ros": {
			{DocumentID: "doc-1", DocumentType: 1, Weight: 1, Location: 52},
		},
	}

	scored := Compute(words, postings)
	if len(scored) != 1 {
		t.Fatalf("Compute returned %d documents, want 1", len(scored))
	}
	// min(|0-52|, |50-52|) = 2 across three matched postings of weight 1.
	if want := 2.0 / 3.0; math.Abs(scored[0].PrimarySort-want) > 1e-9 {
		t.Errorf("primary = %v, want %v", scored[0].PrimarySort, want)
	}
}

func TestComputeTieBreaksOnDocumentID(t *testing.T) {
	words := []string{"ros"}
	postings := map[string][]Posting{
		"ros": {
			{DocumentID: "b", DocumentType: 1, Weight: 2, Location: 0},
			{DocumentID: "a", DocumentType: 1, Weight: 2, Location: 9},
		},
	}

	scored := Compute(words, postings)
	if scored[0].DocumentID != "a" || scored[1].DocumentID != "b" {
		t.Errorf("order = [%s %s], want [a b]", scored[0].DocumentID, scored[1].DocumentID)
	}
}

func TestComputeEmptyInputs(t *testing.T) {
	if got := Compute(nil, nil); got != nil {
		t.Errorf("Compute(nil, nil) = %v, want nil", got)
	}
	if got := Compute([]string{"ros"}, map[string][]Posting{}); len(got) != 0 {
		t.Errorf("Compute with no postings = %v, want empty", got)
	}
}

func BenchmarkCompute(b *testing.B) {
	words := []string{"alpha", "beta", "gamma"}
	postings := make(map[string][]Posting, len(words))
	for w, word := range words {
		for doc := 0; doc < 200; doc++ {
			postings[word] = append(postings[word], Posting{
				DocumentID:   "doc-" + string(rune('a'+doc%26)),
				DocumentType: 1,
				Weight:       1 + doc%5,
				Location:     doc*3 + w,
			})
		}
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Compute(words, postings)
	}
}
