package store

import (
	"context"
	"testing"
	"time"

	"github.com/searchcore/fulltext/internal/document"
)

func seedMemory(t *testing.T) (*Memory, int) {
	t.Helper()
	ctx := context.Background()
	m := NewMemory()
	typeID, err := m.CreateDocumentType(ctx, "article")
	if err != nil {
		t.Fatal(err)
	}
	err = m.CommitIndex(ctx, Batch{
		DocumentType: typeID,
		Postings: []document.Keyword{
			{Word: "ros", DocumentID: "doc-1", DocumentType: typeID, Weight: 1, Location: 0},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return m, typeID
}

func TestRankCachesByContentHash(t *testing.T) {
	ctx := context.Background()
	m, typeID := seedMemory(t)

	req := RankRequest{
		Keywords:          "ros",
		ContentHash:       "hash-a",
		DocumentTypes:     []int{typeID},
		CandidateUniqueID: "uid-1",
	}
	first, err := m.Rank(ctx, req)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if first != "uid-1" {
		t.Fatalf("Rank = %q, want the candidate id on a cache miss", first)
	}

	req.CandidateUniqueID = "uid-2"
	second, err := m.Rank(ctx, req)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if second != "uid-1" {
		t.Errorf("Rank = %q, want the cached id uid-1", second)
	}
	if got := m.RankComputations(); got != 1 {
		t.Errorf("rank computations = %d, want 1", got)
	}
}

func TestRankCacheKeepsResultsAlivePastRetention(t *testing.T) {
	ctx := context.Background()
	m, typeID := seedMemory(t)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.Clock = func() time.Time { return now }

	req := RankRequest{
		Keywords:          "ros",
		ContentHash:       "hash-a",
		DocumentTypes:     []int{typeID},
		CandidateUniqueID: "uid-1",
	}
	if _, err := m.Rank(ctx, req); err != nil {
		t.Fatal(err)
	}

	// Past result retention but inside the cache window: the live cache
	// entry keeps the rows and the hit refreshes it.
	now = now.Add(10 * time.Minute)
	req.CandidateUniqueID = "uid-2"
	got, err := m.Rank(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if got != "uid-1" {
		t.Fatalf("Rank = %q, want cached uid-1", got)
	}
	count, err := m.ResultCount(ctx, "uid-1")
	if err != nil {
		t.Fatal(err)
	}
	if count == 0 {
		t.Error("result rows purged while their cache entry was live")
	}
}

func TestRankRecomputesAfterCacheWindow(t *testing.T) {
	ctx := context.Background()
	m, typeID := seedMemory(t)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.Clock = func() time.Time { return now }

	req := RankRequest{
		Keywords:          "ros",
		ContentHash:       "hash-a",
		DocumentTypes:     []int{typeID},
		CandidateUniqueID: "uid-1",
	}
	if _, err := m.Rank(ctx, req); err != nil {
		t.Fatal(err)
	}

	now = now.Add(31 * time.Minute)
	req.CandidateUniqueID = "uid-2"
	got, err := m.Rank(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if got != "uid-2" {
		t.Errorf("Rank = %q, want a fresh id after cache expiry", got)
	}
	if m.RankComputations() != 2 {
		t.Errorf("rank computations = %d, want 2", m.RankComputations())
	}
	count, err := m.ResultCount(ctx, "uid-1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("stale result rows = %d, want purged", count)
	}
}

func TestRankFiltersByDocumentType(t *testing.T) {
	ctx := context.Background()
	m, typeID := seedMemory(t)
	otherID, err := m.CreateDocumentType(ctx, "comment")
	if err != nil {
		t.Fatal(err)
	}

	uid, err := m.Rank(ctx, RankRequest{
		Keywords:          "ros",
		ContentHash:       "hash-other",
		DocumentTypes:     []int{otherID},
		CandidateUniqueID: "uid-other",
	})
	if err != nil {
		t.Fatal(err)
	}
	count, err := m.ResultCount(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("results = %d, want 0 for a type with no postings (type %d holds them)", count, typeID)
	}
}

func TestCommitIndexDeduplicatesPopularWords(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	typeID, err := m.CreateDocumentType(ctx, "article")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		err := m.CommitIndex(ctx, Batch{
			DocumentType: typeID,
			PopularWords: []string{"roses", "garden"},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	words, err := m.PopularWords(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 2 {
		t.Errorf("popular words = %v, want deduplicated pair", words)
	}
}

func TestRemoveDocumentTypeCascades(t *testing.T) {
	ctx := context.Background()
	m, typeID := seedMemory(t)

	if err := m.RemoveDocumentType(ctx, "article"); err != nil {
		t.Fatalf("RemoveDocumentType error: %v", err)
	}
	if got := m.PostingsFor("doc-1", typeID); len(got) != 0 {
		t.Errorf("postings = %v, want removed with their type", got)
	}
	if _, ok, _ := m.LookupDocumentType(ctx, "article"); ok {
		t.Error("type still resolvable after removal")
	}
}
