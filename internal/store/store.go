// Package store defines the index store contract and its two backends: a
// PostgreSQL store for production and an in-memory store for tests and
// embedding. The store owns all persistence: postings, document types,
// popular words, and ranked-result rows with their content-hash cache.
package store

import (
	"context"

	"github.com/searchcore/fulltext/internal/document"
)

// Batch is the unit of work flushed by one indexer commit. Everything in a
// batch is applied inside a single transaction: either all of it becomes
// visible or none of it does.
type Batch struct {
	DocumentType int
	// WipeType removes every existing posting for the document type before
	// inserting. Set on the first commit of a fresh-mode indexer.
	WipeType bool
	// DeleteDocumentIDs lists documents whose old postings are superseded by
	// this batch, scoped to DocumentType.
	DeleteDocumentIDs []string
	Postings          []document.Keyword
	// PopularWords are inserted into the global popular-words table only if
	// absent.
	PopularWords []string
}

// RankRequest drives one ranking invocation.
type RankRequest struct {
	// Keywords is the stemmed, space-separated search string. Duplicate
	// words are deduplicated before matching.
	Keywords    string
	ContentHash string
	// DocumentTypes restricts the search; nil or empty means all types.
	DocumentTypes []int
	// CandidateUniqueID keys the persisted result rows when no cached
	// result set is reused.
	CandidateUniqueID string
}

// Result is one ranked row persisted under a unique id.
type Result struct {
	DocumentID    string
	DocumentType  int
	PrimarySort   float64
	SecondarySort float64
}

// Store is the persistent postings and results store. Implementations must
// make CommitIndex and Rank atomic: no partial postings or result rows may
// be observed by concurrent readers.
type Store interface {
	// CreateDocumentType registers a type name and returns its id. Creating
	// an existing name returns the existing id.
	CreateDocumentType(ctx context.Context, name string) (int, error)
	// LookupDocumentType resolves a type name; ok is false if the name was
	// never registered.
	LookupDocumentType(ctx context.Context, name string) (id int, ok bool, err error)
	// RemoveDocumentType removes a type and cascades to its postings and
	// result rows.
	RemoveDocumentType(ctx context.Context, name string) error

	// CommitIndex applies one indexing batch transactionally.
	CommitIndex(ctx context.Context, batch Batch) error

	// Rank executes the ranking pass and returns the unique id of the
	// result set: the candidate id when freshly computed, or the id of a
	// cached result set with the same content hash whose expiry is then
	// refreshed. Stale cache entries and orphaned result rows are purged
	// opportunistically.
	Rank(ctx context.Context, req RankRequest) (string, error)

	// Results returns the rows persisted under a unique id, best first.
	Results(ctx context.Context, uniqueID string) ([]Result, error)
	// ResultCount returns the number of rows persisted under a unique id.
	ResultCount(ctx context.Context, uniqueID string) (int, error)

	// PopularWords returns the deduplicated popular-word list, at most
	// limit entries (limit <= 0 means all).
	PopularWords(ctx context.Context, limit int) ([]string, error)
}
