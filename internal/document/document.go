// Package document defines the transient indexable-entity model: a Document
// is a view over application data, described by weighted Fields and resolved
// through an Accessor at indexing time. Nothing here is persisted directly;
// the Indexer turns Documents into Keyword postings.
package document

import (
	"github.com/searchcore/fulltext/pkg/errors"
)

// Field describes how one named property of a document contributes to the
// index. Popular fields additionally feed the popular-keyword table used for
// query suggestions.
type Field struct {
	Name    string
	Weight  int
	Popular bool
}

// Accessor resolves a field name to its raw text.
type Accessor func(field string) (string, error)

// MapAccessor builds an Accessor over a plain map. Missing fields resolve to
// empty text.
func MapAccessor(values map[string]string) Accessor {
	return func(field string) (string, error) {
		return values[field], nil
	}
}

// Document is one indexable entity: an external identifier, the ordered
// fields to index, and the accessor that resolves field text. Field order is
// significant; a field's position becomes the posting's field ordinal.
type Document struct {
	ID       string
	Fields   []Field
	Accessor Accessor
}

// Validate checks the document invariants: a non-empty id, an accessor, and
// named fields with weight >= 1.
func (d Document) Validate() error {
	if d.ID == "" {
		return errors.New(errors.ErrInvalidInput, "document id is empty")
	}
	if d.Accessor == nil {
		return errors.New(errors.ErrInvalidInput, "document has no accessor")
	}
	for i, f := range d.Fields {
		if f.Name == "" {
			return errors.Newf(errors.ErrInvalidInput, "field %d has no name", i)
		}
		if f.Weight < 1 {
			return errors.Newf(errors.ErrInvalidInput, "field %q has weight %d, want >= 1", f.Name, f.Weight)
		}
	}
	return nil
}

// Keyword is one posting: the atomic unit stored in the inverted index.
// Word is non-empty, trimmed, stemmed, and truncated to the configured
// maximum length. Location is a monotonically increasing proximity-weighted
// offset within the document's concatenated field text, not an ordinal word
// position.
type Keyword struct {
	Word         string
	DocumentID   string
	DocumentType int
	FieldOrdinal int
	Weight       int
	Location     int
}
