// Package indexer turns Documents into keyword postings and commits them
// transactionally to the index store.
//
// An Indexer accumulates postings, popular-keyword candidates, and a
// delete-before-insert queue in memory across Index calls; nothing is
// visible to readers until Commit flushes the whole batch in one store
// transaction. A failed commit leaves the buffers intact so the caller can
// retry. Indexing is idempotent per document id within one fresh-mode
// session, but not across separate indexer instances unless the caller
// arranges deletion itself.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/searchcore/fulltext/internal/document"
	"github.com/searchcore/fulltext/internal/normalizer"
	"github.com/searchcore/fulltext/internal/spell"
	"github.com/searchcore/fulltext/internal/stemmer"
	"github.com/searchcore/fulltext/internal/store"
	"github.com/searchcore/fulltext/pkg/errors"
	"github.com/searchcore/fulltext/pkg/logger"
)

// Mode selects how a session treats existing postings for its document
// type.
type Mode int

const (
	// ModeFresh wipes all postings for the document type on the first
	// commit and queues per-document deletes for every indexed id.
	ModeFresh Mode = iota
	// ModeAppend leaves existing postings untouched.
	ModeAppend
)

// DefaultMaxWordLength is the posting word truncation applied unless
// overridden. Zero disables truncation.
const DefaultMaxWordLength = 32

// Indexer accumulates one batch of index work for a single document type.
// It is not safe for concurrent use; one caller drives it to Commit or
// Discard.
type Indexer struct {
	store    store.Store
	typeName string
	typeID   int
	mode     Mode

	gapWeights    normalizer.GapWeights
	maxWordLength int
	stem          stemmer.Stemmer
	checker       spell.SpellChecker
	unindexed     map[string]struct{}

	keywords    []document.Keyword
	popular     []string
	popularSeen map[string]struct{}
	deleteQueue []string
	deleteSeen  map[string]struct{}
	learned     map[string]struct{}

	wiped  bool
	closed bool
	logger *slog.Logger
}

// New creates an Indexer for a registered document type. The type must have
// been created beforehand.
func New(ctx context.Context, st store.Store, documentType string, mode Mode) (*Indexer, error) {
	typeID, ok, err := st.LookupDocumentType(ctx, documentType)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownDocumentType, "%s", documentType)
	}
	ix := &Indexer{
		store:         st,
		typeName:      documentType,
		typeID:        typeID,
		mode:          mode,
		gapWeights:    normalizer.DefaultGapWeights(),
		maxWordLength: DefaultMaxWordLength,
		stem:          stemmer.Suffix{},
		unindexed:     make(map[string]struct{}),
		popularSeen:   make(map[string]struct{}),
		deleteSeen:    make(map[string]struct{}),
		learned:       make(map[string]struct{}),
		logger:        logger.WithComponent("indexer").With("document_type", documentType),
	}
	return ix, nil
}

// SetMaxWordLength changes the posting word truncation. Zero disables
// truncation.
func (ix *Indexer) SetMaxWordLength(n int) {
	if n < 0 {
		n = 0
	}
	ix.maxWordLength = n
}

// SetGapWeights overrides the proximity gap weights used by tokenization.
func (ix *Indexer) SetGapWeights(w normalizer.GapWeights) {
	ix.gapWeights = w
}

// SetStemmer replaces the stemmer. The query engine must use the same one
// for postings to match.
func (ix *Indexer) SetStemmer(s stemmer.Stemmer) {
	ix.stem = s
}

// SetSpellChecker attaches a spell checker whose personal wordlist is
// taught the corpus vocabulary during indexing. Nil detaches.
func (ix *Indexer) SetSpellChecker(c spell.SpellChecker) {
	ix.checker = c
}

// AddUnindexedWord excludes a word (compared post-stemming) from the
// index. Unindexed words still count for popular-keyword harvesting only if
// the raw token itself is not unindexed.
func (ix *Indexer) AddUnindexedWord(word string) {
	ix.unindexed[strings.ToLower(word)] = struct{}{}
}

// DocumentTypeID returns the id the session indexes under.
func (ix *Indexer) DocumentTypeID() int { return ix.typeID }

// PendingPostings returns the number of buffered, uncommitted postings.
func (ix *Indexer) PendingPostings() int { return len(ix.keywords) }

// PendingPopularWords returns the number of buffered popular-keyword
// candidates.
func (ix *Indexer) PendingPopularWords() int { return len(ix.popular) }

// Index tokenizes every field of doc in order and buffers the resulting
// postings. The location counter runs across fields, stepping by the
// sentence gap at each field boundary, so distances within the document's
// concatenated text stay meaningful.
func (ix *Indexer) Index(doc document.Document) error {
	if ix.closed {
		return errors.New(errors.ErrInvalidInput, "indexer is closed")
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if ix.mode == ModeFresh {
		if _, ok := ix.deleteSeen[doc.ID]; !ok {
			ix.deleteSeen[doc.ID] = struct{}{}
			ix.deleteQueue = append(ix.deleteQueue, doc.ID)
		}
	}

	location := 0
	emitted := false
	for ordinal, field := range doc.Fields {
		text, err := doc.Accessor(field.Name)
		if err != nil {
			return fmt.Errorf("fetching field %q of document %s: %w", field.Name, doc.ID, err)
		}
		tokens, err := normalizer.Tokenize(text, ix.gapWeights)
		if err != nil {
			return err
		}
		if len(tokens) > 0 && emitted {
			location += ix.gapWeights.Sentence
		}
		for _, tok := range tokens {
			if err := ix.consume(tok, field, ordinal, doc.ID, &location, &emitted); err != nil {
				return err
			}
		}
	}
	ix.logger.Debug("document indexed",
		"document_id", doc.ID,
		"pending_postings", len(ix.keywords),
	)
	return nil
}

func (ix *Indexer) consume(tok normalizer.Token, field document.Field, ordinal int, docID string, location *int, emitted *bool) error {
	raw := tok.Word
	if ix.checker != nil {
		if err := ix.learn(raw); err != nil {
			return err
		}
	}
	if field.Popular && !normalizer.IsNumeric(raw) {
		if _, blocked := ix.unindexed[raw]; !blocked {
			if _, seen := ix.popularSeen[raw]; !seen {
				ix.popularSeen[raw] = struct{}{}
				ix.popular = append(ix.popular, raw)
			}
		}
	}

	stemmed := ix.stem.Stem(raw)
	if strings.TrimSpace(stemmed) == "" {
		return nil
	}
	if _, blocked := ix.unindexed[stemmed]; blocked {
		return nil
	}
	*location += tok.Proximity
	ix.keywords = append(ix.keywords, document.Keyword{
		Word:         truncate(stemmed, ix.maxWordLength),
		DocumentID:   docID,
		DocumentType: ix.typeID,
		FieldOrdinal: ordinal,
		Weight:       field.Weight,
		Location:     *location,
	})
	*emitted = true
	return nil
}

// learn teaches the spell checker corpus words it would otherwise flag, so
// they stop surfacing as suggestions on the next run.
func (ix *Indexer) learn(raw string) error {
	if _, done := ix.learned[raw]; done {
		return nil
	}
	ix.learned[raw] = struct{}{}
	if !normalizer.IsAlphabetic(raw) {
		return nil
	}
	proper, err := ix.checker.ProperSpelling(raw)
	if err != nil {
		return err
	}
	if proper == raw {
		return nil
	}
	return ix.checker.AddToPersonalWordlist(raw)
}

// Commit flushes the buffered batch in one store transaction and resets the
// session buffers. On failure the buffers are left intact for retry.
func (ix *Indexer) Commit(ctx context.Context) error {
	if ix.closed {
		return errors.New(errors.ErrInvalidInput, "indexer is closed")
	}
	batch := store.Batch{
		DocumentType:      ix.typeID,
		WipeType:          ix.mode == ModeFresh && !ix.wiped,
		DeleteDocumentIDs: ix.deleteQueue,
		Postings:          ix.keywords,
		PopularWords:      ix.popular,
	}
	if err := ix.store.CommitIndex(ctx, batch); err != nil {
		ix.logger.Error("commit failed, buffers intact", "error", err)
		return err
	}
	if ix.mode == ModeFresh {
		ix.wiped = true
	}
	committed := len(ix.keywords)
	ix.reset()
	ix.logger.Info("batch committed", "postings", committed)
	return nil
}

// Discard drops all buffered work without touching the store.
func (ix *Indexer) Discard() {
	ix.reset()
}

// Close fails loudly if buffered work was neither committed nor discarded.
// There is no auto-commit on teardown.
func (ix *Indexer) Close() error {
	ix.closed = true
	if len(ix.keywords) > 0 || len(ix.popular) > 0 || len(ix.deleteQueue) > 0 {
		return errors.Newf(errors.ErrPendingBatch,
			"%d postings, %d popular words, %d queued deletes",
			len(ix.keywords), len(ix.popular), len(ix.deleteQueue))
	}
	return nil
}

func (ix *Indexer) reset() {
	ix.keywords = nil
	ix.popular = nil
	ix.popularSeen = make(map[string]struct{})
	ix.deleteQueue = nil
	ix.deleteSeen = make(map[string]struct{})
}

// truncate clips a word to at most max bytes without splitting a rune.
func truncate(word string, max int) string {
	if max <= 0 || len(word) <= max {
		return word
	}
	for max > 0 && !isRuneStart(word[max]) {
		max--
	}
	return word[:max]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
