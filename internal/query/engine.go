// Package query implements the search side of the engine: it normalizes and
// spell-checks a raw query string, resolves blocked and popular words, and
// drives the store's ranking pass, producing a Result keyed by a unique id.
package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/searchcore/fulltext/internal/fuzzy"
	"github.com/searchcore/fulltext/internal/normalizer"
	"github.com/searchcore/fulltext/internal/spell"
	"github.com/searchcore/fulltext/internal/stemmer"
	"github.com/searchcore/fulltext/internal/store"
	"github.com/searchcore/fulltext/pkg/errors"
	"github.com/searchcore/fulltext/pkg/logger"
)

// Result is the outcome of one query. UniqueID joins into the store's
// ranked-result rows; it is empty when no document types were requested and
// no ranking ran. Rows under the id are ephemeral and purged after the
// retention window.
type Result struct {
	UniqueID      string
	QueryString   string
	BlockedWords  []string
	SearchedWords []string
	Misspellings  map[string]string
	DocumentTypes map[string]int
	DocumentCount int
}

// Engine executes queries against the index store. Configure it with the
// setters before serving; Query itself does not mutate the engine and may
// be called concurrently afterwards.
type Engine struct {
	store   store.Store
	stem    stemmer.Stemmer
	checker spell.SpellChecker
	cache   *ResultCache

	typeIDs    map[string]int
	blocked    map[string]struct{}
	popular    []string
	popularSet map[string]struct{}

	logger *slog.Logger
}

// New creates an Engine over a store with the default suffix stemmer.
func New(st store.Store) *Engine {
	return &Engine{
		store:      st,
		stem:       stemmer.Suffix{},
		typeIDs:    make(map[string]int),
		blocked:    make(map[string]struct{}),
		popularSet: make(map[string]struct{}),
		logger:     logger.WithComponent("query-engine"),
	}
}

// SetStemmer replaces the stemmer. It must match the one used at indexing
// time.
func (e *Engine) SetStemmer(s stemmer.Stemmer) { e.stem = s }

// SetSpellChecker attaches a spell checker consulted for suggestion
// output. Nil detaches.
func (e *Engine) SetSpellChecker(c spell.SpellChecker) { e.checker = c }

// SetResultCache attaches a Redis front cache for rank invocations.
func (e *Engine) SetResultCache(c *ResultCache) { e.cache = c }

// ResultCache returns the attached front cache, or nil.
func (e *Engine) ResultCache() *ResultCache { return e.cache }

// AddDocumentType restricts the search to a registered type. With no types
// added, Query performs normalization and suggestion work but no ranking.
func (e *Engine) AddDocumentType(ctx context.Context, name string) error {
	id, ok, err := e.store.LookupDocumentType(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Newf(errors.ErrUnknownDocumentType, "%s", name)
	}
	e.typeIDs[name] = id
	return nil
}

// AddBlockedWord excludes a word from searching; blocked words are reported
// on the Result instead.
func (e *Engine) AddBlockedWord(word string) {
	e.blocked[strings.ToLower(word)] = struct{}{}
}

// AddPopularWord registers a word known to yield results; near-miss query
// words have their suggestions overridden towards it.
func (e *Engine) AddPopularWord(word string) {
	w := strings.ToLower(word)
	if _, have := e.popularSet[w]; have {
		return
	}
	e.popularSet[w] = struct{}{}
	e.popular = append(e.popular, w)
}

// LoadPopularWords seeds the popular-word list from the store's harvested
// table.
func (e *Engine) LoadPopularWords(ctx context.Context, limit int) error {
	words, err := e.store.PopularWords(ctx, limit)
	if err != nil {
		return err
	}
	for _, w := range words {
		e.AddPopularWord(w)
	}
	return nil
}

// Query runs the full search pipeline over a raw keyword string: spelling
// normalization, misspelling detection, popular-word suggestion overrides,
// search normalization, blocked-word filtering, stemming, and finally the
// store's ranking pass when document types were requested.
func (e *Engine) Query(ctx context.Context, rawKeywords string) (*Result, error) {
	spelled, err := normalizer.NormalizeForSpelling(rawKeywords)
	if err != nil {
		return nil, err
	}

	misspellings := make(map[string]string)
	if e.checker != nil {
		misspellings, err = e.checker.MisspellingsInPhrase(spelled)
		if err != nil {
			return nil, err
		}
	}
	e.overrideWithPopular(spelled, misspellings)

	searchable, err := normalizer.NormalizeForSearching(rawKeywords)
	if err != nil {
		return nil, err
	}

	typeIDs := e.sortedTypeIDs()
	contentHash := hashQuery(searchable, typeIDs)

	var blocked, searched, stemmed []string
	for _, word := range strings.Fields(searchable) {
		if _, isBlocked := e.blocked[word]; isBlocked {
			blocked = append(blocked, word)
			continue
		}
		searched = append(searched, word)
		stemmed = append(stemmed, e.stem.Stem(word))
	}

	result := &Result{
		QueryString:   searchable,
		BlockedWords:  blocked,
		SearchedWords: searched,
		Misspellings:  misspellings,
		DocumentTypes: e.typeIDMap(),
	}
	if len(typeIDs) == 0 {
		e.logger.Debug("query without document types, skipping ranking", "query", searchable)
		return result, nil
	}

	req := store.RankRequest{
		Keywords:          strings.Join(stemmed, " "),
		ContentHash:       contentHash,
		DocumentTypes:     typeIDs,
		CandidateUniqueID: uuid.NewString(),
	}
	uniqueID, err := e.rank(ctx, req)
	if err != nil {
		return nil, err
	}
	count, err := e.store.ResultCount(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	result.UniqueID = uniqueID
	result.DocumentCount = count
	e.logger.Info("query executed",
		"query", searchable,
		"unique_id", uniqueID,
		"documents", count,
		"blocked", len(blocked),
	)
	return result, nil
}

func (e *Engine) rank(ctx context.Context, req store.RankRequest) (string, error) {
	if e.cache != nil {
		return e.cache.RankThrough(ctx, e.store, req)
	}
	return e.store.Rank(ctx, req)
}

// overrideWithPopular rewrites the suggestion for every searchable,
// non-blocked, non-numeric word that sits within one edit of a popular word
// or shares its Soundex key, biasing suggestions toward terms known to
// yield results.
func (e *Engine) overrideWithPopular(spelled string, misspellings map[string]string) {
	if len(e.popular) == 0 {
		return
	}
	for _, word := range strings.Fields(spelled) {
		lower := strings.ToLower(word)
		if _, isBlocked := e.blocked[lower]; isBlocked {
			continue
		}
		if normalizer.IsNumeric(lower) {
			continue
		}
		if _, isPopular := e.popularSet[lower]; isPopular {
			continue
		}
		key := fuzzy.Soundex(lower)
		for _, candidate := range e.popular {
			if fuzzy.Levenshtein(lower, candidate) < 2 || (key != "" && fuzzy.Soundex(candidate) == key) {
				misspellings[word] = candidate
				break
			}
		}
	}
}

func (e *Engine) sortedTypeIDs() []int {
	ids := make([]int, 0, len(e.typeIDs))
	for _, id := range e.typeIDs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (e *Engine) typeIDMap() map[string]int {
	m := make(map[string]int, len(e.typeIDs))
	for name, id := range e.typeIDs {
		m[name] = id
	}
	return m
}

// hashQuery computes the stable content hash a result set is cached under:
// the searching-normalized keywords plus the sorted document type ids.
func hashQuery(keywords string, typeIDs []int) string {
	var b strings.Builder
	b.WriteString(keywords)
	for _, id := range typeIDs {
		fmt.Fprintf(&b, "|%d", id)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
