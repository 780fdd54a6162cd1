package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/searchcore/fulltext/internal/document"
	"github.com/searchcore/fulltext/internal/rank"
	"github.com/searchcore/fulltext/pkg/errors"
)

// Memory is an in-process Store with the same observable semantics as the
// Postgres backend. It backs the package tests and is usable for embedding
// the engine without a database.
type Memory struct {
	// CacheWindow and ResultRetention mirror the SQL store's purge windows.
	CacheWindow     time.Duration
	ResultRetention time.Duration
	// Clock is injectable so expiry behaviour is testable.
	Clock func() time.Time

	mu       sync.Mutex
	types    map[string]int
	nextType int
	postings []document.Keyword
	popular  []string
	results  map[string][]Result
	created  map[string]time.Time
	cache    map[string]memoryCacheEntry

	rankComputations atomic.Int64
}

type memoryCacheEntry struct {
	uniqueID string
	created  time.Time
}

// NewMemory returns an empty in-memory store with the default 30 minute
// cache window and 5 minute result retention.
func NewMemory() *Memory {
	return &Memory{
		CacheWindow:     30 * time.Minute,
		ResultRetention: 5 * time.Minute,
		Clock:           time.Now,
		types:           make(map[string]int),
		results:         make(map[string][]Result),
		created:         make(map[string]time.Time),
		cache:           make(map[string]memoryCacheEntry),
	}
}

// RankComputations reports how many Rank calls actually recomputed a result
// set rather than reusing a cached one.
func (m *Memory) RankComputations() int64 {
	return m.rankComputations.Load()
}

// CreateDocumentType registers a type name, returning the existing id when
// already registered.
func (m *Memory) CreateDocumentType(_ context.Context, name string) (int, error) {
	if name == "" {
		return 0, errors.New(errors.ErrInvalidInput, "document type name is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.types[name]; ok {
		return id, nil
	}
	m.nextType++
	m.types[name] = m.nextType
	return m.nextType, nil
}

// LookupDocumentType resolves a type name to its id.
func (m *Memory) LookupDocumentType(_ context.Context, name string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.types[name]
	return id, ok, nil
}

// RemoveDocumentType drops a type with its postings and result rows.
func (m *Memory) RemoveDocumentType(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.types[name]
	if !ok {
		return errors.Newf(errors.ErrUnknownDocumentType, "%s", name)
	}
	delete(m.types, name)
	kept := m.postings[:0]
	for _, k := range m.postings {
		if k.DocumentType != id {
			kept = append(kept, k)
		}
	}
	m.postings = kept
	for uid, rows := range m.results {
		filtered := rows[:0]
		for _, r := range rows {
			if r.DocumentType != id {
				filtered = append(filtered, r)
			}
		}
		m.results[uid] = filtered
	}
	return nil
}

// CommitIndex applies a batch atomically under the store lock.
func (m *Memory) CommitIndex(_ context.Context, batch Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make([]document.Keyword, 0, len(m.postings))
	doomed := make(map[string]struct{}, len(batch.DeleteDocumentIDs))
	for _, id := range batch.DeleteDocumentIDs {
		doomed[id] = struct{}{}
	}
	for _, k := range m.postings {
		if k.DocumentType == batch.DocumentType {
			if batch.WipeType {
				continue
			}
			if _, ok := doomed[k.DocumentID]; ok {
				continue
			}
		}
		kept = append(kept, k)
	}
	m.postings = append(kept, batch.Postings...)

	for _, word := range batch.PopularWords {
		exists := false
		for _, have := range m.popular {
			if have == word {
				exists = true
				break
			}
		}
		if !exists {
			m.popular = append(m.popular, word)
		}
	}
	return nil
}

// Rank mirrors the Postgres ranking pass: purge, cache lookup with refresh,
// otherwise compute and persist under the candidate id.
func (m *Memory) Rank(_ context.Context, req RankRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Clock()
	m.purgeStaleLocked(now)

	if entry, ok := m.cache[req.ContentHash]; ok {
		entry.created = now
		m.cache[req.ContentHash] = entry
		return entry.uniqueID, nil
	}

	words := distinctWords(req.Keywords)
	postings := make(map[string][]rank.Posting, len(words))
	typeSet := make(map[int]struct{}, len(req.DocumentTypes))
	for _, t := range req.DocumentTypes {
		typeSet[t] = struct{}{}
	}
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}
	for _, k := range m.postings {
		if _, ok := wordSet[k.Word]; !ok {
			continue
		}
		if len(typeSet) > 0 {
			if _, ok := typeSet[k.DocumentType]; !ok {
				continue
			}
		}
		postings[k.Word] = append(postings[k.Word], rank.Posting{
			DocumentID:   k.DocumentID,
			DocumentType: k.DocumentType,
			Weight:       k.Weight,
			Location:     k.Location,
		})
	}

	m.rankComputations.Add(1)
	scored := rank.Compute(words, postings)
	rows := make([]Result, 0, len(scored))
	for _, sc := range scored {
		rows = append(rows, Result{
			DocumentID:    sc.DocumentID,
			DocumentType:  sc.DocumentType,
			PrimarySort:   sc.PrimarySort,
			SecondarySort: sc.SecondarySort,
		})
	}
	m.results[req.CandidateUniqueID] = rows
	m.created[req.CandidateUniqueID] = now
	m.cache[req.ContentHash] = memoryCacheEntry{uniqueID: req.CandidateUniqueID, created: now}
	return req.CandidateUniqueID, nil
}

func (m *Memory) purgeStaleLocked(now time.Time) {
	live := make(map[string]struct{}, len(m.cache))
	for hash, entry := range m.cache {
		if now.Sub(entry.created) > m.CacheWindow {
			delete(m.cache, hash)
			continue
		}
		live[entry.uniqueID] = struct{}{}
	}
	for uid, created := range m.created {
		if now.Sub(created) <= m.ResultRetention {
			continue
		}
		if _, ok := live[uid]; ok {
			continue
		}
		delete(m.results, uid)
		delete(m.created, uid)
	}
}

// Results returns the rows under a unique id, best first.
func (m *Memory) Results(_ context.Context, uniqueID string) ([]Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.results[uniqueID]
	out := make([]Result, len(rows))
	copy(out, rows)
	return out, nil
}

// ResultCount returns the number of rows under a unique id.
func (m *Memory) ResultCount(_ context.Context, uniqueID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results[uniqueID]), nil
}

// PostingsFor returns the stored postings for one document, in insertion
// order. Intended for tests and debugging.
func (m *Memory) PostingsFor(documentID string, documentType int) []document.Keyword {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []document.Keyword
	for _, k := range m.postings {
		if k.DocumentID == documentID && k.DocumentType == documentType {
			out = append(out, k)
		}
	}
	return out
}

// PopularWords returns the popular-word list.
func (m *Memory) PopularWords(_ context.Context, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	words := make([]string, len(m.popular))
	copy(words, m.popular)
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return words, nil
}
