// Package rank implements the proximity-and-weight relevance scoring shared
// by the store backends. Matching is conjunctive: a document survives only
// if it holds a posting for every distinct queried keyword. Surviving
// documents are ordered by how tightly their keywords cluster, with total
// posting weight breaking ties.
package rank

import "sort"

// Posting is one index row fetched for a keyword.
type Posting struct {
	DocumentID   string
	DocumentType int
	Weight       int
	Location     int
}

// Scored is one surviving document with its sort keys. Lower sorts first on
// both keys: small average pairwise distance relative to weight, then small
// inverse weight.
type Scored struct {
	DocumentID    string
	DocumentType  int
	PrimarySort   float64
	SecondarySort float64
}

type docKey struct {
	id  string
	typ int
}

// Compute ranks the documents covered by postings. words is the distinct
// keyword list the caller searched for; a document missing any of them is
// discarded. The primary key is the average over keyword pairs of the
// minimum absolute location distance, divided by the document's total
// posting weight; a single-keyword query contributes a zero distance term.
// The secondary key is the inverse of the total posting weight.
func Compute(words []string, postings map[string][]Posting) []Scored {
	if len(words) == 0 {
		return nil
	}

	// Locations per document per keyword, plus the total weight across all
	// of the document's matched postings.
	locations := make(map[docKey]map[string][]int)
	weights := make(map[docKey]int)
	for word, ps := range postings {
		for _, p := range ps {
			key := docKey{id: p.DocumentID, typ: p.DocumentType}
			byWord, ok := locations[key]
			if !ok {
				byWord = make(map[string][]int, len(words))
				locations[key] = byWord
			}
			byWord[word] = append(byWord[word], p.Location)
			weights[key] += p.Weight
		}
	}

	scored := make([]Scored, 0, len(locations))
	for key, byWord := range locations {
		if len(byWord) < len(words) {
			continue
		}
		totalWeight := weights[key]
		if totalWeight <= 0 {
			continue
		}

		var distanceSum float64
		pairs := 0
		for i := 0; i < len(words); i++ {
			for j := i + 1; j < len(words); j++ {
				distanceSum += float64(minDistance(byWord[words[i]], byWord[words[j]]))
				pairs++
			}
		}
		primary := 0.0
		if pairs > 0 {
			primary = (distanceSum / float64(pairs)) / float64(totalWeight)
		}
		scored = append(scored, Scored{
			DocumentID:    key.id,
			DocumentType:  key.typ,
			PrimarySort:   primary,
			SecondarySort: 1 / float64(totalWeight),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].PrimarySort != scored[j].PrimarySort {
			return scored[i].PrimarySort < scored[j].PrimarySort
		}
		if scored[i].SecondarySort != scored[j].SecondarySort {
			return scored[i].SecondarySort < scored[j].SecondarySort
		}
		if scored[i].DocumentID != scored[j].DocumentID {
			return scored[i].DocumentID < scored[j].DocumentID
		}
		return scored[i].DocumentType < scored[j].DocumentType
	})
	return scored
}

// minDistance returns the smallest |a-b| over the cross product of two
// location lists.
func minDistance(a, b []int) int {
	best := -1
	for _, la := range a {
		for _, lb := range b {
			d := la - lb
			if d < 0 {
				d = -d
			}
			if best < 0 || d < best {
				best = d
			}
		}
	}
	if best < 0 {
		return 0
	}
	return best
}
