// Package search finds photos by filename or identifier for the jump box.
package search

import (
	"sort"
	"strings"

	"github.com/gobwas/glob"
	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/alexwlchan/blink/internal/domain"
)

// Match is one search hit.
type Match struct {
	Asset          domain.Asset
	Index          int   // position in the library ordering
	MatchedIndexes []int // filename positions that matched, for highlighting
}

// Index implements sahilm/fuzzy.Source over lowercase filenames
type Index struct {
	assets         []domain.Asset
	lowerFilenames []string
	ids            []string
	byID           map[string]int
}

// String returns the lowercase filename at index i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.lowerFilenames[i] }

// Len returns the number of assets (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.assets) }

// NewIndex indexes assets in library order.
func NewIndex(assets []domain.Asset) *Index {
	idx := &Index{
		assets:         assets,
		lowerFilenames: make([]string, len(assets)),
		ids:            make([]string, len(assets)),
		byID:           make(map[string]int, len(assets)),
	}
	for i, a := range assets {
		idx.lowerFilenames[i] = strings.ToLower(a.Filename)
		idx.ids[i] = string(a.ID)
		idx.byID[string(a.ID)] = i
	}
	return idx
}

// Search returns up to limit matches for query; limit <= 0 means no limit.
//
// Queries with glob metacharacters ("IMG_12*.HEIC") match whole filenames in
// library order. Other queries are fuzzy-matched against filenames, best
// first; when no filename matches, identifiers are ranked instead.
func (idx *Index) Search(query string, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" || idx.Len() == 0 {
		return nil
	}

	var matches []Match
	if strings.ContainsAny(query, "*?[") {
		matches = idx.searchGlob(query)
	} else {
		matches = idx.searchFilenames(query)
		if len(matches) == 0 {
			matches = idx.searchIDs(query)
		}
	}

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func (idx *Index) searchGlob(query string) []Match {
	g, err := glob.Compile(strings.ToLower(query))
	if err != nil {
		return nil
	}
	var matches []Match
	for i, name := range idx.lowerFilenames {
		if g.Match(name) {
			matches = append(matches, Match{Asset: idx.assets[i], Index: i})
		}
	}
	return matches
}

func (idx *Index) searchFilenames(query string) []Match {
	results := fuzzy.FindFrom(strings.ToLower(query), idx)
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Asset:          idx.assets[r.Index],
			Index:          r.Index,
			MatchedIndexes: r.MatchedIndexes,
		}
	}
	return matches
}

func (idx *Index) searchIDs(query string) []Match {
	ranks := lfuzzy.RankFindFold(query, idx.ids)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	matches := make([]Match, 0, len(ranks))
	for _, r := range ranks {
		i := idx.byID[r.Target]
		matches = append(matches, Match{Asset: idx.assets[i], Index: i})
	}
	return matches
}
