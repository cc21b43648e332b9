package services

import (
	"errors"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

// Keyword score weights: a token from the original query counts double.
const (
	originalTermWeight = 2.0
	expandedTermWeight = 1.0
)

// tokenPattern matches runs of Hangul syllables, Latin letters or digits.
var tokenPattern = regexp.MustCompile(`[가-힣]+|[a-zA-Z]+|[0-9]+`)

// Tokenize case-folds text and splits it into Hangul, Latin and digit runs.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// BuildInvertedIndex indexes each shop's name, category, tags, description
// and menu names. Posting lists are sorted and free of duplicates.
func BuildInvertedIndex(corpus domain.Corpus) domain.InvertedIndex {
	index := make(domain.InvertedIndex)
	for _, id := range corpus.ShopIDs() {
		shop := corpus.Shops[id]

		fields := []string{shop.Name, shop.Category, shop.Description}
		fields = append(fields, shop.Tags...)
		for _, menu := range shop.Menus {
			fields = append(fields, menu.Name)
		}

		for _, field := range fields {
			for _, token := range Tokenize(field) {
				ids := index[token]
				// Shops are visited in sorted order, so a duplicate can only be the last entry.
				if len(ids) > 0 && ids[len(ids)-1] == id {
					continue
				}
				index[token] = append(ids, id)
			}
		}
	}
	return index
}

// loadOrBuildIndex returns the snapshot for hash when one exists, otherwise
// builds the index and saves it. Snapshot failures are logged, never returned.
func loadOrBuildIndex(corpus domain.Corpus, hash string, snapshots driven.IndexSnapshotStore) domain.InvertedIndex {
	if snapshots != nil {
		index, err := snapshots.Load(hash)
		switch {
		case err == nil:
			logger.Debug("Keyword index: loaded snapshot %s (%d tokens)", shortHash(hash), len(index))
			return index
		case errors.Is(err, domain.ErrNotFound):
			logger.Debug("Keyword index: no snapshot for %s", shortHash(hash))
		default:
			logger.Warn("Keyword index: snapshot load failed: %v", err)
		}
	}

	index := BuildInvertedIndex(corpus)
	logger.Debug("Keyword index: built %d tokens over %d shops", len(index), len(corpus.Shops))

	if snapshots != nil {
		if err := snapshots.Save(hash, index); err != nil {
			logger.Warn("Keyword index: snapshot save failed: %v", err)
		}
	}
	return index
}

// ExpandQuery returns the case-folded query followed by every synonym it
// shares a dictionary entry with. Expansion is symmetric: a synonym
// expands to its canonical term and the other synonyms.
func ExpandQuery(query string, synonyms domain.SynonymDictionary) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	terms := []string{q}
	add := func(term string) {
		term = strings.ToLower(term)
		if term != "" && !slices.Contains(terms, term) {
			terms = append(terms, term)
		}
	}

	for _, category := range sortedKeys(synonyms) {
		entries := synonyms[category]
		for _, key := range sortedKeys(entries) {
			members := entries[key]
			switch {
			case strings.ToLower(key) == q:
				for _, s := range members {
					add(s)
				}
			case containsFold(members, q):
				add(key)
				for _, s := range members {
					add(s)
				}
			}
		}
	}
	return terms
}

// keywordScores scores shops against the expanded query. The original
// query contributes originalTermWeight per matching token, each other
// variant expandedTermWeight. Scores are divided by the maximum.
func keywordScores(index domain.InvertedIndex, query string, synonyms domain.SynonymDictionary, topK int) []domain.ScoredShop {
	variants := ExpandQuery(query, synonyms)
	if len(variants) == 0 {
		return nil
	}

	scores := make(map[string]float64)
	for i, variant := range variants {
		weight := expandedTermWeight
		if i == 0 {
			weight = originalTermWeight
		}
		for _, token := range Tokenize(variant) {
			for _, id := range index[token] {
				scores[id] += weight
			}
		}
	}
	if len(scores) == 0 {
		return nil
	}

	results := make([]domain.ScoredShop, 0, len(scores))
	for id, score := range scores {
		results = append(results, domain.ScoredShop{ShopID: id, Score: score})
	}
	sortScored(results)

	maxScore := results[0].Score
	for i := range results {
		results[i].Score /= maxScore
	}
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// sortScored orders by score descending, then shop ID for stable output.
func sortScored(results []domain.ScoredShop) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ShopID < results[j].ShopID
	})
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.ToLower(item) == s {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
