package domain

import (
	"sort"
	"strings"
)

// Scoring weights. Title matches dominate, tags come next, description
// matches are a tie-breaker. The exact values follow the channel index
// service this package fronts.
const (
	titleWeight       = 8
	tagWeight         = 4
	descriptionWeight = 1
)

// ScoredRecord pairs a record with its relevance score.
type ScoredRecord struct {
	VideoRecord
	Score int `json:"score"`
}

// Tokenize splits a query into lowercase tokens on whitespace and
// punctuation. A query that yields no tokens matches nothing.
func Tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return false
		case r > 127:
			return false
		default:
			return true
		}
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Search scores items against a keyword query. Results are ordered by
// descending score, ties broken by descending PublishedAt, then VideoID for
// a deterministic order. An effectively empty query returns no results
// rather than the full set: a naive empty-substring match would match every
// record, which is explicitly not what callers want.
func Search(items []VideoRecord, query string) []ScoredRecord {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	var matched []ScoredRecord
	for _, item := range items {
		score := scoreRecord(item, tokens)
		if score > 0 {
			matched = append(matched, ScoredRecord{VideoRecord: item, Score: score})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		ti, tj := matched[i].PublishedTime(), matched[j].PublishedTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return matched[i].VideoID < matched[j].VideoID
	})
	return matched
}

// scoreRecord sums per-token weights across the searchable fields. Each
// token scores each field at most once.
func scoreRecord(v VideoRecord, tokens []string) int {
	title := strings.ToLower(v.Title)
	desc := strings.ToLower(v.Description)

	score := 0
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			score += titleWeight
		}
		for _, tag := range v.Tags {
			if strings.Contains(strings.ToLower(tag), tok) {
				score += tagWeight
				break
			}
		}
		if desc != "" && strings.Contains(desc, tok) {
			score += descriptionWeight
		}
	}
	return score
}
