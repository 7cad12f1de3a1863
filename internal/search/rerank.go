package search

import (
	"slices"
	"strings"
	"unicode"

	"dome/internal/vectorindex"
)

const (
	lexicalLengthScale = float32(10.0)
	maxLexicalScore    = float32(0.4)
	titleMatchBonus    = float32(0.1)
)

var lexicalStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {},
}

// rerank orders text-query matches by cosine similarity plus a bounded
// lexical score, so a chunk that literally contains the query terms wins
// ties against one that is only close in embedding space. Distances are
// left as the index reported them.
func rerank(query string, matches []vectorindex.Match) []vectorindex.Match {
	terms := filterStopwords(tokenize(query))
	if len(terms) == 0 || len(matches) < 2 {
		return matches
	}

	scores := make(map[string]float32, len(matches))
	for _, m := range matches {
		scores[m.RecordID] = (1 - m.Distance) + lexicalScore(terms, m.Text, m.Metadata.Title)
	}
	slices.SortStableFunc(matches, func(a, b vectorindex.Match) int {
		sa, sb := scores[a.RecordID], scores[b.RecordID]
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})
	return matches
}

// lexicalScore computes a lightweight lexical relevance score for a chunk
// relative to the query terms, clamped to [0, maxLexicalScore].
func lexicalScore(terms []string, text, title string) float32 {
	if len(terms) == 0 {
		return 0
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	freq := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freq[token]++
	}

	var rawMatches int
	for _, term := range terms {
		rawMatches += freq[term]
	}

	score := (float32(rawMatches) / (1 + float32(len(tokens)))) * lexicalLengthScale

	if titleTokens := tokenize(title); len(titleTokens) > 0 {
		titleSet := make(map[string]struct{}, len(titleTokens))
		for _, token := range titleTokens {
			titleSet[token] = struct{}{}
		}
		for _, term := range terms {
			if _, ok := titleSet[term]; ok {
				score += titleMatchBonus
			}
		}
	}

	return min(max(score, 0), maxLexicalScore)
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	return strings.Fields(builder.String())
}

func filterStopwords(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := lexicalStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	return result
}
