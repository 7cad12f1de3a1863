package search

import (
	"math"
	"strings"
	"testing"

	"dome/internal/vectorindex"
)

func TestLexicalScore(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		title string
		check func(float32) bool
	}{
		{
			name:  "basic match is positive and clamped",
			query: "Project updates",
			text:  "The project timeline lists recent updates for the project. These updates cover scope.",
			title: "Planning updates",
			check: func(s float32) bool { return s > 0 && s <= maxLexicalScore },
		},
		{
			name:  "title bonus only",
			query: "database",
			text:  "General context without the keyword.",
			title: "Database Layer",
			check: func(s float32) bool { return math.Abs(float64(s-titleMatchBonus)) < 0.0001 },
		},
		{
			name:  "stopwords only",
			query: "the and of",
			text:  "the and of",
			check: func(s float32) bool { return s == 0 },
		},
		{
			name:  "long text stays in range",
			query: "project",
			text:  "project " + strings.Repeat(" filler", 200),
			check: func(s float32) bool { return s > 0 && s <= maxLexicalScore },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lexicalScore(filterStopwords(tokenize(tt.query)), tt.text, tt.title)
			if !tt.check(got) {
				t.Errorf("lexicalScore() = %f", got)
			}
		})
	}
}

func TestRerank(t *testing.T) {
	matches := []vectorindex.Match{
		{RecordID: "a:0", Text: "unrelated prose about gardening", Distance: 0.20},
		{RecordID: "b:0", Text: "the sweeper deletes orphan blobs", Distance: 0.22},
		{RecordID: "c:0", Text: "far away", Distance: 0.90},
	}

	got := rerank("orphan sweeper", matches)
	if got[0].RecordID != "b:0" {
		t.Errorf("first = %s, want b:0 (lexical match close in distance)", got[0].RecordID)
	}
	if got[2].RecordID != "c:0" {
		t.Errorf("last = %s, want c:0", got[2].RecordID)
	}
	if got[0].Distance != 0.22 {
		t.Errorf("distance changed to %f", got[0].Distance)
	}

	only := []vectorindex.Match{{RecordID: "x:0"}, {RecordID: "y:0"}}
	if out := rerank("the of", only); out[0].RecordID != "x:0" {
		t.Error("stopword-only query should keep index order")
	}
}
