package indexer

import (
	"errors"
	"testing"
	"time"
)

func TestComputeTokenStats(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   ChunkTokenStats
	}{
		{name: "empty", counts: nil, want: ChunkTokenStats{}},
		{name: "single", counts: []int{5}, want: ChunkTokenStats{Min: 5, Max: 5, Mean: 5, P95: 5}},
		{
			name:   "twenty",
			counts: []int{20, 19, 18, 17, 16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
			want:   ChunkTokenStats{Min: 1, Max: 20, Mean: 10.5, P95: 19},
		},
		{name: "mean rounds", counts: []int{1, 1, 2}, want: ChunkTokenStats{Min: 1, Max: 2, Mean: 1.33, P95: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeTokenStats(tt.counts); got != tt.want {
				t.Errorf("computeTokenStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"ab", 1},
		{"abcdefgh", 2},
		{"ééééééééééééé", 3},
	}
	for _, tt := range tests {
		if got := estimateTokens(tt.text); got != tt.want {
			t.Errorf("estimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestTally(t *testing.T) {
	tl := &tally{report: Report{Total: 4}}
	tl.add(Result{Chunks: 2}, []Chunk{{Text: "abcd"}, {Text: "abcdefgh"}}, nil)
	tl.add(Result{Skipped: true}, nil, nil)
	tl.add(Result{}, nil, errors.New("boom"))
	tl.add(Result{Chunks: 0}, nil, nil)

	r := tl.finish(time.Now())
	if r.Indexed != 2 || r.Skipped != 1 || r.Failed != 1 || r.Chunks != 2 {
		t.Errorf("report = %+v", r)
	}
	if r.Tokens.Min != 1 || r.Tokens.Max != 2 {
		t.Errorf("token stats = %+v", r.Tokens)
	}
}
