package indexer

import (
	"math"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"dome/internal/vectorindex"
)

// runesPerToken approximates how many characters one model token covers.
const runesPerToken = 4.0

// Report summarises a reindex pass over one class.
type Report struct {
	Class    vectorindex.Class `json:"class"`
	Total    int               `json:"total"`
	Indexed  int               `json:"indexed"`
	Skipped  int               `json:"skipped"`
	Failed   int               `json:"failed"`
	Chunks   int               `json:"chunks"`
	Tokens   ChunkTokenStats   `json:"chunk_token_stats"`
	Duration time.Duration     `json:"duration"`
}

// ChunkTokenStats contains statistics about estimated token counts in chunks.
type ChunkTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// tally collects per-entity results from concurrent workers.
type tally struct {
	mu     sync.Mutex
	report Report
	tokens []int
}

func (t *tally) add(res Result, chunks []Chunk, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case err != nil:
		t.report.Failed++
	case res.Skipped:
		t.report.Skipped++
	default:
		t.report.Indexed++
		t.report.Chunks += res.Chunks
		for _, c := range chunks {
			t.tokens = append(t.tokens, estimateTokens(c.Text))
		}
	}
}

func (t *tally) finish(started time.Time) *Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.report
	r.Tokens = computeTokenStats(t.tokens)
	r.Duration = time.Since(started)
	return &r
}

func estimateTokens(s string) int {
	n := int(math.Round(float64(utf8.RuneCountInString(s)) / runesPerToken))
	if n < 1 {
		return 1
	}
	return n
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(counts []int) ChunkTokenStats {
	if len(counts) == 0 {
		return ChunkTokenStats{}
	}

	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)

	sum := 0
	for _, c := range sorted {
		sum += c
	}
	mean := float64(sum) / float64(len(sorted))

	p95 := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95 < 0 {
		p95 = 0
	}

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95],
	}
}
