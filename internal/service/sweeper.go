package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"dome/internal/blob"
	"dome/internal/contextutil"
	"dome/internal/storage"
)

// ErrSweepRunning is returned by RunOnce while another sweep is in progress.
var ErrSweepRunning = errors.New("sweep already running")

// SweepReport is the outcome of one sweep.
type SweepReport struct {
	Blobs        *blob.CleanupReport `json:"blobs"`
	Interactions int64               `json:"orphan_interactions"`
	Duration     time.Duration       `json:"duration"`
}

// Sweeper removes blobs no resource references and interactions whose
// resource is gone. Sweeps never overlap.
type Sweeper struct {
	resources    storage.ResourceStore
	interactions storage.InteractionStore
	blobs        *blob.Store
	delay        time.Duration
	interval     time.Duration

	mu sync.Mutex
}

// NewSweeper creates a Sweeper. The first background sweep runs after delay,
// then every interval; interval 0 means only once.
func NewSweeper(resources storage.ResourceStore, interactions storage.InteractionStore, blobs *blob.Store, delay, interval time.Duration) *Sweeper {
	return &Sweeper{
		resources:    resources,
		interactions: interactions,
		blobs:        blobs,
		delay:        delay,
		interval:     interval,
	}
}

// Run sweeps in the background schedule until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	logger := contextutil.LoggerFromContext(ctx)

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	s.runLogged(ctx)
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.DebugContext(ctx, "sweeper stopped")
			return
		case <-ticker.C:
			s.runLogged(ctx)
		}
	}
}

func (s *Sweeper) runLogged(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrSweepRunning) {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "sweep failed", "error", err)
	}
}

// RunOnce performs one sweep now. It returns ErrSweepRunning instead of
// waiting if a sweep is already in progress.
func (s *Sweeper) RunOnce(ctx context.Context) (*SweepReport, error) {
	if !s.mu.TryLock() {
		return nil, ErrSweepRunning
	}
	defer s.mu.Unlock()

	logger := contextutil.LoggerFromContext(ctx)
	started := time.Now()

	paths, err := s.resources.ListBlobPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referenced blobs: %w", err)
	}
	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[p] = struct{}{}
	}

	blobs, err := s.blobs.CleanupOrphans(ctx, referenced)
	if err != nil {
		return nil, err
	}
	orphans, err := s.interactions.DeleteOrphanInteractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete orphan interactions: %w", err)
	}

	report := &SweepReport{Blobs: blobs, Interactions: orphans, Duration: time.Since(started)}
	logger.InfoContext(ctx, "sweep completed",
		"blobs_deleted", blobs.DeletedCount,
		"freed", humanize.Bytes(uint64(blobs.FreedBytes)),
		"orphan_interactions", orphans,
		"duration", report.Duration)
	return report, nil
}
