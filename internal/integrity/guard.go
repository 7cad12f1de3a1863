// Package integrity owns the retry policies that keep the store usable when its
// indexes go bad: a two-tier repair escalation for full-text corruption and a
// recreate-once policy for vector dimension changes.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"dome/internal/apperr"
	"dome/internal/contextutil"
)

// State is a step of the corruption escalation.
type State int

const (
	StateAttempt State = iota
	StateFailedCorruption
	StateRepairing
	StateDeepRepairing
	StateRetrying
	StateSucceeded
	StateSurfaced
)

func (s State) String() string {
	switch s {
	case StateAttempt:
		return "attempt"
	case StateFailedCorruption:
		return "failed_corruption"
	case StateRepairing:
		return "repairing"
	case StateDeepRepairing:
		return "deep_repairing"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateSurfaced:
		return "surfaced"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Transition is reported to the observer for every state change.
type Transition struct {
	Op    string
	State State
	Tier  int   // 0 before any repair, 1 after the light repair, 2 after the deep rebuild
	Err   error // error that caused the transition, if any
}

// Repairer is implemented by the metadata store.
type Repairer interface {
	// InvalidateHandles drops cached prepared statements so retries re-prepare against repaired tables.
	InvalidateHandles()
	// RepairFullTextIndex is the cheap touch-up pass.
	RepairFullTextIndex(ctx context.Context) (bool, error)
	// RebuildFullTextIndex recreates the full-text index from the base tables.
	RebuildFullTextIndex(ctx context.Context) error
}

// Guard runs operations under the corruption escalation policy:
// attempt, light repair + retry, deep rebuild + retry, surface.
type Guard struct {
	repairer     Repairer
	isCorruption func(error) bool
	observe      atomic.Pointer[func(Transition)]
}

// NewGuard creates a Guard. isCorruption classifies errors returned by guarded operations.
func NewGuard(repairer Repairer, isCorruption func(error) bool) *Guard {
	return &Guard{
		repairer:     repairer,
		isCorruption: isCorruption,
	}
}

// Observe registers fn to receive every transition. A nil fn removes the observer.
func (g *Guard) Observe(fn func(Transition)) {
	if fn == nil {
		g.observe.Store(nil)
		return
	}
	g.observe.Store(&fn)
}

// Run executes fn under the escalation policy. Only corruption errors are retried;
// every other error is returned as-is from the attempt that produced it.
func (g *Guard) Run(ctx context.Context, op string, fn func(context.Context) error) error {
	logger := contextutil.LoggerFromContext(ctx)

	g.emit(Transition{Op: op, State: StateAttempt})
	err := fn(ctx)
	if err == nil {
		g.emit(Transition{Op: op, State: StateSucceeded})
		return nil
	}

	for tier := 1; tier <= 2; tier++ {
		if !g.isCorruption(err) {
			return err
		}
		g.emit(Transition{Op: op, State: StateFailedCorruption, Tier: tier - 1, Err: err})

		g.repairer.InvalidateHandles()
		if tier == 1 {
			g.emit(Transition{Op: op, State: StateRepairing, Tier: tier})
			logger.WarnContext(ctx, "full-text index corruption, repairing", "op", op, "error", err)
			if ok, rerr := g.repairer.RepairFullTextIndex(ctx); rerr != nil || !ok {
				logger.WarnContext(ctx, "full-text repair incomplete", "op", op, "ok", ok, "error", rerr)
			}
		} else {
			g.emit(Transition{Op: op, State: StateDeepRepairing, Tier: tier})
			logger.WarnContext(ctx, "full-text index still corrupt, rebuilding", "op", op, "error", err)
			if rerr := g.repairer.RebuildFullTextIndex(ctx); rerr != nil {
				logger.ErrorContext(ctx, "full-text rebuild failed", "op", op, "error", rerr)
			}
		}

		g.emit(Transition{Op: op, State: StateRetrying, Tier: tier})
		err = fn(ctx)
		if err == nil {
			g.emit(Transition{Op: op, State: StateSucceeded, Tier: tier})
			logger.InfoContext(ctx, "operation recovered after repair", "op", op, "tier", tier)
			return nil
		}
	}

	if !g.isCorruption(err) {
		return err
	}
	g.emit(Transition{Op: op, State: StateSurfaced, Tier: 2, Err: err})
	logger.ErrorContext(ctx, "full-text index corruption survived repair", "op", op, "error", err)
	if errors.Is(err, apperr.ErrIndexCorruption) {
		return err
	}
	return apperr.Wrap(op, apperr.ErrIndexCorruption, "", err)
}

func (g *Guard) emit(t Transition) {
	if fn := g.observe.Load(); fn != nil {
		(*fn)(t)
	}
}

// Do runs fn under g and returns its value.
func Do[T any](ctx context.Context, g *Guard, op string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := g.Run(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
