package engine

import (
	"context"
	"fmt"
)

// Strategy selects the order in which workers visit the levels.
type Strategy string

const (
	// StrategySweep walks levels 1..MaxLevel once in ascending order and
	// jumps ahead to the selected level at every step.
	StrategySweep Strategy = "sweep"

	// StrategyNearest always computes the missing level closest to the
	// selection.
	StrategyNearest Strategy = "nearest"
)

// ParseStrategy converts a configuration value to a Strategy. The empty
// string selects StrategySweep.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategySweep:
		return StrategySweep, nil
	case StrategyNearest:
		return StrategyNearest, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want %q or %q)", s, StrategySweep, StrategyNearest)
	}
}

// sweep is the ascending walk with one jump-ahead check per step.
func (e *Engine) sweep(ctx context.Context) {
	for scale := 1; scale <= e.plan.MaxLevel; scale++ {
		if ctx.Err() != nil {
			return
		}

		// The selected level goes first; the Empty check inside
		// computeIfEmpty keeps this a no-op once it is cached.
		e.computeIfEmpty(e.Selection())

		if ctx.Err() != nil {
			return
		}
		e.computeIfEmpty(scale)
	}
}

// nearest repeatedly computes the Empty level closest to the selection.
func (e *Engine) nearest(ctx context.Context) {
	for ctx.Err() == nil {
		level, ok := e.nearestEmpty(e.Selection())
		if !ok {
			return
		}
		e.computeIfEmpty(level)
	}
}

// nearestEmpty finds the Empty level with the smallest distance to
// selection. Ties go to the lower level.
func (e *Engine) nearestEmpty(selection int) (int, bool) {
	for d := 0; d <= e.plan.MaxLevel; d++ {
		if lo := selection - d; lo >= 1 && e.slots[lo].load() == StateEmpty {
			return lo, true
		}
		if hi := selection + d; d > 0 && hi <= e.plan.MaxLevel && e.slots[hi].load() == StateEmpty {
			return hi, true
		}
	}
	return 0, false
}
