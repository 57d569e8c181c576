package system

import (
	"context"
	"errors"
	"time"

	"github.com/zeusync/locomotion/internal/core/observability/log"
)

// Run ticks the world at the fixed rate until ctx is done or maxTicks ticks
// have run (zero means no limit). Sink errors are logged and do not stop the
// loop.
func (w *World) Run(ctx context.Context, maxTicks uint64) error {
	dt := w.FixedDeltaTime()
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	w.log.Info("world running",
		log.Float64("tick_rate", w.opts.TickRate),
		log.Int("characters", len(w.Characters())),
	)

	var n uint64
	for {
		select {
		case <-ctx.Done():
			w.log.Info("world stopped", log.Int("ticks", int(n)))
			return nil
		case <-ticker.C:
			if _, err := w.Tick(ctx, dt); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				w.log.Warn("tick sink failed", log.Error(err))
			}
			n++
			if maxTicks > 0 && n >= maxTicks {
				w.log.Info("world finished", log.Int("ticks", int(n)))
				return nil
			}
		}
	}
}

// Step runs n ticks back to back at the fixed rate without waiting on the
// clock. Used for offline simulation.
func (w *World) Step(ctx context.Context, n int) error {
	dt := w.FixedDeltaTime()
	var all error
	for range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.Tick(ctx, dt); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}
