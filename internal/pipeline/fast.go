package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"

	"reelforge/internal/logging"
	"reelforge/internal/media/ffmpeg"
	"reelforge/internal/services"
)

// fastOutcome is the result of a single-pass attempt. Anything but ok sends
// the render down the per-frame path.
type fastOutcome struct {
	ok     bool
	frames int64
	reason string
	err    error
}

func (o *Orchestrator) tryFastPath(ctx context.Context, logger *slog.Logger, plan renderPlan) fastOutcome {
	job := ffmpeg.FastJob{
		Background: plan.background,
		Audio:      plan.audio,
		Output:     plan.partial,
		Loops:      plan.loops,
		Duration:   plan.audioDuration,
	}
	logger.Info("fast path started", logging.Int("loops", plan.loops))

	var frame atomic.Int64
	stop := o.watch(ctx, logger, plan, StageFast, frame.Load)
	err := o.backend.RunFastPath(ctx, job, func(p ffmpeg.Progress) {
		current := p.Frame
		if current <= 0 && p.OutTime > 0 {
			current = int64(p.OutTime.Seconds() * plan.fps)
		}
		frame.Store(current)
	})
	stop()

	if err != nil {
		return fastOutcome{
			reason: "fast path failed",
			err:    services.Wrap(services.ErrRenderBackend, StageFast, "ffmpeg", "single-pass render failed", err),
		}
	}
	return fastOutcome{ok: true, frames: frame.Load()}
}
