package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"reelforge/internal/compositor"
	"reelforge/internal/logging"
	"reelforge/internal/media/ffmpeg"
	"reelforge/internal/overlay"
	"reelforge/internal/services"
	"reelforge/internal/typeset"
)

type captionedStats struct {
	frames         int64
	rasterizations int64
}

func (o *Orchestrator) overlayStyle() overlay.Style {
	c := o.cfg.Captions
	return overlay.Style{
		Outline:         c.OutlineWidth,
		BottomMargin:    c.BottomMargin,
		SideMarginRatio: c.SideMarginRatio,
		Fill:            c.FillRGBA(),
		Stroke:          c.OutlineRGBA(),
	}
}

// runCaptioned decodes the looped background, captions every frame and
// encodes the result with the narration audio.
func (o *Orchestrator) runCaptioned(ctx context.Context, logger *slog.Logger, plan renderPlan) (captionedStats, error) {
	var stats captionedStats

	var overlays compositor.OverlaySource
	var cache *overlay.Cache
	if !plan.timeline.Empty() {
		captionFont := typeset.Resolve(o.cfg.Captions.FontPath, o.cfg.Captions.FontSize, logger)
		renderer, err := overlay.NewRenderer(captionFont, plan.width, plan.height, o.overlayStyle())
		if err != nil {
			return stats, services.Wrap(services.ErrConfiguration, StageCaptioned, "overlay renderer", "invalid caption style", err)
		}
		cache = overlay.NewCache(renderer)
		overlays = cache
		logger.Info("caption font selected", logging.String("font", captionFont.Name()), logging.Float64("size", captionFont.Size()))
	}

	decoder, err := o.backend.OpenDecoder(ctx, ffmpeg.DecodeJob{
		Background: plan.background,
		Loops:      plan.loops,
		Duration:   plan.audioDuration,
		FrameRate:  plan.fpsExpr,
		Width:      plan.width,
		Height:     plan.height,
	})
	if err != nil {
		return stats, services.Wrap(services.ErrEncoding, StageCaptioned, "start decoder", "background decoder failed to start", err)
	}
	defer decoder.Close()

	encoder, err := o.backend.OpenEncoder(ctx, ffmpeg.EncodeJob{
		Audio:     plan.audio,
		Output:    plan.partial,
		Duration:  plan.audioDuration,
		FrameRate: plan.fpsExpr,
		Width:     plan.width,
		Height:    plan.height,
	})
	if err != nil {
		return stats, services.Wrap(services.ErrEncoding, StageCaptioned, "start encoder", "output encoder failed to start", err)
	}

	var written atomic.Int64
	stop := o.watch(ctx, logger, plan, StageCaptioned, written.Load)
	runStats, runErr := compositor.New(plan.timeline, overlays).Run(ctx, decoder, encoder, compositor.Options{
		Width:   plan.width,
		Height:  plan.height,
		FPS:     plan.fps,
		Workers: plan.workers,
		OnFrame: func(n int64) { written.Store(n) },
	})
	stop()
	stats.frames = runStats.Frames
	if cache != nil {
		stats.rasterizations = cache.Rasterizations()
	}

	closeErr := encoder.Close()
	if runErr != nil {
		if cerr := ctx.Err(); cerr != nil {
			return stats, cerr
		}
		// A dead encoder surfaces as a write error; its exit status and stderr
		// are the more useful cause.
		if closeErr != nil {
			runErr = errors.Join(runErr, closeErr)
		}
		return stats, services.Wrap(services.ErrEncoding, StageCaptioned, "composite", "per-frame render failed", runErr)
	}
	if closeErr != nil {
		return stats, services.Wrap(services.ErrEncoding, StageCaptioned, "finish encoder", "output encoder failed", closeErr)
	}
	if err := decoder.Close(); err != nil {
		return stats, services.Wrap(services.ErrEncoding, StageCaptioned, "finish decoder", "background decoder failed", err)
	}
	if stats.frames == 0 {
		return stats, services.Wrap(services.ErrEncoding, StageCaptioned, "decode", "background decoder produced no frames", nil)
	}

	logger.Info("captioned render finished",
		logging.Int64("frames", stats.frames),
		logging.Int64("rasterizations", stats.rasterizations),
		logging.Int("captions", plan.timeline.Len()),
	)
	return stats, nil
}
