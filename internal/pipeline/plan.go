package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"reelforge/internal/captions"
	"reelforge/internal/logging"
	"reelforge/internal/services"
	"reelforge/internal/textutil"
)

type renderPlan struct {
	jobID         string
	background    string
	audio         string
	partial       string
	audioDuration float64
	videoDuration float64
	loops         int
	width         int
	height        int
	fps           float64
	fpsExpr       string
	totalFrames   int64
	workers       int
	timeline      *captions.Timeline
}

func (o *Orchestrator) plan(ctx context.Context, logger *slog.Logger, req Request, jobID string) (renderPlan, error) {
	plan := renderPlan{
		jobID:      jobID,
		background: strings.TrimSpace(req.Background),
		audio:      strings.TrimSpace(req.Audio),
		workers:    o.workers(req),
	}
	if err := requireFile(plan.background, "background video"); err != nil {
		return plan, err
	}
	if err := requireFile(plan.audio, "narration audio"); err != nil {
		return plan, err
	}
	o.emit(Event{JobID: jobID, Stage: StageProbe, Percent: -1, Message: "Inspecting media"})

	video, err := o.prober.Probe(ctx, plan.background)
	if err != nil {
		return plan, services.Wrap(services.ErrResource, StageProbe, "ffprobe background", "background video could not be inspected", err)
	}
	stream, ok := video.VideoStream()
	if !ok {
		return plan, services.Wrap(services.ErrResource, StageProbe, "ffprobe background", "background has no video stream", nil)
	}
	plan.width, plan.height = stream.Width, stream.Height
	plan.fps = stream.FrameRate()
	plan.fpsExpr = stream.FrameRateExpr()
	plan.videoDuration = video.DurationSeconds()
	if plan.width <= 0 || plan.height <= 0 || plan.fps <= 0 {
		return plan, services.Wrap(services.ErrResource, StageProbe, "ffprobe background",
			fmt.Sprintf("background reports unusable geometry %dx%d @ %v fps", plan.width, plan.height, plan.fps), nil)
	}
	if !validDuration(plan.videoDuration) {
		return plan, services.Wrap(services.ErrResource, StageProbe, "ffprobe background", "background duration is unknown", nil)
	}

	audio, err := o.prober.Probe(ctx, plan.audio)
	if err != nil {
		return plan, services.Wrap(services.ErrResource, StageProbe, "ffprobe audio", "narration audio could not be inspected", err)
	}
	plan.audioDuration = audio.DurationSeconds()
	if !validDuration(plan.audioDuration) {
		return plan, services.Wrap(services.ErrResource, StageProbe, "ffprobe audio", "narration audio duration is unknown", nil)
	}

	plan.loops = loopCount(plan.audioDuration, plan.videoDuration)
	plan.totalFrames = int64(math.Ceil(plan.audioDuration * plan.fps))
	plan.timeline = o.buildTimeline(services.WithStage(ctx, StageTimeline), logger, req.Narration, plan.audioDuration)

	logger.Info("render planned",
		logging.Seconds("audio_duration", plan.audioDuration),
		logging.Seconds("video_duration", plan.videoDuration),
		logging.Int("loops", plan.loops),
		logging.String("resolution", fmt.Sprintf("%dx%d", plan.width, plan.height)),
		logging.String("frame_rate", plan.fpsExpr),
		logging.Int("captions", plan.timeline.Len()),
		logging.Int("distinct_captions", plan.timeline.DistinctTexts()),
		logging.Int("workers", plan.workers),
	)
	return plan, nil
}

// loopCount is how many back-to-back copies of the background cover the
// narration.
func loopCount(audioDuration, videoDuration float64) int {
	if videoDuration <= 0 || audioDuration <= 0 {
		return 1
	}
	loops := int(math.Ceil(audioDuration / videoDuration))
	if loops < 1 {
		return 1
	}
	return loops
}

func validDuration(d float64) bool {
	return d > 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

func requireFile(path, label string) error {
	if path == "" {
		return services.Wrap(services.ErrResource, StageProbe, "stat", label+" path is required", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrResource, StageProbe, "stat", fmt.Sprintf("%s %q not found", label, path), err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrResource, StageProbe, "stat", fmt.Sprintf("%s %q is a directory", label, path), nil)
	}
	return nil
}

// buildTimeline chunks narration against the audio duration. Unusable text
// is not an error: the render proceeds without captions.
func (o *Orchestrator) buildTimeline(ctx context.Context, logger *slog.Logger, narration string, duration float64) *captions.Timeline {
	if !o.cfg.Captions.Enabled {
		logger.Info("captions disabled; rendering without overlays")
		return captions.NewTimeline(nil)
	}
	text := textutil.Normalize(narration)
	chunks := captions.Chunk(text, duration, o.cfg.Captions.MinChunkSeconds)
	if len(chunks) == 0 {
		reason := "narration has no sentences"
		if text == "" {
			reason = "narration is empty"
		}
		err := services.Wrap(services.ErrInput, StageTimeline, "chunk", reason, nil)
		logging.WarnWithContext(logging.WithContext(ctx, logger), "no captions to draw", "captions_empty",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "supply narration text with at least one sentence"),
			logging.String(logging.FieldImpact, "video renders without captions"),
		)
		return captions.NewTimeline(nil)
	}
	return captions.NewTimeline(chunks)
}
