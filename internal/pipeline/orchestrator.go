package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"reelforge/internal/config"
	"reelforge/internal/deps"
	"reelforge/internal/fileutil"
	"reelforge/internal/logging"
	"reelforge/internal/media/ffmpeg"
	"reelforge/internal/services"
)

// Orchestrator runs renders against one configuration.
type Orchestrator struct {
	cfg      *config.Config
	logger   *slog.Logger
	prober   Prober
	backend  Backend
	sink     ProgressSink
	recorder Recorder

	emitMu sync.Mutex
}

// New constructs an Orchestrator. Missing dependencies default to the
// configured ffprobe/ffmpeg binaries.
func New(cfg *config.Config, logger *slog.Logger, with Deps) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		prober:   with.Prober,
		backend:  with.Backend,
		sink:     with.Progress,
		recorder: with.Recorder,
	}
	if o.prober == nil {
		o.prober = ffprobeProber{binary: deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.FFprobeBinary())}
	}
	if o.backend == nil {
		o.backend = ffmpeg.NewBackend(ffmpeg.SettingsFromConfig(cfg))
	}
	return o
}

// Render produces req.Output from the background video, narration audio and
// narration text. The fast path is used only when there is nothing to
// caption; any fast-path failure falls back to the per-frame path.
func (o *Orchestrator) Render(ctx context.Context, req Request) (res Result, err error) {
	jobID := uuid.NewString()
	ctx = services.WithJobID(ctx, jobID)
	logger := logging.WithContext(ctx, o.logger)
	res = Result{JobID: jobID, Output: req.Output, StartedAt: time.Now()}

	defer func() {
		res.FinishedAt = time.Now()
		o.record(ctx, logger, req, res, err)
	}()

	output, err := resolveOutput(req.Output)
	if err != nil {
		return res, err
	}
	res.Output = output

	unlock, err := o.lockOutput(output)
	if err != nil {
		return res, err
	}
	defer unlock()

	logger.Info("render started",
		logging.String("background", req.Background),
		logging.String("audio", req.Audio),
		logging.String("output", output),
		logging.Int("narration_chars", len(req.Narration)),
	)

	plan, err := o.plan(services.WithStage(ctx, StageProbe), logger, req, jobID)
	if err != nil {
		return res, err
	}
	res.AudioDuration = plan.audioDuration
	res.VideoDuration = plan.videoDuration
	res.Loops = plan.loops
	res.Width = plan.width
	res.Height = plan.height
	res.FrameRate = plan.fps
	res.Captions = plan.timeline.Len()

	if err := os.MkdirAll(o.cfg.Paths.WorkDir, 0o755); err != nil {
		return res, services.Wrap(services.ErrConfiguration, StageFinalize, "create work dir", "work directory is not writable", err)
	}
	plan.partial = filepath.Join(o.cfg.Paths.WorkDir, jobID+".partial"+filepath.Ext(output))
	defer func() {
		if err != nil {
			if rmErr := fileutil.RemoveIfExists(plan.partial); rmErr != nil {
				logger.Warn("failed to remove partial output", logging.String("path", plan.partial), logging.Error(rmErr))
			}
		}
	}()

	if plan.timeline.Empty() {
		outcome := o.tryFastPath(services.WithStage(ctx, StageFast), logger, plan)
		if outcome.ok {
			res.Path = PathFast
			res.Frames = outcome.frames
			return res, o.finalize(ctx, logger, plan, output, &res)
		}
		if cerr := ctx.Err(); cerr != nil {
			return res, cerr
		}
		res.FallbackReason = outcome.reason
		logging.WarnWithContext(logger, "fast path failed; falling back to per-frame render", "fast_path_fallback",
			logging.Error(outcome.err),
			logging.String(logging.FieldErrorHint, "check ffmpeg filter support"),
			logging.String(logging.FieldImpact, "render continues on the slower per-frame path"),
		)
		if rmErr := fileutil.RemoveIfExists(plan.partial); rmErr != nil {
			return res, services.Wrap(services.ErrEncoding, StageFast, "cleanup", "failed to discard fast-path output", rmErr)
		}
	} else {
		res.FallbackReason = "captions require per-frame compositing"
	}

	res.Path = PathCaptioned
	stats, err := o.runCaptioned(services.WithStage(ctx, StageCaptioned), logger, plan)
	res.Frames = stats.frames
	res.Rasterizations = stats.rasterizations
	if err != nil {
		return res, err
	}
	return res, o.finalize(ctx, logger, plan, output, &res)
}

func resolveOutput(output string) (string, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return "", services.Wrap(services.ErrValidation, StageProbe, "output", "output path is required", nil)
	}
	if filepath.Ext(output) == "" {
		return "", services.Wrap(services.ErrValidation, StageProbe, "output", fmt.Sprintf("output %q needs a container extension such as .mp4", output), nil)
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, StageProbe, "output", "resolve output path", err)
	}
	return abs, nil
}

func (o *Orchestrator) finalize(ctx context.Context, logger *slog.Logger, plan renderPlan, output string, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.emit(Event{JobID: plan.jobID, Stage: StageFinalize, Percent: 100, Frame: res.Frames, Total: plan.totalFrames, Message: "Moving output into place"})
	if err := fileutil.MoveFile(plan.partial, output); err != nil {
		return services.Wrap(services.ErrEncoding, StageFinalize, "move output", "failed to move rendered video into place", err)
	}
	logger.Info("render completed",
		logging.String("output", output),
		logging.String("path", string(res.Path)),
		logging.Int("captions", res.Captions),
		logging.Int64("rasterizations", res.Rasterizations),
		logging.Int64("frames", res.Frames),
		logging.Duration("elapsed", time.Since(res.StartedAt)),
	)
	return nil
}

func (o *Orchestrator) record(ctx context.Context, logger *slog.Logger, req Request, res Result, renderErr error) {
	if renderErr != nil {
		logging.ErrorWithContext(logger, "render failed", "render_failed",
			logging.Error(renderErr),
			logging.String("failure_kind", services.FailureKind(renderErr)),
		)
	}
	if o.recorder == nil {
		return
	}
	// The render context may already be cancelled; the history row still matters.
	recordCtx := context.WithoutCancel(ctx)
	if err := o.recorder.RecordRender(recordCtx, req, res, renderErr); err != nil {
		logger.Warn("failed to record render history", logging.Error(err))
	}
}

func (o *Orchestrator) emit(e Event) {
	if o.sink == nil {
		return
	}
	o.emitMu.Lock()
	defer o.emitMu.Unlock()
	o.sink.Progress(e)
}

func (o *Orchestrator) workers(req Request) int {
	if req.Workers > 0 {
		return req.Workers
	}
	if o.cfg.Render.Workers > 0 {
		return o.cfg.Render.Workers
	}
	return 1
}

func (o *Orchestrator) progressInterval() time.Duration {
	if o.cfg.Render.ProgressIntervalSeconds > 0 {
		return time.Duration(o.cfg.Render.ProgressIntervalSeconds) * time.Second
	}
	return time.Second
}

var errOutputBusy = errors.New("output is being rendered by another process")
