package pipeline

import (
	"context"
	"time"

	"reelforge/internal/media/ffmpeg"
	"reelforge/internal/media/ffprobe"
)

// Path identifies which render path produced the output.
type Path string

const (
	PathFast      Path = "fast"
	PathCaptioned Path = "captioned"
)

// Stage names reported in progress events and logs.
const (
	StageProbe     = "probe"
	StageTimeline  = "timeline"
	StageFast      = "fast_path"
	StageCaptioned = "captioned_path"
	StageFinalize  = "finalize"
)

// Request describes one render.
type Request struct {
	Background string
	Audio      string
	Narration  string
	Output     string
	// Workers overrides render.workers when positive.
	Workers int
}

// Result summarizes a finished render.
type Result struct {
	JobID          string
	Output         string
	Path           Path
	FallbackReason string
	Captions       int
	Rasterizations int64
	Frames         int64
	AudioDuration  float64
	VideoDuration  float64
	Loops          int
	Width          int
	Height         int
	FrameRate      float64
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Elapsed returns the wall-clock render time.
func (r Result) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Event is one progress update.
type Event struct {
	JobID   string
	Stage   string
	Percent float64
	ETA     time.Duration
	Frame   int64
	Total   int64
	Message string
}

// ProgressSink receives progress events. Calls are serialized.
type ProgressSink interface {
	Progress(Event)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(Event)

// Progress implements ProgressSink.
func (f ProgressFunc) Progress(e Event) { f(e) }

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.Result, error)
}

// Backend runs ffmpeg work for both render paths.
type Backend interface {
	RunFastPath(ctx context.Context, job ffmpeg.FastJob, onProgress func(ffmpeg.Progress)) error
	OpenDecoder(ctx context.Context, job ffmpeg.DecodeJob) (ffmpeg.FrameReader, error)
	OpenEncoder(ctx context.Context, job ffmpeg.EncodeJob) (ffmpeg.FrameWriter, error)
}

// Recorder persists the outcome of every render attempt.
type Recorder interface {
	RecordRender(ctx context.Context, req Request, res Result, renderErr error) error
}

// Deps bundles the collaborators an Orchestrator uses. Nil fields fall back
// to the local ffprobe/ffmpeg binaries and no-op sinks.
type Deps struct {
	Prober   Prober
	Backend  Backend
	Progress ProgressSink
	Recorder Recorder
}

type ffprobeProber struct {
	binary string
}

func (p ffprobeProber) Probe(ctx context.Context, path string) (ffprobe.Result, error) {
	return ffprobe.Inspect(ctx, p.binary, path)
}
