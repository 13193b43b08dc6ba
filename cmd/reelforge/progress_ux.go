package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"reelforge/internal/pipeline"
)

// progressScale maps 0-100% onto the bar's integer range with 0.1% steps.
const progressScale = 10

var stageLabels = map[string]string{
	pipeline.StageFast:      "Rendering (fast path)",
	pipeline.StageCaptioned: "Compositing captions",
	pipeline.StageFinalize:  "Finalizing",
}

// barReporter draws render progress on an interactive terminal.
type barReporter struct {
	bar   *progressbar.ProgressBar
	stage string
}

// newProgressSink returns a bar-backed sink when w is a terminal. Otherwise
// it returns nil and the pipeline's sampled progress log lines are the only
// progress output.
func newProgressSink(w io.Writer) *barReporter {
	if !isTerminal(w) {
		return nil
	}
	bar := progressbar.NewOptions(100*progressScale,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Preparing"),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	return &barReporter{bar: bar}
}

// Progress implements pipeline.ProgressSink.
func (r *barReporter) Progress(e pipeline.Event) {
	if e.Stage != r.stage {
		r.stage = e.Stage
		label, ok := stageLabels[e.Stage]
		if !ok {
			label = e.Stage
		}
		r.bar.Describe(label)
	}
	_ = r.bar.Set(int(e.Percent * progressScale))
}

// Close finishes and clears the bar.
func (r *barReporter) Close() {
	if r == nil {
		return
	}
	_ = r.bar.Finish()
	_ = r.bar.Close()
}

func (r *barReporter) sink() pipeline.ProgressSink {
	if r == nil {
		return nil
	}
	return r
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
