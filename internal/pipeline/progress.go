package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"reelforge/internal/logging"
)

// watch samples current on a ticker and publishes progress events until the
// returned stop function is called. stop blocks until the final event has
// been emitted.
func (o *Orchestrator) watch(ctx context.Context, logger *slog.Logger, plan renderPlan, stage string, current func() int64) func() {
	interval := o.progressInterval()
	sampler := logging.NewProgressSampler(5)
	started := time.Now()
	done := make(chan struct{})
	var wg sync.WaitGroup

	publish := func() {
		event := buildEvent(plan, stage, current(), time.Since(started))
		o.emit(event)
		if sampler.ShouldLog(event.Percent, stage) {
			attrs := []logging.Attr{
				logging.String("progress_stage", stage),
				logging.Int64("frame", event.Frame),
				logging.Int64("total_frames", event.Total),
			}
			if event.Percent >= 0 {
				attrs = append(attrs, logging.Float64("progress_percent", event.Percent))
			}
			if event.ETA > 0 {
				attrs = append(attrs, logging.Duration("progress_eta", event.ETA))
			}
			logger.Info("render progress", logging.Args(attrs...)...)
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				publish()
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				publish()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

func buildEvent(plan renderPlan, stage string, frame int64, elapsed time.Duration) Event {
	event := Event{
		JobID:   plan.jobID,
		Stage:   stage,
		Percent: -1,
		Frame:   frame,
		Total:   plan.totalFrames,
	}
	if plan.totalFrames > 0 {
		if frame > plan.totalFrames {
			frame = plan.totalFrames
		}
		event.Percent = float64(frame) / float64(plan.totalFrames) * 100
		if frame > 0 && frame < plan.totalFrames {
			remaining := float64(plan.totalFrames-frame) / float64(frame)
			event.ETA = time.Duration(float64(elapsed) * remaining)
		}
	}
	event.Message = progressMessage(event)
	return event
}

func progressMessage(e Event) string {
	label := formatStageLabel(e.Stage)
	if e.Percent < 0 {
		return label
	}
	base := fmt.Sprintf("%s %.1f%%", label, e.Percent)
	if eta := formatETA(e.ETA); eta != "" {
		return fmt.Sprintf("%s (ETA %s)", base, eta)
	}
	return base
}

func formatStageLabel(stage string) string {
	parts := strings.FieldsFunc(strings.TrimSpace(stage), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(parts) == 0 {
		return "Progress"
	}
	for i, part := range parts {
		lower := strings.ToLower(part)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, "")
}
