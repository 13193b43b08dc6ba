package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelforge/internal/config"
	"reelforge/internal/deps"
	"reelforge/internal/history"
	"reelforge/internal/logging"
	"reelforge/internal/notifications"
	"reelforge/internal/pipeline"
	"reelforge/internal/preflight"
	"reelforge/internal/publish"
)

type renderOptions struct {
	workers    int
	noCaptions bool
	publish    bool
	jsonOutput bool
}

func (o *renderOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.workers, "workers", 0, "Compositing workers (overrides render.workers)")
	cmd.Flags().BoolVar(&o.noCaptions, "no-captions", false, "Skip caption overlays and use the fast path")
	cmd.Flags().BoolVar(&o.publish, "publish", false, "Upload the finished video to the configured S3 bucket")
	cmd.Flags().BoolVar(&o.jsonOutput, "json", false, "Print the render summary as JSON")
}

type renderSummary struct {
	JobID          string  `json:"job_id"`
	Output         string  `json:"output"`
	Path           string  `json:"path"`
	FallbackReason string  `json:"fallback_reason,omitempty"`
	Captions       int     `json:"captions"`
	Rasterizations int64   `json:"rasterizations"`
	Frames         int64   `json:"frames"`
	AudioSeconds   float64 `json:"audio_seconds"`
	Loops          int     `json:"loops"`
	Resolution     string  `json:"resolution"`
	FrameRate      float64 `json:"frame_rate"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	PublishedURI   string  `json:"published_uri,omitempty"`
	PublishedURL   string  `json:"published_url,omitempty"`
}

func newComposeCommand(ctx *commandContext) *cobra.Command {
	var req pipeline.Request
	var narrationFile string
	var text string
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Render a captioned video from background footage, narration audio and text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			narration, err := readNarration(text, narrationFile)
			if err != nil {
				return err
			}
			req.Narration = narration
			return runRender(cmd, ctx, req, opts)
		},
	}

	cmd.Flags().StringVarP(&req.Background, "background", "b", "", "Background video file or name in paths.backgrounds_dir (default: first video there)")
	cmd.Flags().StringVarP(&req.Audio, "audio", "a", "", "Narration audio file")
	cmd.Flags().StringVarP(&req.Output, "output", "o", "", "Output video path")
	cmd.Flags().StringVar(&narrationFile, "narration-file", "", "File holding the narration text")
	cmd.Flags().StringVar(&text, "text", "", "Narration text")
	cmd.MarkFlagsMutuallyExclusive("narration-file", "text")
	_ = cmd.MarkFlagRequired("audio")
	_ = cmd.MarkFlagRequired("output")
	opts.bind(cmd)
	return cmd
}

// readNarration returns the inline text, or the contents of path. Neither
// set means an uncaptioned render.
func readNarration(text, path string) (string, error) {
	if text != "" {
		return text, nil
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return "", fmt.Errorf("read narration: %w", err)
	}
	return string(data), nil
}

// runRender drives one orchestrated render with terminal progress, history
// recording and optional publishing, then prints the summary.
func runRender(cmd *cobra.Command, ctx *commandContext, req pipeline.Request, opts renderOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	if opts.noCaptions {
		cfg.Captions.Enabled = false
	}
	if opts.publish && !cfg.PublishEnabled() {
		return errors.New("--publish requires publish.s3_bucket (or REELFORGE_S3_BUCKET)")
	}
	if err := requireBinaries(cfg); err != nil {
		return err
	}
	if opts.workers > 0 {
		req.Workers = opts.workers
	}
	if req.Background, err = resolveBackground(cfg, req.Background); err != nil {
		return err
	}

	notifier := notifications.NewService(cfg)
	res, err := render(cmd.Context(), cfg, logger, cmd.ErrOrStderr(), req)
	if err != nil {
		warnNotify(logger, notifier.NotifyRenderFailed(context.WithoutCancel(cmd.Context()), req.Output, err))
		return err
	}
	warnNotify(logger, notifier.NotifyRenderCompleted(cmd.Context(), notifications.RenderSummary{
		Output:   res.Output,
		Captions: res.Captions,
		Duration: time.Duration(res.AudioDuration * float64(time.Second)),
		Elapsed:  res.Elapsed(),
	}))

	summary := summarize(res)
	if opts.publish {
		loc, err := publishOutput(cmd.Context(), cfg, logger, res)
		if err != nil {
			return err
		}
		summary.PublishedURI = loc.URI()
		summary.PublishedURL = loc.URL
		link := loc.URL
		if link == "" {
			link = loc.URI()
		}
		warnNotify(logger, notifier.NotifyPublished(cmd.Context(), res.Output, link))
	}
	if opts.jsonOutput {
		return writeJSON(cmd, summary)
	}
	printSummary(cmd.OutOrStdout(), summary)
	return nil
}

func render(ctx context.Context, cfg *config.Config, logger *slog.Logger, progressOut io.Writer, req pipeline.Request) (pipeline.Result, error) {
	var recorder pipeline.Recorder
	store, err := history.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable; render will not be recorded", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will be missing from `reelforge history`"),
			logging.String(logging.FieldErrorHint, "check paths.history_db permissions"),
		)
	} else {
		defer store.Close()
		recorder = store
	}

	bar := newProgressSink(progressOut)
	defer bar.Close()

	orchestrator := pipeline.New(cfg, logger, pipeline.Deps{
		Progress: bar.sink(),
		Recorder: recorder,
	})
	return orchestrator.Render(ctx, req)
}

func warnNotify(logger *slog.Logger, err error) {
	if err == nil {
		return
	}
	logging.WarnWithContext(logger, "notification not delivered", "notification_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
	)
}

func requireBinaries(cfg *config.Config) error {
	missing := deps.MissingRequired(preflight.CheckSystemDeps(cfg))
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, status := range missing {
		names = append(names, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
	}
	return fmt.Errorf("missing required binaries: %s", strings.Join(names, ", "))
}

func publishOutput(ctx context.Context, cfg *config.Config, logger *slog.Logger, res pipeline.Result) (publish.Location, error) {
	publisher, err := publish.New(ctx, cfg, logger)
	if err != nil {
		return publish.Location{}, err
	}
	if publisher == nil {
		return publish.Location{}, errors.New("publishing is not configured")
	}
	return publisher.Upload(ctx, res.Output, res.JobID)
}

func summarize(res pipeline.Result) renderSummary {
	return renderSummary{
		JobID:          res.JobID,
		Output:         res.Output,
		Path:           string(res.Path),
		FallbackReason: res.FallbackReason,
		Captions:       res.Captions,
		Rasterizations: res.Rasterizations,
		Frames:         res.Frames,
		AudioSeconds:   res.AudioDuration,
		Loops:          res.Loops,
		Resolution:     fmt.Sprintf("%dx%d", res.Width, res.Height),
		FrameRate:      res.FrameRate,
		ElapsedSeconds: res.Elapsed().Seconds(),
	}
}

func printSummary(out io.Writer, s renderSummary) {
	fmt.Fprintf(out, "Rendered %s\n", s.Output)
	rows := [][]string{
		{"Job", s.JobID},
		{"Path", s.Path},
		{"Captions", fmt.Sprintf("%d (%d rasterized)", s.Captions, s.Rasterizations)},
		{"Frames", fmt.Sprintf("%d @ %.3g fps", s.Frames, s.FrameRate)},
		{"Resolution", s.Resolution},
		{"Audio", formatSeconds(s.AudioSeconds)},
		{"Background loops", fmt.Sprintf("%d", s.Loops)},
		{"Elapsed", formatSeconds(s.ElapsedSeconds)},
	}
	if s.FallbackReason != "" {
		rows = append(rows, []string{"Fallback", s.FallbackReason})
	}
	if s.PublishedURI != "" {
		rows = append(rows, []string{"Published", s.PublishedURI})
	}
	if s.PublishedURL != "" {
		rows = append(rows, []string{"Link", s.PublishedURL})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
}

func formatSeconds(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(10 * time.Millisecond).String()
}
