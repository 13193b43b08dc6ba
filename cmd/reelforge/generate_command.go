package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reelforge/internal/logging"
	"reelforge/internal/pipeline"
	"reelforge/internal/services/llm"
	"reelforge/internal/services/speech"
	"reelforge/internal/textsource"
	"reelforge/internal/textutil"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var background string
	var output string
	var keepAudio bool
	var noRewrite bool
	var scriptOut string
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "generate <document>",
		Short: "Extract, rewrite, narrate and render a document in one step",
		Long: "Generate reads a text, Markdown, PDF or HTML document (or an http(s) URL),\n" +
			"optionally rewrites it into a narration script, synthesizes speech and\n" +
			"renders the captioned video.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := requireBinaries(cfg); err != nil {
				return err
			}
			if background, err = resolveBackground(cfg, background); err != nil {
				return err
			}
			runCtx := cmd.Context()
			source := args[0]
			logger = logging.NewComponentLogger(logger, "generate")

			doc, err := textsource.New(logger).Extract(runCtx, source)
			if err != nil {
				return err
			}
			logger.Info("document extracted",
				logging.String("source", source),
				logging.String("kind", string(doc.Kind)),
				logging.Int("chars", len(doc.Text)),
			)

			narration := doc.Text
			if cfg.Rewrite.Enabled && !noRewrite {
				client := llm.NewClient(llm.ConfigFromSettings(cfg.Rewrite))
				narration, err = client.Rewrite(runCtx, doc.Text)
				if err != nil {
					return fmt.Errorf("rewrite narration: %w", err)
				}
				logger.Info("narration rewritten",
					logging.String("model", client.Model()),
					logging.Int("chars", len(narration)),
					logging.String("preview", textutil.Truncate(narration, 80)),
				)
			}
			if scriptOut != "" {
				if err := os.WriteFile(scriptOut, []byte(narration+"\n"), 0o644); err != nil {
					return fmt.Errorf("write script: %w", err)
				}
			}

			if output == "" {
				output = defaultOutputFor(source)
			}
			audioPath := filepath.Join(cfg.Paths.WorkDir, "narration-"+uuid.NewString()+".mp3")
			if keepAudio {
				audioPath = strings.TrimSuffix(output, filepath.Ext(output)) + ".mp3"
			} else {
				defer os.Remove(audioPath)
			}
			synth := speech.NewClient(speech.ConfigFromSettings(cfg), speech.WithLogger(logger))
			if err := synth.Synthesize(runCtx, narration, audioPath); err != nil {
				return fmt.Errorf("synthesize narration: %w", err)
			}

			req := pipeline.Request{
				Background: background,
				Audio:      audioPath,
				Narration:  narration,
				Output:     output,
			}
			return runRender(cmd, ctx, req, opts)
		},
	}

	cmd.Flags().StringVarP(&background, "background", "b", "", "Background video file or name in paths.backgrounds_dir (default: first video there)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output video path (default: <document>.mp4)")
	cmd.Flags().BoolVar(&keepAudio, "keep-audio", false, "Keep the synthesized narration next to the output video")
	cmd.Flags().BoolVar(&noRewrite, "no-rewrite", false, "Narrate the extracted text verbatim")
	cmd.Flags().StringVar(&scriptOut, "script-out", "", "Also write the narration script to this file")
	opts.bind(cmd)
	return cmd
}
