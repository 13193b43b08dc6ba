package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/captions"
	"reelforge/internal/textutil"
)

func newCaptionsCommand(ctx *commandContext) *cobra.Command {
	var text string
	var narrationFile string
	var duration float64
	var minChunk float64
	var format string

	cmd := &cobra.Command{
		Use:   "captions",
		Short: "Preview the caption timeline for narration text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			narration, err := readNarration(text, narrationFile)
			if err != nil {
				return err
			}
			if strings.TrimSpace(narration) == "" {
				return errors.New("narration text is required (--text or --narration-file)")
			}
			if duration <= 0 {
				return errors.New("--duration must be positive")
			}
			if minChunk <= 0 {
				minChunk = cfg.Captions.MinChunkSeconds
			}

			chunks := captions.Chunk(narration, duration, minChunk)
			switch strings.ToLower(strings.TrimSpace(format)) {
			case "json":
				if chunks == nil {
					chunks = []captions.Caption{}
				}
				return writeJSON(cmd, chunks)
			case "srt":
				return captions.WriteSRT(cmd.OutOrStdout(), chunks)
			case "", "table":
				fmt.Fprintln(cmd.OutOrStdout(), renderCaptionTable(chunks))
				return nil
			default:
				return fmt.Errorf("unsupported format %q (use table, json or srt)", format)
			}
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Narration text")
	cmd.Flags().StringVar(&narrationFile, "narration-file", "", "File holding the narration text")
	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "Narration audio duration in seconds")
	cmd.Flags().Float64Var(&minChunk, "min-chunk", 0, "Minimum seconds per caption (default: captions.min_chunk_seconds)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or srt")
	cmd.MarkFlagsMutuallyExclusive("narration-file", "text")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func renderCaptionTable(chunks []captions.Caption) string {
	rows := make([][]string, 0, len(chunks))
	for i, c := range chunks {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.3f", c.Start),
			fmt.Sprintf("%.3f", c.End),
			fmt.Sprintf("%.3f", c.Duration()),
			textutil.Truncate(c.Text, 60),
		})
	}
	return renderTable(
		[]string{"#", "Start", "End", "Secs", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}
