package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelforge/internal/deps"
	"reelforge/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "probe <media>",
		Short: "Summarize the streams of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			binary := deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.FFprobeBinary())
			result, err := ffprobe.Inspect(cmd.Context(), binary, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				_, err := cmd.OutOrStdout().Write(append(result.RawJSON(), '\n'))
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s, %.3fs)\n", args[0], result.Format.FormatName, result.DurationSeconds())
			fmt.Fprintln(out, renderStreamTable(result))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw ffprobe JSON")
	return cmd
}

func renderStreamTable(result ffprobe.Result) string {
	rows := make([][]string, 0, len(result.Streams))
	for _, s := range result.Streams {
		detail := ""
		switch s.CodecType {
		case "video":
			detail = fmt.Sprintf("%dx%d %s @ %s fps", s.Width, s.Height, s.PixelFormat, strconv.FormatFloat(s.FrameRate(), 'f', -1, 64))
		case "audio":
			detail = fmt.Sprintf("%s Hz, %d ch", s.SampleRate, s.Channels)
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			s.CodecType,
			s.CodecName,
			s.Duration,
			detail,
		})
	}
	return renderTable(
		[]string{"#", "Type", "Codec", "Duration", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
