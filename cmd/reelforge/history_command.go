package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelforge/internal/history"
	"reelforge/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				summary, err := store.Summary(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No renders recorded yet")
					return nil
				}
				fmt.Fprintln(out, renderHistoryTable(runs))
				fmt.Fprintf(out, "%d runs total: %d succeeded, %d failed, %d frames rendered\n",
					summary.Total, summary.Succeeded, summary.Failed, summary.Frames)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one recorded render",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := store.GetByJobID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("no render with job id %s", args[0])
				}
				printRun(cmd.OutOrStdout(), *run)
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.PruneBefore(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age cutoff (e.g. 720h)")
	return cmd
}

func renderHistoryTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		outcome := string(run.Status)
		if run.FailureKind != "" && run.Status == history.StatusFailed {
			outcome += " (" + run.FailureKind + ")"
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			shortJobID(run.JobID),
			outcome,
			run.RenderPath,
			strconv.Itoa(run.Captions),
			strconv.FormatInt(run.Frames, 10),
			run.Elapsed().Round(100 * time.Millisecond).String(),
			textutil.Truncate(run.Output, 40),
		})
	}
	return renderTable(
		[]string{"Started", "Job", "Status", "Path", "Captions", "Frames", "Elapsed", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}

func printRun(out io.Writer, run history.Run) {
	rows := [][]string{
		{"Job", run.JobID},
		{"Status", string(run.Status)},
		{"Started", run.StartedAt.Local().Format(time.RFC3339)},
		{"Elapsed", run.Elapsed().Round(10 * time.Millisecond).String()},
		{"Background", run.Background},
		{"Audio", run.Audio},
		{"Output", run.Output},
		{"Path", run.RenderPath},
		{"Narration chars", strconv.Itoa(run.NarrationChars)},
		{"Captions", fmt.Sprintf("%d (%d rasterized)", run.Captions, run.Rasterizations)},
		{"Frames", fmt.Sprintf("%d @ %.3g fps", run.Frames, run.FrameRate)},
		{"Resolution", fmt.Sprintf("%dx%d", run.Width, run.Height)},
		{"Audio seconds", fmt.Sprintf("%.3f", run.AudioDuration)},
		{"Loops", strconv.Itoa(run.Loops)},
	}
	if run.FallbackReason != "" {
		rows = append(rows, []string{"Fallback", run.FallbackReason})
	}
	if run.Status == history.StatusFailed {
		rows = append(rows, []string{"Failure", run.FailureKind}, []string{"Error", run.ErrorMessage})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
}

func shortJobID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
