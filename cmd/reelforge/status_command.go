package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelforge/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check binaries, directories, fonts and service configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			configDetail := ctx.configPath
			if !ctx.configSeen {
				configDetail += " (not found; defaults in use)"
			}
			writeLines(out, renderSectionHeader("Configuration", colorize))
			writeLines(out, []string{renderStatusLine("Config file", statusInfo, configDetail, colorize)})
			fmt.Fprintln(out)

			statuses := preflight.CheckSystemDeps(cfg)
			writeLines(out, renderSectionHeader("Dependencies", colorize))
			writeLines(out, dependencyLines(statuses, colorize))
			fmt.Fprintln(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			writeLines(out, renderSectionHeader("Checks", colorize))
			writeLines(out, checkLines(results, colorize))
			return nil
		},
	}
}
