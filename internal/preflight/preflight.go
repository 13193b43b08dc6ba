package preflight

import (
	"context"

	"reelforge/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem, font and service checks for cfg.
// Network checks only run for features that are configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckParentDirectory("History database", cfg.Paths.HistoryDB),
	}
	if cfg.Paths.BackgroundsDir != "" {
		results = append(results, CheckDirectoryAccess("Backgrounds directory", cfg.Paths.BackgroundsDir))
	}
	if cfg.Captions.Enabled {
		results = append(results, CheckFont(cfg.Captions.FontPath, cfg.Captions.FontSize))
	}
	if cfg.Rewrite.Enabled && cfg.Rewrite.APIKey != "" {
		results = append(results, CheckLLM(ctx, "Rewrite LLM", cfg.Rewrite))
	} else {
		results = append(results, CheckRewriteFromConfig(cfg))
	}
	results = append(results, CheckSpeechFromConfig(cfg), CheckPublishFromConfig(cfg), CheckNotificationsFromConfig(cfg))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
