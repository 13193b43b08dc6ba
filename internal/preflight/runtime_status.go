package preflight

import (
	"fmt"
	"strings"

	"reelforge/internal/config"
)

// CheckRewriteFromConfig summarizes the rewrite settings without calling out.
func CheckRewriteFromConfig(cfg *config.Config) Result {
	const name = "Rewrite LLM"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Rewrite.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled (documents are narrated verbatim)"}
	}
	if strings.TrimSpace(cfg.Rewrite.APIKey) == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Configured (%s)", cfg.Rewrite.Model)}
}

// CheckSpeechFromConfig summarizes the speech settings without calling out.
func CheckSpeechFromConfig(cfg *config.Config) Result {
	const name = "Speech"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Speech.APIKey) == "" {
		return Result{Name: name, Detail: "Missing API key (generate unavailable)"}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("Configured (%s, voice %s, %.2fx)", cfg.Speech.Model, cfg.Speech.Voice, cfg.Speech.Speed),
	}
}

// CheckPublishFromConfig summarizes the S3 publish settings.
func CheckPublishFromConfig(cfg *config.Config) Result {
	const name = "Publish"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.PublishEnabled() {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	target := "s3://" + cfg.Publish.S3Bucket
	if prefix := strings.Trim(cfg.Publish.S3Prefix, "/"); prefix != "" {
		target += "/" + prefix
	}
	return Result{Name: name, Passed: true, Detail: target}
}

// CheckNotificationsFromConfig reports whether ntfy alerts are configured.
func CheckNotificationsFromConfig(cfg *config.Config) Result {
	const name = "Notifications"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: "ntfy " + topic}
}
