package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateCollaborators(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.FontSize <= 0 {
		return errors.New("captions.font_size must be positive")
	}
	if c.Captions.OutlineWidth < 0 {
		return errors.New("captions.outline_width must be >= 0")
	}
	if c.Captions.MinChunkSeconds < 0 {
		return errors.New("captions.min_chunk_seconds must be >= 0")
	}
	if c.Captions.BottomMargin < 0 {
		return errors.New("captions.bottom_margin must be >= 0")
	}
	if c.Captions.SideMarginRatio < 0 || c.Captions.SideMarginRatio >= 0.5 {
		return errors.New("captions.side_margin_ratio must be between 0 and 0.5")
	}
	if _, err := ParseHexColor(c.Captions.FillColor); err != nil {
		return fmt.Errorf("captions.fill_color: %w", err)
	}
	if _, err := ParseHexColor(c.Captions.OutlineColor); err != nil {
		return fmt.Errorf("captions.outline_color: %w", err)
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.CRF < 0 || c.Render.CRF > 51 {
		return errors.New("render.crf must be between 0 and 51")
	}
	if c.Render.Workers < 1 {
		return errors.New("render.workers must be >= 1")
	}
	if c.Render.ProgressIntervalSeconds < 1 {
		return errors.New("render.progress_interval_seconds must be >= 1")
	}
	return nil
}

func (c *Config) validateCollaborators() error {
	if c.Rewrite.TimeoutSeconds < 0 {
		return errors.New("rewrite.timeout_seconds must be >= 0")
	}
	if c.Speech.Speed < 0.25 || c.Speech.Speed > 4.0 {
		return errors.New("speech.speed must be between 0.25 and 4.0")
	}
	if c.Speech.MaxChars < 1 {
		return errors.New("speech.max_chars must be positive")
	}
	if c.Speech.TimeoutSeconds < 0 {
		return errors.New("speech.timeout_seconds must be >= 0")
	}
	if c.Notifications.RequestTimeoutSeconds < 0 {
		return errors.New("notifications.request_timeout_seconds must be >= 0")
	}
	if topic := c.Notifications.NtfyTopic; topic != "" &&
		!strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL (got %q)", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be one of console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}
