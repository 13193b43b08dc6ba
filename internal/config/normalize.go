package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCaptions(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeRewrite()
	c.normalizeSpeech()
	c.normalizePublish()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("REELFORGE_WORK_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.WorkDir = value
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) != "" {
		if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
			return fmt.Errorf("paths.history_db: %w", err)
		}
	}
	if c.Paths.BackgroundsDir, err = expandPath(strings.TrimSpace(c.Paths.BackgroundsDir)); err != nil {
		return fmt.Errorf("paths.backgrounds_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCaptions() error {
	if value, ok := os.LookupEnv("REELFORGE_FONT_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Captions.FontPath = value
	}
	c.Captions.FontPath = strings.TrimSpace(c.Captions.FontPath)
	if c.Captions.FontPath != "" {
		var err error
		if c.Captions.FontPath, err = expandPath(c.Captions.FontPath); err != nil {
			return fmt.Errorf("captions.font_path: %w", err)
		}
	}
	c.Captions.FillColor = strings.ToUpper(strings.TrimSpace(c.Captions.FillColor))
	if c.Captions.FillColor == "" {
		c.Captions.FillColor = defaultFillColor
	}
	c.Captions.OutlineColor = strings.ToUpper(strings.TrimSpace(c.Captions.OutlineColor))
	if c.Captions.OutlineColor == "" {
		c.Captions.OutlineColor = defaultOutlineColor
	}
	return nil
}

func (c *Config) normalizeRender() {
	c.Render.FFmpegBinary = strings.TrimSpace(c.Render.FFmpegBinary)
	if c.Render.FFmpegBinary == "" {
		c.Render.FFmpegBinary = "ffmpeg"
	}
	c.Render.FFprobeBinary = strings.TrimSpace(c.Render.FFprobeBinary)
	if c.Render.FFprobeBinary == "" {
		c.Render.FFprobeBinary = "ffprobe"
	}
	c.Render.VideoCodec = strings.TrimSpace(c.Render.VideoCodec)
	if c.Render.VideoCodec == "" {
		c.Render.VideoCodec = defaultVideoCodec
	}
	c.Render.Preset = strings.ToLower(strings.TrimSpace(c.Render.Preset))
	if c.Render.Preset == "" {
		c.Render.Preset = defaultPreset
	}
	c.Render.PixelFormat = strings.TrimSpace(c.Render.PixelFormat)
	if c.Render.PixelFormat == "" {
		c.Render.PixelFormat = defaultPixelFormat
	}
	c.Render.AudioCodec = strings.TrimSpace(c.Render.AudioCodec)
	if c.Render.AudioCodec == "" {
		c.Render.AudioCodec = defaultAudioCodec
	}
	c.Render.AudioBitrate = strings.TrimSpace(c.Render.AudioBitrate)
	if c.Render.AudioBitrate == "" {
		c.Render.AudioBitrate = defaultAudioBitrate
	}
	if value, ok := os.LookupEnv("REELFORGE_WORKERS"); ok {
		if workers, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			c.Render.Workers = workers
		}
	}
	if c.Render.Workers == 0 {
		c.Render.Workers = defaultWorkers
	}
	if c.Render.ProgressIntervalSeconds == 0 {
		c.Render.ProgressIntervalSeconds = defaultProgressIntervalSeconds
	}
}

func (c *Config) normalizeRewrite() {
	if c.Rewrite.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Rewrite.APIKey = value
		}
	}
	c.Rewrite.BaseURL = strings.TrimSpace(c.Rewrite.BaseURL)
	if c.Rewrite.BaseURL == "" {
		c.Rewrite.BaseURL = defaultRewriteBaseURL
	}
	c.Rewrite.Model = strings.TrimSpace(c.Rewrite.Model)
	if c.Rewrite.Model == "" {
		c.Rewrite.Model = defaultRewriteModel
	}
	if c.Rewrite.TimeoutSeconds == 0 {
		c.Rewrite.TimeoutSeconds = defaultRewriteTimeoutSeconds
	}
	c.Rewrite.SystemPrompt = strings.TrimSpace(c.Rewrite.SystemPrompt)
	if c.Rewrite.SystemPrompt == "" {
		c.Rewrite.SystemPrompt = defaultRewriteSystemPrompt
	}
}

func (c *Config) normalizeSpeech() {
	if c.Speech.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Speech.APIKey = value
		}
	}
	c.Speech.BaseURL = strings.TrimSpace(c.Speech.BaseURL)
	if c.Speech.BaseURL == "" {
		c.Speech.BaseURL = defaultSpeechBaseURL
	}
	c.Speech.Model = strings.TrimSpace(c.Speech.Model)
	if c.Speech.Model == "" {
		c.Speech.Model = defaultSpeechModel
	}
	c.Speech.Voice = strings.ToLower(strings.TrimSpace(c.Speech.Voice))
	if c.Speech.Voice == "" {
		c.Speech.Voice = defaultSpeechVoice
	}
	if c.Speech.Speed == 0 {
		c.Speech.Speed = defaultSpeechSpeed
	}
	if c.Speech.MaxChars == 0 {
		c.Speech.MaxChars = defaultSpeechMaxChars
	}
	if c.Speech.TimeoutSeconds == 0 {
		c.Speech.TimeoutSeconds = defaultSpeechTimeoutSeconds
	}
}

func (c *Config) normalizePublish() {
	c.Publish.S3Bucket = strings.TrimSpace(c.Publish.S3Bucket)
	if c.Publish.S3Bucket == "" {
		if value, ok := os.LookupEnv("REELFORGE_S3_BUCKET"); ok {
			c.Publish.S3Bucket = strings.TrimSpace(value)
		}
	}
	c.Publish.S3Prefix = strings.Trim(strings.TrimSpace(c.Publish.S3Prefix), "/")
	c.Publish.Region = strings.TrimSpace(c.Publish.Region)
	if c.Publish.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok {
			c.Publish.Region = strings.TrimSpace(value)
		}
	}
	c.Publish.Profile = strings.TrimSpace(c.Publish.Profile)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("REELFORGE_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeoutSeconds == 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
