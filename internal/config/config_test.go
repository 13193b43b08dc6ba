package config_test

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelforge/internal/config"
)

func TestLoadDefaultConfigUsesEnvAPIKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("REELFORGE_WORK_DIR", "")
	t.Setenv("REELFORGE_FONT_PATH", "")
	t.Setenv("REELFORGE_S3_BUCKET", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "reelforge", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	wantHistory := filepath.Join(tempHome, ".local", "share", "reelforge", "history.db")
	if cfg.Paths.HistoryDB != wantHistory {
		t.Fatalf("unexpected history db: got %q want %q", cfg.Paths.HistoryDB, wantHistory)
	}
	if cfg.Rewrite.APIKey != "test-key" {
		t.Fatalf("expected rewrite key from env, got %q", cfg.Rewrite.APIKey)
	}
	if cfg.Speech.APIKey != "test-key" {
		t.Fatalf("expected speech key from env, got %q", cfg.Speech.APIKey)
	}
	if !cfg.Captions.Enabled {
		t.Fatal("expected captions enabled by default")
	}
	if cfg.Captions.MinChunkSeconds != 0.8 {
		t.Fatalf("unexpected min chunk seconds: %v", cfg.Captions.MinChunkSeconds)
	}
	if cfg.Captions.OutlineWidth != 3 {
		t.Fatalf("unexpected outline width: %d", cfg.Captions.OutlineWidth)
	}
	if cfg.Render.Preset != "ultrafast" || cfg.Render.CRF != 23 {
		t.Fatalf("unexpected encoder defaults: preset=%q crf=%d", cfg.Render.Preset, cfg.Render.CRF)
	}
	if cfg.Render.Workers != 1 {
		t.Fatalf("expected single worker default, got %d", cfg.Render.Workers)
	}
	if cfg.PublishEnabled() {
		t.Fatal("expected publishing disabled by default")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("REELFORGE_WORK_DIR", "")
	t.Setenv("REELFORGE_FONT_PATH", "")
	t.Setenv("REELFORGE_WORKERS", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	type captions struct {
		FontPath        string  `toml:"font_path"`
		MinChunkSeconds float64 `toml:"min_chunk_seconds"`
		FillColor       string  `toml:"fill_color"`
	}
	type render struct {
		Workers int    `toml:"workers"`
		Preset  string `toml:"preset"`
	}
	type publish struct {
		S3Bucket string `toml:"s3_bucket"`
		S3Prefix string `toml:"s3_prefix"`
	}
	type logging struct {
		Format string `toml:"format"`
		Level  string `toml:"level"`
	}
	payload := struct {
		Captions captions `toml:"captions"`
		Render   render   `toml:"render"`
		Publish  publish  `toml:"publish"`
		Logging  logging  `toml:"logging"`
	}{
		Captions: captions{FontPath: "~/fonts/caption.ttf", MinChunkSeconds: 1.5, FillColor: "#ffcc00"},
		Render:   render{Workers: 4, Preset: " Medium "},
		Publish:  publish{S3Bucket: "reels", S3Prefix: "/daily/"},
		Logging:  logging{Format: "JSON", Level: "Debug"},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if want := filepath.Join(tempHome, "fonts", "caption.ttf"); cfg.Captions.FontPath != want {
		t.Fatalf("font path not expanded: got %q want %q", cfg.Captions.FontPath, want)
	}
	if cfg.Captions.MinChunkSeconds != 1.5 {
		t.Fatalf("unexpected min chunk seconds: %v", cfg.Captions.MinChunkSeconds)
	}
	if cfg.Captions.FillColor != "#FFCC00" {
		t.Fatalf("expected normalized fill color, got %q", cfg.Captions.FillColor)
	}
	if cfg.Render.Workers != 4 {
		t.Fatalf("unexpected workers: %d", cfg.Render.Workers)
	}
	if cfg.Render.Preset != "medium" {
		t.Fatalf("unexpected preset: %q", cfg.Render.Preset)
	}
	if !cfg.PublishEnabled() || cfg.Publish.S3Prefix != "daily" {
		t.Fatalf("unexpected publish config: %+v", cfg.Publish)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Render.CRF != 23 {
		t.Fatalf("expected default crf to survive partial config, got %d", cfg.Render.CRF)
	}
}

func TestLoadEnvWorkDirOverride(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	workDir := filepath.Join(t.TempDir(), "scratch")
	t.Setenv("REELFORGE_WORK_DIR", workDir)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.WorkDir != workDir {
		t.Fatalf("expected env work dir %q, got %q", workDir, cfg.Paths.WorkDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"font size", func(c *config.Config) { c.Captions.FontSize = 0 }, "captions.font_size"},
		{"outline", func(c *config.Config) { c.Captions.OutlineWidth = -1 }, "captions.outline_width"},
		{"min chunk", func(c *config.Config) { c.Captions.MinChunkSeconds = -0.5 }, "captions.min_chunk_seconds"},
		{"side margin", func(c *config.Config) { c.Captions.SideMarginRatio = 0.5 }, "captions.side_margin_ratio"},
		{"fill color", func(c *config.Config) { c.Captions.FillColor = "white" }, "captions.fill_color"},
		{"crf", func(c *config.Config) { c.Render.CRF = 60 }, "render.crf"},
		{"workers", func(c *config.Config) { c.Render.Workers = 0 }, "render.workers"},
		{"speech speed", func(c *config.Config) { c.Speech.Speed = 5 }, "speech.speed"},
		{"ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "reels" }, "notifications.ntfy_topic"},
		{"ntfy timeout", func(c *config.Config) { c.Notifications.RequestTimeoutSeconds = -1 }, "notifications.request_timeout_seconds"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#FFFFFF", want: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{in: "000000", want: color.RGBA{A: 0xff}},
		{in: "#ff000080", want: color.RGBA{R: 0x80, A: 0x80}},
		{in: "#fff", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
	}
	for _, tc := range tests {
		got, err := config.ParseHexColor(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseHexColor(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseHexColor(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseHexColor(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Captions.FontSize != 24 {
		t.Fatalf("unexpected sample font size: %v", cfg.Captions.FontSize)
	}
}

func TestEnsureDirectoriesCreatesPaths(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.HistoryDB = filepath.Join(base, "state", "history.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir, filepath.Join(base, "state")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
