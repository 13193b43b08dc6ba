package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/media/ffmpeg"
	"reelforge/internal/services"
)

const (
	stage                 = "speech"
	defaultBaseURL        = "https://api.openai.com/v1/audio/speech"
	defaultModel          = "tts-1"
	defaultVoice          = "echo"
	defaultSpeed          = 1.0
	defaultMaxChars       = 4000
	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second
	defaultRetryMaxDelay  = 8 * time.Second
)

// Config captures the speech endpoint and voice settings.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Voice          string
	Speed          float64
	MaxChars       int
	TimeoutSeconds int
	FFmpegBinary   string
}

// ConfigFromSettings maps the [speech] section and ffmpeg binary onto a
// client Config.
func ConfigFromSettings(cfg *config.Config) Config {
	return Config{
		APIKey:         cfg.Speech.APIKey,
		BaseURL:        cfg.Speech.BaseURL,
		Model:          cfg.Speech.Model,
		Voice:          cfg.Speech.Voice,
		Speed:          cfg.Speech.Speed,
		MaxChars:       cfg.Speech.MaxChars,
		TimeoutSeconds: cfg.Speech.TimeoutSeconds,
		FFmpegBinary:   cfg.FFmpegBinary(),
	}
}

// ConcatFunc joins audio parts into output.
type ConcatFunc func(ctx context.Context, binary string, parts []string, output string) error

// Client synthesizes narration audio files.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	concat     ConcatFunc
	attempts   int
	baseDelay  time.Duration
	sleeper    func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for progress and retries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConcat overrides how multi-part audio is joined.
func WithConcat(fn ConcatFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.concat = fn
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a speech client, filling unset fields with defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = defaultVoice
	}
	if cfg.Speed <= 0 {
		cfg.Speed = defaultSpeed
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = defaultMaxChars
	}
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
		concat:     ffmpeg.Concat,
		attempts:   defaultRetryAttempts,
		baseDelay:  defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed,omitempty"`
	ResponseFormat string  `json:"response_format,omitempty"`
}

// Synthesize writes narration audio for text to output. The audio format
// follows output's extension (mp3, wav, opus, aac, flac).
func (c *Client) Synthesize(ctx context.Context, text, output string) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, stage, "synthesize", "speech api key required", nil)
	}
	format, err := responseFormat(output)
	if err != nil {
		return err
	}
	parts := SplitText(text, c.cfg.MaxChars)
	if len(parts) == 0 {
		return services.Wrap(services.ErrInput, stage, "synthesize", "narration text is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return services.Wrap(services.ErrResource, stage, "synthesize", "create output directory", err)
	}

	if len(parts) == 1 {
		return c.synthesizePart(ctx, parts[0], format, output)
	}

	c.logger.Info("speech text split into parts",
		logging.Int("parts", len(parts)),
		logging.Int("max_chars", c.cfg.MaxChars),
	)
	tempDir, err := os.MkdirTemp(filepath.Dir(output), ".speech-*")
	if err != nil {
		return services.Wrap(services.ErrResource, stage, "synthesize", "create temp directory", err)
	}
	defer os.RemoveAll(tempDir)

	files := make([]string, 0, len(parts))
	for i, part := range parts {
		partPath := filepath.Join(tempDir, fmt.Sprintf("part-%03d.%s", i, format))
		if err := c.synthesizePart(ctx, part, format, partPath); err != nil {
			return err
		}
		files = append(files, partPath)
		c.logger.Debug("speech part synthesized",
			logging.Int("part", i+1),
			logging.Int("parts", len(parts)),
		)
	}
	if err := c.concat(ctx, c.cfg.FFmpegBinary, files, output); err != nil {
		return services.Wrap(services.ErrExternalTool, stage, "concat", "join speech parts", err)
	}
	return nil
}

func (c *Client) synthesizePart(ctx context.Context, text, format, path string) error {
	payload := speechRequest{
		Model:          c.cfg.Model,
		Input:          text,
		Voice:          c.cfg.Voice,
		Speed:          c.cfg.Speed,
		ResponseFormat: format,
	}
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		err := c.requestOnce(ctx, payload, path)
		if err == nil {
			return nil
		}
		lastErr = err
		var statusErr *httpStatusError
		retryable := errors.As(err, &statusErr) && statusErr.retryable()
		if !retryable || attempt == c.attempts || ctx.Err() != nil {
			break
		}
		delay := c.backoff(attempt, statusErr.retryAfter)
		c.logger.Warn("speech request failed; retrying",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
			logging.String(logging.FieldEventType, "speech_retry"),
			logging.String(logging.FieldErrorHint, "the speech API is rate limiting or unavailable"),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return services.Wrap(services.ErrExternalTool, stage, "request", "speech request failed", lastErr)
}

func (c *Client) requestOnce(ctx context.Context, payload speechRequest, path string) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode speech request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("new speech request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	tmp := path + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	written, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write audio file: %w", err)
	}
	if written == 0 {
		_ = os.Remove(tmp)
		return errors.New("speech response was empty")
	}
	return os.Rename(tmp, path)
}

type httpStatusError struct {
	StatusCode int
	Body       string
	retryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("speech request: http %d: %s", e.StatusCode, e.Body)
}

func (e *httpStatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

func (c *Client) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return min(retryAfter, defaultRetryMaxDelay)
	}
	delay := c.baseDelay << (attempt - 1)
	return min(delay, defaultRetryMaxDelay)
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

var audioFormats = map[string]string{
	".mp3":  "mp3",
	".wav":  "wav",
	".opus": "opus",
	".ogg":  "opus",
	".aac":  "aac",
	".m4a":  "aac",
	".flac": "flac",
}

func responseFormat(output string) (string, error) {
	ext := strings.ToLower(filepath.Ext(output))
	if format, ok := audioFormats[ext]; ok {
		return format, nil
	}
	return "", services.Wrap(services.ErrValidation, stage, "synthesize",
		fmt.Sprintf("unsupported audio extension %q", ext), nil)
}
