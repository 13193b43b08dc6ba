package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"reelforge/internal/config"
)

const userAgent = "reelforge/0.1.0"

// Service is the notification surface used by the CLI.
type Service interface {
	NotifyRenderCompleted(ctx context.Context, summary RenderSummary) error
	NotifyRenderFailed(ctx context.Context, output string, err error) error
	NotifyPublished(ctx context.Context, output, url string) error
	TestNotification(ctx context.Context) error
}

// RenderSummary is the subset of a finished render worth pushing to a phone.
type RenderSummary struct {
	Output   string
	Captions int
	Duration time.Duration
	Elapsed  time.Duration
}

// NewService builds an ntfy-backed service, or a noop when no topic is set.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{endpoint: topic, client: &http.Client{Timeout: timeout}}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, summary RenderSummary) error {
	body := fmt.Sprintf("Rendered %s (%d captions, %s of video in %s)",
		displayName(summary.Output),
		summary.Captions,
		roundDuration(summary.Duration),
		roundDuration(summary.Elapsed),
	)
	return n.send(ctx, message{
		title: "reelforge - Render Complete",
		body:  body,
		tags:  []string{"reelforge", "render", "completed"},
	})
}

func (n *ntfyService) NotifyRenderFailed(ctx context.Context, output string, err error) error {
	reason := "unknown error"
	if err != nil {
		reason = strings.TrimSpace(err.Error())
	}
	return n.send(ctx, message{
		title:    "reelforge - Render Failed",
		body:     fmt.Sprintf("Render of %s failed: %s", displayName(output), reason),
		tags:     []string{"reelforge", "render", "error"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyPublished(ctx context.Context, output, url string) error {
	body := fmt.Sprintf("Uploaded %s", displayName(output))
	if url = strings.TrimSpace(url); url != "" {
		body += "\n" + url
	}
	return n.send(ctx, message{
		title: "reelforge - Published",
		body:  body,
		tags:  []string{"reelforge", "publish"},
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, message{
		title:    "reelforge - Test",
		body:     "Notification test from reelforge",
		tags:     []string{"reelforge", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func displayName(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "video"
	}
	return filepath.Base(path)
}

func roundDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d.Round(100 * time.Millisecond)
}

type noopService struct{}

func (noopService) NotifyRenderCompleted(context.Context, RenderSummary) error { return nil }
func (noopService) NotifyRenderFailed(context.Context, string, error) error    { return nil }
func (noopService) NotifyPublished(context.Context, string, string) error      { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
