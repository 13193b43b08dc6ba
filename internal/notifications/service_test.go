package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	agent    string
	body     string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()
	var requests []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			agent:    r.Header.Get("User-Agent"),
			body:     string(body),
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte("denied"))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRenderFailed(context.Background(), "out.mp4", errors.New("boom")); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("expected nil config to yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	tests := []struct {
		name         string
		send         func(notifications.Service) error
		wantTitle    string
		wantBody     string
		wantTags     string
		wantPriority string
	}{
		{
			name: "render completed",
			send: func(s notifications.Service) error {
				return s.NotifyRenderCompleted(context.Background(), notifications.RenderSummary{
					Output:   "/videos/out/story.mp4",
					Captions: 12,
					Duration: 31500 * time.Millisecond,
					Elapsed:  4230 * time.Millisecond,
				})
			},
			wantTitle: "reelforge - Render Complete",
			wantBody:  "Rendered story.mp4 (12 captions, 31.5s of video in 4.2s)",
			wantTags:  "reelforge,render,completed",
		},
		{
			name: "render failed",
			send: func(s notifications.Service) error {
				return s.NotifyRenderFailed(context.Background(), "/tmp/a.mp4", errors.New(" encoder crashed "))
			},
			wantTitle:    "reelforge - Render Failed",
			wantBody:     "Render of a.mp4 failed: encoder crashed",
			wantTags:     "reelforge,render,error",
			wantPriority: "high",
		},
		{
			name: "published",
			send: func(s notifications.Service) error {
				return s.NotifyPublished(context.Background(), "a.mp4", "s3://bucket/reels/a.mp4")
			},
			wantTitle: "reelforge - Published",
			wantBody:  "Uploaded a.mp4\ns3://bucket/reels/a.mp4",
			wantTags:  "reelforge,publish",
		},
		{
			name:         "test",
			send:         func(s notifications.Service) error { return s.TestNotification(context.Background()) },
			wantTitle:    "reelforge - Test",
			wantBody:     "Notification test from reelforge",
			wantTags:     "reelforge,test",
			wantPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, requests := newCaptureServer(t, http.StatusOK)
			cfg := config.Default()
			cfg.Notifications.NtfyTopic = srv.URL
			if err := tc.send(notifications.NewService(&cfg)); err != nil {
				t.Fatalf("send: %v", err)
			}
			if len(*requests) != 1 {
				t.Fatalf("expected 1 request, got %d", len(*requests))
			}
			got := (*requests)[0]
			if got.title != tc.wantTitle {
				t.Errorf("title = %q, want %q", got.title, tc.wantTitle)
			}
			if got.body != tc.wantBody {
				t.Errorf("body = %q, want %q", got.body, tc.wantBody)
			}
			if got.tags != tc.wantTags {
				t.Errorf("tags = %q, want %q", got.tags, tc.wantTags)
			}
			if got.priority != tc.wantPriority {
				t.Errorf("priority = %q, want %q", got.priority, tc.wantPriority)
			}
			if !strings.HasPrefix(got.agent, "reelforge/") {
				t.Errorf("unexpected user agent %q", got.agent)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	err := notifications.NewService(&cfg).TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "denied") {
		t.Fatalf("unexpected error %v", err)
	}
}
