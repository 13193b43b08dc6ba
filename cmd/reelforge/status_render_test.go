package main

import (
	"fmt"
	"strings"
	"testing"

	"reelforge/internal/deps"
	"reelforge/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "FFmpeg", Available: false},
		{Name: "FFprobe", Available: true, Command: "/usr/bin/ffprobe"},
		{Name: "pdftotext", Available: false, Optional: true, Detail: `binary "pdftotext" not found`},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[ERROR] 1 required missing") {
		t.Fatalf("expected error summary first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] not available") {
		t.Fatalf("expected error detail, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[OK] Ready (command: /usr/bin/ffprobe)") {
		t.Fatalf("expected ready detail, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "[WARN]") {
		t.Fatalf("expected optional warning, got %q", lines[3])
	}
}

func TestDependencyLinesOptionalOnly(t *testing.T) {
	lines := dependencyLines([]deps.Status{{Name: "pdftotext", Optional: true}}, false)
	if !strings.Contains(lines[0], "[WARN] 1 optional missing") {
		t.Fatalf("unexpected summary %q", lines[0])
	}
}

func TestCheckLines(t *testing.T) {
	lines := checkLines([]preflight.Result{
		{Name: "Work directory", Passed: true, Detail: "/tmp (read/write ok)"},
		{Name: "Speech", Detail: "Missing API key"},
	}, false)
	if !strings.Contains(lines[0], "[OK]") || !strings.Contains(lines[1], "[ERROR] Missing API key") {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "== Checks ==")
	requireContains(t, out, env.configPath)
	requireContains(t, out, "Work directory")
}
