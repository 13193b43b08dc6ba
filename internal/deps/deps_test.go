package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeExecutable(t, present)
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}

	missing := MissingRequired(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("expected only the required missing binary, got %#v", missing)
	}
}

func TestResolveFFprobePrefersSibling(t *testing.T) {
	dir := t.TempDir()
	ffmpegPath := filepath.Join(dir, executableName("ffmpeg"))
	ffprobePath := filepath.Join(dir, executableName("ffprobe"))
	writeExecutable(t, ffmpegPath)
	writeExecutable(t, ffprobePath)

	if got := ResolveFFprobe(ffmpegPath, ""); got != ffprobePath {
		t.Fatalf("ResolveFFprobe = %q, want sibling %q", got, ffprobePath)
	}
	if got := ResolveFFprobe(ffmpegPath, "ffprobe"); got != ffprobePath {
		t.Fatalf("default name should still prefer the sibling, got %q", got)
	}
}

func TestResolveFFprobeExplicitWins(t *testing.T) {
	dir := t.TempDir()
	ffmpegPath := filepath.Join(dir, executableName("ffmpeg"))
	writeExecutable(t, ffmpegPath)
	writeExecutable(t, filepath.Join(dir, executableName("ffprobe")))

	if got := ResolveFFprobe(ffmpegPath, "/opt/ffprobe-7"); got != "/opt/ffprobe-7" {
		t.Fatalf("ResolveFFprobe = %q", got)
	}
}

func TestResolveFFprobeFallsBackToPath(t *testing.T) {
	dir := t.TempDir()
	ffmpegPath := filepath.Join(dir, executableName("ffmpeg"))
	writeExecutable(t, ffmpegPath)

	if got := ResolveFFprobe(ffmpegPath, ""); got != "ffprobe" {
		t.Fatalf("ResolveFFprobe = %q, want ffprobe", got)
	}
	if got := ResolveFFprobe("clearly-not-present-ffmpeg", ""); got != "ffprobe" {
		t.Fatalf("ResolveFFprobe = %q, want ffprobe", got)
	}
}
