package main

import (
	"os"
	"path/filepath"
	"testing"

	"reelforge/internal/testsupport"
)

func TestResolveBackground(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := cfg.Paths.BackgroundsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b-minecraft.mp4", "a-subway.MOV", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := resolveBackground(cfg, "")
	if err != nil {
		t.Fatalf("resolveBackground: %v", err)
	}
	if got != filepath.Join(dir, "a-subway.MOV") {
		t.Fatalf("expected first video by name, got %s", got)
	}

	got, err = resolveBackground(cfg, "b-minecraft.mp4")
	if err != nil || got != filepath.Join(dir, "b-minecraft.mp4") {
		t.Fatalf("expected lookup in backgrounds dir, got %s (%v)", got, err)
	}

	explicit := filepath.Join(t.TempDir(), "custom.mp4")
	if err := os.WriteFile(explicit, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := resolveBackground(cfg, explicit); err != nil || got != explicit {
		t.Fatalf("expected explicit path, got %s (%v)", got, err)
	}

	if _, err := resolveBackground(cfg, "missing.mp4"); err == nil {
		t.Fatal("expected error for unknown background")
	}
}

func TestResolveBackgroundEmptyDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.BackgroundsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveBackground(cfg, ""); err == nil {
		t.Fatal("expected error when no videos exist")
	}
	cfg.Paths.BackgroundsDir = ""
	if _, err := resolveBackground(cfg, ""); err == nil {
		t.Fatal("expected error when no backgrounds dir is configured")
	}
}

func TestDefaultOutputFor(t *testing.T) {
	tests := map[string]string{
		"/docs/rockets.pdf":                  "rockets.mp4",
		"notes.md":                           "notes.mp4",
		"https://example.com/blog/post.html": "example.com-blog-post.mp4",
	}
	for source, want := range tests {
		if got := defaultOutputFor(source); got != want {
			t.Errorf("defaultOutputFor(%q) = %q, want %q", source, got, want)
		}
	}
}

func TestReadNarration(t *testing.T) {
	if got, err := readNarration("inline", "ignored"); err != nil || got != "inline" {
		t.Fatalf("expected inline text, got %q (%v)", got, err)
	}
	if got, err := readNarration("", ""); err != nil || got != "" {
		t.Fatalf("expected empty narration, got %q (%v)", got, err)
	}
	path := filepath.Join(t.TempDir(), "n.txt")
	if err := os.WriteFile(path, []byte("From file."), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := readNarration("", path); err != nil || got != "From file." {
		t.Fatalf("expected file narration, got %q (%v)", got, err)
	}
	if _, err := readNarration("", path+".missing"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
