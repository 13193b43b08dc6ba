package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"reelforge/internal/captions"
)

func TestCaptionsCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{
		"captions", "--text", "One. Two. Three. Four.", "--duration", "4", "--min-chunk", "0.8", "--format", "json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("captions: %v", err)
	}
	var got []captions.Caption
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 captions, got %+v", got)
	}
	if got[0].Text != "One." || got[0].Start != 0 || got[3].End != 4 {
		t.Fatalf("unexpected captions %+v", got)
	}
}

func TestCaptionsCommandSRTFromFile(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "narration.txt")
	if err := os.WriteFile(path, []byte("Hello world. Goodbye world."), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, []string{
		"captions", "--narration-file", path, "--duration", "2", "--min-chunk", "0.5", "--format", "srt",
	}, env.configPath)
	if err != nil {
		t.Fatalf("captions: %v", err)
	}
	requireContains(t, out, "00:00:00,000 --> 00:00:01,000")
	requireContains(t, out, "Goodbye world.")
}

func TestCaptionsCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"captions", "--text", "Only one sentence", "--duration", "3"}, env.configPath)
	if err != nil {
		t.Fatalf("captions: %v", err)
	}
	requireContains(t, out, "Only one sentence.")
	requireContains(t, out, "3.000")
}

func TestCaptionsCommandValidation(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"captions", "--duration", "3"}, env.configPath); err == nil {
		t.Fatal("expected error without narration")
	}
	if _, _, err := runCLI(t, []string{"captions", "--text", "hi", "--duration", "-1"}, env.configPath); err == nil {
		t.Fatal("expected error for negative duration")
	}
	if _, _, err := runCLI(t, []string{"captions", "--text", "hi", "--duration", "1", "--format", "xml"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
