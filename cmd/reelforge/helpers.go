package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"reelforge/internal/config"
)

var videoExtensions = []string{".mp4", ".mov", ".mkv", ".webm", ".m4v"}

// resolveBackground turns the --background value into a file path. A value
// that is not an existing file is looked up in paths.backgrounds_dir; an
// empty value picks the first video there in name order.
func resolveBackground(cfg *config.Config, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value != "" {
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return "", err
		}
		if info, err := os.Stat(expanded); err == nil && !info.IsDir() {
			return expanded, nil
		}
	}
	dir := strings.TrimSpace(cfg.Paths.BackgroundsDir)
	if dir == "" {
		if value == "" {
			return "", errors.New("--background is required when paths.backgrounds_dir is not set")
		}
		return "", fmt.Errorf("background %q not found", value)
	}
	if value != "" {
		candidate := filepath.Join(dir, value)
		if _, err := os.Stat(candidate); err != nil {
			return "", fmt.Errorf("background %q not found (also checked %s)", value, dir)
		}
		return candidate, nil
	}

	videos, err := listVideos(dir)
	if err != nil {
		return "", err
	}
	if len(videos) == 0 {
		return "", fmt.Errorf("no background videos in %s", dir)
	}
	return videos[0], nil
}

func listVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backgrounds directory: %w", err)
	}
	var videos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(videoExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			videos = append(videos, filepath.Join(dir, entry.Name()))
		}
	}
	slices.Sort(videos)
	return videos, nil
}

// defaultOutputFor names the video after the source document.
func defaultOutputFor(source string) string {
	base := filepath.Base(source)
	if strings.Contains(source, "://") {
		base = strings.Trim(strings.SplitN(source, "://", 2)[1], "/")
		base = strings.ReplaceAll(base, "/", "-")
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "reel"
	}
	return base + ".mp4"
}
