package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const defaultFFprobe = "ffprobe"

// ResolveFFprobe picks the ffprobe executable to pair with ffmpegCommand.
//
// An explicitly configured ffprobe wins. Otherwise an ffprobe sitting next to
// the resolved ffmpeg binary is preferred over PATH, so static builds
// unpacked into one directory probe with the same version they encode with.
func ResolveFFprobe(ffmpegCommand, ffprobeCommand string) string {
	ffprobeCommand = strings.TrimSpace(ffprobeCommand)
	if ffprobeCommand != "" && ffprobeCommand != defaultFFprobe {
		return ffprobeCommand
	}
	ffmpegCommand = strings.TrimSpace(ffmpegCommand)
	if ffmpegCommand != "" {
		if resolved, err := exec.LookPath(ffmpegCommand); err == nil {
			candidate := filepath.Join(filepath.Dir(resolved), executableName(defaultFFprobe))
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				return candidate
			}
		}
	}
	return defaultFFprobe
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
