package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// ConcatArgs returns the arguments that join the files named in listPath
// with the concat demuxer, copying streams without re-encoding.
func ConcatArgs(listPath, output string) []string {
	stream := ffmpeggo.Input(listPath, ffmpeggo.KwArgs{"f": "concat", "safe": "0"}).
		Output(output, ffmpeggo.KwArgs{"c": "copy"}).
		OverWriteOutput()
	return withGlobals(stream.GetArgs(), "-nostdin")
}

// concatList renders the demuxer's list file body. Single quotes inside a
// path are escaped the way the demuxer expects.
func concatList(parts []string) (string, error) {
	var b strings.Builder
	for _, part := range parts {
		abs, err := filepath.Abs(part)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	return b.String(), nil
}

// Concat joins parts, in order, into output. A single part is copied
// through ffmpeg as well so the container always matches output's extension.
func Concat(ctx context.Context, binary string, parts []string, output string) error {
	if len(parts) == 0 {
		return fmt.Errorf("concat: no inputs")
	}
	body, err := concatList(parts)
	if err != nil {
		return fmt.Errorf("concat list: %w", err)
	}
	list, err := os.CreateTemp(filepath.Dir(output), ".concat-*.txt")
	if err != nil {
		return fmt.Errorf("concat list: %w", err)
	}
	listPath := list.Name()
	defer os.Remove(listPath)
	if _, err := list.WriteString(body); err != nil {
		list.Close()
		return fmt.Errorf("concat list: %w", err)
	}
	if err := list.Close(); err != nil {
		return fmt.Errorf("concat list: %w", err)
	}

	cmd := exec.CommandContext(ctx, binary, ConcatArgs(listPath, output)...)
	stderr := newTailBuffer(stderrTailBytes)
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return &ProcessError{Op: "concat", Err: err, Stderr: stderr.String()}
	}
	return nil
}
