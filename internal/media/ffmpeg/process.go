package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"sync"
)

const stderrTailBytes = 4096

// ProcessError reports a failed ffmpeg invocation with the end of its stderr.
type ProcessError struct {
	Op     string
	Err    error
	Stderr string
}

func (e *ProcessError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("ffmpeg %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ffmpeg %s: %v: %s", e.Op, e.Err, lastLines(e.Stderr, 5))
}

func (e *ProcessError) Unwrap() error { return e.Err }

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// Decoder streams raw RGBA frames from an ffmpeg child process.
type Decoder struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	stderr    *tailBuffer
	frameSize int
	width     int
	height    int
	closeOnce sync.Once
	closeErr  error
}

// StartDecoder launches ffmpeg with args, which must emit width x height RGBA
// frames on stdout.
func StartDecoder(ctx context.Context, binary string, args []string, width, height int) (*Decoder, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid decode size %dx%d", width, height)
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("decoder stdout: %w", err)
	}
	stderr := newTailBuffer(stderrTailBytes)
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, &ProcessError{Op: "decode start", Err: err}
	}
	return &Decoder{
		cmd:       cmd,
		stdout:    stdout,
		stderr:    stderr,
		frameSize: width * height * 4,
		width:     width,
		height:    height,
	}, nil
}

// Next reads the next frame into dst. It returns io.EOF at the end of the
// stream; a trailing partial frame is discarded.
func (d *Decoder) Next(dst *image.RGBA) error {
	if dst.Bounds().Dx() != d.width || dst.Bounds().Dy() != d.height || dst.Stride != d.width*4 {
		return fmt.Errorf("frame buffer %v does not match decode size %dx%d", dst.Bounds(), d.width, d.height)
	}
	_, err := io.ReadFull(d.stdout, dst.Pix[:d.frameSize])
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		if waitErr := d.Close(); waitErr != nil {
			return waitErr
		}
		return io.EOF
	default:
		return &ProcessError{Op: "decode read", Err: err, Stderr: d.stderr.String()}
	}
}

// Close stops reading and waits for the process. Closing before the stream
// ends terminates ffmpeg with a broken pipe, which is not reported.
func (d *Decoder) Close() error {
	d.closeOnce.Do(func() {
		_ = d.stdout.Close()
		err := d.cmd.Wait()
		if err == nil {
			return
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && !exitErr.Exited() {
			// Killed by signal: context cancellation or our own pipe close.
			return
		}
		if stderr := d.stderr.String(); strings.Contains(stderr, "Broken pipe") {
			return
		}
		d.closeErr = &ProcessError{Op: "decode", Err: err, Stderr: d.stderr.String()}
	})
	return d.closeErr
}

// Encoder feeds raw RGBA frames to an ffmpeg child process.
type Encoder struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stderr    *tailBuffer
	frameSize int
	closeOnce sync.Once
	closeErr  error
}

// StartEncoder launches ffmpeg with args, which must read width x height RGBA
// frames from stdin.
func StartEncoder(ctx context.Context, binary string, args []string, width, height int) (*Encoder, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("encoder stdin: %w", err)
	}
	stderr := newTailBuffer(stderrTailBytes)
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, &ProcessError{Op: "encode start", Err: err}
	}
	return &Encoder{cmd: cmd, stdin: stdin, stderr: stderr, frameSize: width * height * 4}, nil
}

// WriteFrame sends one frame to the encoder.
func (e *Encoder) WriteFrame(frame *image.RGBA) error {
	if len(frame.Pix) < e.frameSize {
		return fmt.Errorf("frame has %d bytes, encoder expects %d", len(frame.Pix), e.frameSize)
	}
	if _, err := e.stdin.Write(frame.Pix[:e.frameSize]); err != nil {
		// The process has most likely exited; its stderr explains why.
		if closeErr := e.Close(); closeErr != nil {
			return closeErr
		}
		return &ProcessError{Op: "encode write", Err: err, Stderr: e.stderr.String()}
	}
	return nil
}

// Close signals end of input and waits for the encoder to finish the file.
func (e *Encoder) Close() error {
	e.closeOnce.Do(func() {
		_ = e.stdin.Close()
		if err := e.cmd.Wait(); err != nil {
			e.closeErr = &ProcessError{Op: "encode", Err: err, Stderr: e.stderr.String()}
		}
	})
	return e.closeErr
}

// RunFastPath executes a -progress enabled transcode, reporting each
// progress block to onProgress.
func RunFastPath(ctx context.Context, binary string, args []string, onProgress func(Progress)) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("fast path stdout: %w", err)
	}
	stderr := newTailBuffer(stderrTailBytes)
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return &ProcessError{Op: "fast path start", Err: err}
	}

	var parser ProgressParser
	parseErr := parser.Stream(stdout, onProgress)
	if parseErr != nil {
		_, _ = io.Copy(io.Discard, stdout)
	}
	if err := cmd.Wait(); err != nil {
		return &ProcessError{Op: "fast path", Err: err, Stderr: stderr.String()}
	}
	return nil
}
