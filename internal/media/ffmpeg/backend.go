package ffmpeg

import (
	"context"
	"image"
)

// FrameReader is a closable frame source.
type FrameReader interface {
	Next(dst *image.RGBA) error
	Close() error
}

// FrameWriter is a closable frame sink. Close finalizes the output file.
type FrameWriter interface {
	WriteFrame(frame *image.RGBA) error
	Close() error
}

// Backend runs renders with a local ffmpeg binary.
type Backend struct {
	Settings Settings
}

// NewBackend returns a Backend for settings.
func NewBackend(settings Settings) *Backend {
	if settings.Binary == "" {
		settings.Binary = "ffmpeg"
	}
	return &Backend{Settings: settings}
}

// RunFastPath renders a captionless video in one ffmpeg pass.
func (b *Backend) RunFastPath(ctx context.Context, job FastJob, onProgress func(Progress)) error {
	return RunFastPath(ctx, b.Settings.Binary, FastPathArgs(b.Settings, job), onProgress)
}

// OpenDecoder starts the background frame stream.
func (b *Backend) OpenDecoder(ctx context.Context, job DecodeJob) (FrameReader, error) {
	return StartDecoder(ctx, b.Settings.Binary, DecodeArgs(job), job.Width, job.Height)
}

// OpenEncoder starts the output encoder.
func (b *Backend) OpenEncoder(ctx context.Context, job EncodeJob) (FrameWriter, error) {
	return StartEncoder(ctx, b.Settings.Binary, EncodeArgs(b.Settings, job), job.Width, job.Height)
}
