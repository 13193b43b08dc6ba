package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"reelforge/internal/captions"
	"reelforge/internal/overlay"
)

// FrameSource yields decoded frames in presentation order. Next fills dst and
// returns io.EOF once the stream is exhausted.
type FrameSource interface {
	Next(dst *image.RGBA) error
}

// FrameSink consumes composited frames in presentation order. The frame
// buffer is reused after WriteFrame returns.
type FrameSink interface {
	WriteFrame(frame *image.RGBA) error
}

// OverlaySource resolves caption text to an overlay. *overlay.Cache is the
// production implementation.
type OverlaySource interface {
	Get(text string) (*overlay.Overlay, error)
}

// Compositor captions frames according to a timeline.
type Compositor struct {
	timeline *captions.Timeline
	overlays OverlaySource
}

// New returns a Compositor. An empty timeline passes every frame through.
func New(timeline *captions.Timeline, overlays OverlaySource) *Compositor {
	return &Compositor{timeline: timeline, overlays: overlays}
}

// Apply captions frame with whatever caption is active at t seconds.
func (c *Compositor) Apply(frame *image.RGBA, t float64) error {
	caption, ok := c.timeline.At(t)
	if !ok || c.overlays == nil {
		return nil
	}
	ov, err := c.overlays.Get(caption.Text)
	if err != nil {
		return fmt.Errorf("render caption at %.3fs: %w", t, err)
	}
	Composite(frame, ov)
	return nil
}

// Options configures a Run.
type Options struct {
	Width   int
	Height  int
	FPS     float64
	Workers int
	// MaxFrames stops the run after this many frames when positive.
	MaxFrames int64
	// OnFrame is called after each frame is written, with the running count.
	OnFrame func(written int64)
}

// Stats summarizes a finished Run.
type Stats struct {
	Frames int64
}

// Run pulls frames from src, captions each at index/FPS, and writes them to
// sink in order. With more than one worker, frames are read in batches of
// Workers, composited concurrently, then written in order, so output order
// never depends on scheduling.
func (c *Compositor) Run(ctx context.Context, src FrameSource, sink FrameSink, opts Options) (Stats, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return Stats{}, fmt.Errorf("invalid frame size %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return Stats{}, fmt.Errorf("invalid frame rate %v", opts.FPS)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	buffers := make([]*image.RGBA, workers)
	for i := range buffers {
		buffers[i] = image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	}

	var written atomic.Int64
	var index int64
	for {
		if err := ctx.Err(); err != nil {
			return Stats{Frames: written.Load()}, err
		}

		batch := 0
		eof := false
		for batch < workers {
			if opts.MaxFrames > 0 && index+int64(batch) >= opts.MaxFrames {
				eof = true
				break
			}
			err := src.Next(buffers[batch])
			if errors.Is(err, io.EOF) {
				eof = true
				break
			}
			if err != nil {
				return Stats{Frames: written.Load()}, fmt.Errorf("read frame %d: %w", index+int64(batch), err)
			}
			batch++
		}

		if err := c.composeBatch(ctx, buffers[:batch], index, opts.FPS); err != nil {
			return Stats{Frames: written.Load()}, err
		}
		for i := 0; i < batch; i++ {
			if err := sink.WriteFrame(buffers[i]); err != nil {
				return Stats{Frames: written.Load()}, fmt.Errorf("write frame %d: %w", index+int64(i), err)
			}
			n := written.Add(1)
			if opts.OnFrame != nil {
				opts.OnFrame(n)
			}
		}
		index += int64(batch)

		if eof {
			return Stats{Frames: written.Load()}, nil
		}
	}
}

func (c *Compositor) composeBatch(ctx context.Context, frames []*image.RGBA, first int64, fps float64) error {
	if len(frames) == 1 {
		return c.Apply(frames[0], float64(first)/fps)
	}
	g, gctx := errgroup.WithContext(ctx)
	for i, frame := range frames {
		t := float64(first+int64(i)) / fps
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return c.Apply(frame, t)
		})
	}
	return g.Wait()
}
