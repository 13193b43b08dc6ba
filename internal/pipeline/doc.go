// Package pipeline renders one narrated video: it probes the background and
// narration assets, builds the caption timeline, and drives either the
// single-pass ffmpeg transcode or the per-frame caption compositor.
//
// Output is produced in the work directory and moved into place only after a
// successful encode, so a failed or cancelled render never leaves a partial
// file at the requested path.
package pipeline
