// Package ffmpeg builds and runs the ffmpeg processes behind a render.
//
// Command lines are assembled with github.com/u2takey/ffmpeg-go and executed
// with exec.CommandContext so cancellation, stdin/stdout pipes, and stderr
// capture stay under our control. Three process shapes exist:
//
//   - Decoder: loops and trims the background and streams raw RGBA frames
//   - Encoder: reads raw RGBA frames on stdin, muxes narration audio, and
//     writes the final H.264/AAC file
//   - RunFastPath: a single transcode that loops, trims, and attaches audio
//     in a native filter graph, reporting progress via -progress
package ffmpeg
