package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"reelforge/internal/config"
)

// Settings holds encoder parameters shared by both render paths.
type Settings struct {
	Binary       string
	VideoCodec   string
	Preset       string
	CRF          int
	PixelFormat  string
	AudioCodec   string
	AudioBitrate string
}

// SettingsFromConfig extracts encoder settings from configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Binary:       cfg.FFmpegBinary(),
		VideoCodec:   cfg.Render.VideoCodec,
		Preset:       cfg.Render.Preset,
		CRF:          cfg.Render.CRF,
		PixelFormat:  cfg.Render.PixelFormat,
		AudioCodec:   cfg.Render.AudioCodec,
		AudioBitrate: cfg.Render.AudioBitrate,
	}
}

// DecodeJob describes the looped, trimmed background frame stream.
type DecodeJob struct {
	Background string
	Loops      int
	Duration   float64
	FrameRate  string
	Width      int
	Height     int
}

// EncodeJob describes the captioned output encode.
type EncodeJob struct {
	Audio     string
	Output    string
	Duration  float64
	FrameRate string
	Width     int
	Height    int
}

// FastJob describes a captionless render done entirely inside ffmpeg.
type FastJob struct {
	Background string
	Audio      string
	Output     string
	Loops      int
	Duration   float64
}

var baseGlobalArgs = []string{"-hide_banner", "-loglevel", "error"}

func seconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

func loopArg(loops int) string {
	if loops < 1 {
		loops = 1
	}
	return strconv.Itoa(loops - 1)
}

// DecodeArgs returns the ffmpeg arguments that emit job's frames as raw RGBA
// on stdout. The background is repeated Loops times and cut at Duration.
func DecodeArgs(job DecodeJob) []string {
	stream := ffmpeggo.Input(job.Background, ffmpeggo.KwArgs{"stream_loop": loopArg(job.Loops)}).
		Output("pipe:", ffmpeggo.KwArgs{
			"an":      "",
			"f":       "rawvideo",
			"pix_fmt": "rgba",
			"r":       job.FrameRate,
			"s":       fmt.Sprintf("%dx%d", job.Width, job.Height),
			"t":       seconds(job.Duration),
		})
	return withGlobals(stream.GetArgs(), "-nostdin")
}

// EncodeArgs returns the ffmpeg arguments that read raw RGBA frames from
// stdin, attach the narration audio, and write the final file.
func EncodeArgs(s Settings, job EncodeJob) []string {
	frames := ffmpeggo.Input("pipe:", ffmpeggo.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", job.Width, job.Height),
		"framerate": job.FrameRate,
	})
	audio := ffmpeggo.Input(job.Audio)
	stream := ffmpeggo.Output(
		[]*ffmpeggo.Stream{frames.Video(), audio.Audio()},
		job.Output,
		outputKwArgs(s, job.Duration),
	).OverWriteOutput()
	return withGlobals(stream.GetArgs())
}

// FastPathArgs returns the single-transcode arguments for a captionless
// render. Progress key/value pairs are written to stdout.
func FastPathArgs(s Settings, job FastJob) []string {
	video := ffmpeggo.Input(job.Background, ffmpeggo.KwArgs{"stream_loop": loopArg(job.Loops)}).Video().
		Filter("trim", ffmpeggo.Args{}, ffmpeggo.KwArgs{"duration": seconds(job.Duration)}).
		Filter("setpts", ffmpeggo.Args{"PTS-STARTPTS"})
	audio := ffmpeggo.Input(job.Audio).Audio()
	stream := ffmpeggo.Output(
		[]*ffmpeggo.Stream{video, audio},
		job.Output,
		outputKwArgs(s, job.Duration),
	).OverWriteOutput()
	return withGlobals(stream.GetArgs(), "-nostdin", "-progress", "pipe:1", "-nostats")
}

func outputKwArgs(s Settings, duration float64) ffmpeggo.KwArgs {
	return ffmpeggo.KwArgs{
		"c:v":      s.VideoCodec,
		"preset":   s.Preset,
		"crf":      strconv.Itoa(s.CRF),
		"pix_fmt":  s.PixelFormat,
		"c:a":      s.AudioCodec,
		"b:a":      s.AudioBitrate,
		"t":        seconds(duration),
		"movflags": "+faststart",
	}
}

func withGlobals(args []string, extra ...string) []string {
	out := make([]string, 0, len(baseGlobalArgs)+len(extra)+len(args))
	out = append(out, baseGlobalArgs...)
	out = append(out, extra...)
	return append(out, args...)
}

// CommandLine renders args for logs.
func CommandLine(binary string, args []string) string {
	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, binary)
	for _, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t'\"[];") {
			quoted = append(quoted, strconv.Quote(arg))
			continue
		}
		quoted = append(quoted, arg)
	}
	return strings.Join(quoted, " ")
}
