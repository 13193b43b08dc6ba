// Package speech synthesizes narration audio through an OpenAI-compatible
// /audio/speech endpoint.
//
// Requests are limited to max_chars characters. Longer scripts are split on
// sentence boundaries, each part is synthesized to a temporary file, and the
// parts are joined losslessly with the ffmpeg concat demuxer. Transient HTTP
// failures (429 and 5xx) are retried with exponential backoff.
package speech
