package history

import "time"

// Status is the outcome of a render attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one recorded render attempt.
type Run struct {
	ID             int64     `json:"id"`
	JobID          string    `json:"job_id"`
	Status         Status    `json:"status"`
	FailureKind    string    `json:"failure_kind"`
	ErrorMessage   string    `json:"error_message"`
	RenderPath     string    `json:"render_path"`
	FallbackReason string    `json:"fallback_reason"`
	Background     string    `json:"background"`
	Audio          string    `json:"audio"`
	Output         string    `json:"output"`
	NarrationChars int       `json:"narration_chars"`
	Captions       int       `json:"captions"`
	Rasterizations int64     `json:"rasterizations"`
	Frames         int64     `json:"frames"`
	AudioDuration  float64   `json:"audio_duration"`
	Loops          int       `json:"loops"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	FrameRate      float64   `json:"frame_rate"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Elapsed returns the wall-clock duration of the run.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary aggregates run counts by status.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Frames    int64
}
