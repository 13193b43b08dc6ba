package ffmpeg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// Progress is one block of ffmpeg -progress output.
type Progress struct {
	Frame   int64
	FPS     float64
	OutTime time.Duration
	Speed   float64
	Done    bool
}

// ProgressParser accumulates ffmpeg -progress key=value lines. A block ends
// at a "progress=continue" or "progress=end" line.
type ProgressParser struct {
	current Progress
}

// ParseLine consumes one line and returns the completed block when line
// closes it.
func (p *ProgressParser) ParseLine(line string) (Progress, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return Progress{}, false
	}
	value = strings.TrimSpace(value)
	switch key {
	case "frame":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.current.Frame = v
		}
	case "fps":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			p.current.FPS = v
		}
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds; out_time_ms is a historical misnomer.
		if v, err := strconv.ParseInt(value, 10, 64); err == nil && v >= 0 {
			p.current.OutTime = time.Duration(v) * time.Microsecond
		}
	case "speed":
		if v, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64); err == nil {
			p.current.Speed = v
		}
	case "progress":
		block := p.current
		block.Done = value == "end"
		return block, true
	}
	return Progress{}, false
}

// Stream parses r until EOF, invoking fn for every completed block.
func (p *ProgressParser) Stream(r io.Reader, fn func(Progress)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)
	for scanner.Scan() {
		if block, ok := p.ParseLine(scanner.Text()); ok && fn != nil {
			fn(block)
		}
	}
	return scanner.Err()
}
