package captions

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// WriteSRT writes captions as a SubRip subtitle file.
func WriteSRT(w io.Writer, captions []Caption) error {
	bw := bufio.NewWriter(w)
	for i, c := range captions {
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(c.Start), srtTimestamp(c.End), c.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
