package captions

import (
	"math"
	"regexp"
	"strings"

	"reelforge/internal/textutil"
)

// groupTolerance absorbs float error when n*perSentence lands a hair under
// the minimum (4 * 0.2 is 0.8000000000000002, 3 * 0.1 is 0.30000000000000004).
const groupTolerance = 1e-9

var sentenceDelimiters = regexp.MustCompile(`[.!?]+`)

// Caption is one chunk of narration and the window it is displayed in.
// Start is inclusive and End exclusive.
type Caption struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns how long the caption is on screen.
func (c Caption) Duration() float64 {
	return c.End - c.Start
}

// SplitSentences splits text on runs of '.', '!' and '?' and returns the
// trimmed, non-empty pieces with inner whitespace collapsed.
func SplitSentences(text string) []string {
	parts := sentenceDelimiters.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := textutil.Normalize(part); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// Chunk partitions text into captions covering [0, duration).
//
// Every sentence gets an equal share of the duration. Consecutive sentences
// are grouped until the group reaches minChunkSeconds or the text runs out,
// so only the final caption may be shorter than the minimum. Caption text is
// the group's sentences joined with ". " plus a trailing period.
//
// Empty text or a non-positive duration yields no captions.
func Chunk(text string, duration, minChunkSeconds float64) []Caption {
	sentences := SplitSentences(text)
	if len(sentences) == 0 || duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil
	}
	perSentence := duration / float64(len(sentences))

	captions := make([]Caption, 0, len(sentences))
	clock := 0.0
	consumed := 0
	for consumed < len(sentences) {
		first := consumed
		count := 0
		for consumed < len(sentences) {
			consumed++
			count++
			if float64(count)*perSentence >= minChunkSeconds-groupTolerance {
				break
			}
		}

		// Ends are derived from the sentence count rather than a running sum
		// so rounding never accumulates across captions.
		end := math.Min(float64(consumed)*perSentence, duration)
		if consumed == len(sentences) {
			end = duration
		}
		captions = append(captions, Caption{
			Text:  strings.Join(sentences[first:consumed], ". ") + ".",
			Start: clock,
			End:   end,
		})
		clock = end
	}
	return captions
}
