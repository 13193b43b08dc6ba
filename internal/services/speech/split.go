package speech

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"reelforge/internal/textutil"
)

var sentenceEnd = regexp.MustCompile(`[^.!?]+[.!?]*`)

// SplitText breaks text into parts no longer than maxChars, keeping whole
// sentences together. Sentences keep their own terminal punctuation; one
// without any gets a period. A single sentence longer than maxChars is cut
// on word boundaries.
func SplitText(text string, maxChars int) []string {
	text = textutil.Normalize(text)
	if text == "" {
		return nil
	}
	if maxChars <= 0 || len(text) <= maxChars {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}
	for _, raw := range sentenceEnd.FindAllString(text, -1) {
		sentence := strings.TrimSpace(raw)
		if strings.Trim(sentence, ".!? ") == "" {
			continue
		}
		if !strings.ContainsAny(sentence[len(sentence)-1:], ".!?") {
			sentence += "."
		}
		for _, piece := range splitLong(sentence, maxChars) {
			if current.Len() > 0 && current.Len()+1+len(piece) > maxChars {
				flush()
			}
			if current.Len() > 0 {
				current.WriteByte(' ')
			}
			current.WriteString(piece)
		}
	}
	flush()
	return parts
}

func splitLong(sentence string, maxChars int) []string {
	if len(sentence) <= maxChars {
		return []string{sentence}
	}
	var pieces []string
	var current strings.Builder
	for _, word := range strings.Fields(sentence) {
		for len(word) > maxChars {
			if current.Len() > 0 {
				pieces = append(pieces, current.String())
				current.Reset()
			}
			cut := runeBoundary(word, maxChars)
			pieces = append(pieces, word[:cut])
			word = word[cut:]
		}
		if current.Len() > 0 && current.Len()+1+len(word) > maxChars {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

// runeBoundary returns the largest index <= limit that does not split a
// UTF-8 sequence.
func runeBoundary(s string, limit int) int {
	for limit > 0 && limit < len(s) && s[limit]&0xC0 == 0x80 {
		limit--
	}
	if limit == 0 {
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
	return limit
}
