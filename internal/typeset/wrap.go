package typeset

import (
	"strings"

	"golang.org/x/image/font"
)

// Line is one wrapped line and its measured width including outline.
type Line struct {
	Text  string
	Width int
	// InkOffset is the distance from the drawing origin to the left edge of
	// the glyph ink. Renderers subtract it so ink starts exactly at the
	// line's left outline edge.
	InkOffset int
}

// Layout is the wrapped form of one caption string.
type Layout struct {
	Lines      []Line
	LineHeight int
	Ascent     int
	Outline    int
	MaxWidth   int
}

// Height returns the stacked height of all lines.
func (l Layout) Height() int {
	return len(l.Lines) * l.LineHeight
}

// MeasureWidth returns the rendered width of s including outline growth on
// both sides. Strings without visible glyphs measure zero.
func MeasureWidth(face font.Face, s string, outline int) int {
	width, _ := measure(face, s, outline)
	return width
}

func measure(face font.Face, s string, outline int) (width, inkOffset int) {
	bounds, _ := font.BoundString(face, s)
	if bounds.Empty() {
		return 0, 0
	}
	minX := bounds.Min.X.Floor()
	maxX := bounds.Max.X.Ceil()
	return maxX - minX + 2*outline, minX
}

// Wrap splits text on whitespace and greedily packs words into lines whose
// measured width stays within maxWidth. A word that alone exceeds maxWidth is
// placed on its own line unbroken.
func Wrap(face font.Face, text string, maxWidth, outline int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	lines := make([]string, 0, 2)
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if MeasureWidth(face, candidate, outline) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// Arrange wraps text and measures each resulting line.
func Arrange(face font.Face, text string, maxWidth, outline int) Layout {
	metrics := face.Metrics()
	layout := Layout{
		LineHeight: lineHeight(metrics, outline),
		Ascent:     metrics.Ascent.Ceil(),
		Outline:    outline,
		MaxWidth:   maxWidth,
	}
	for _, line := range Wrap(face, text, maxWidth, outline) {
		width, inkOffset := measure(face, line, outline)
		layout.Lines = append(layout.Lines, Line{Text: line, Width: width, InkOffset: inkOffset})
	}
	return layout
}

func lineHeight(m font.Metrics, outline int) int {
	h := (m.Ascent + m.Descent).Ceil()
	if m.Height > m.Ascent+m.Descent {
		h = m.Height.Ceil()
	}
	return h + 2*outline
}
