package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor converts "#RRGGBB" or "#RRGGBBAA" into an opaque or
// translucent RGBA color.
func ParseHexColor(value string) (color.RGBA, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 6 && len(trimmed) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", value)
	}
	raw, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", value)
	}
	if len(trimmed) == 6 {
		return color.RGBA{R: uint8(raw >> 16), G: uint8(raw >> 8), B: uint8(raw), A: 0xff}, nil
	}
	// Image colors are alpha-premultiplied.
	a := uint8(raw)
	premul := func(c uint8) uint8 { return uint8(uint16(c) * uint16(a) / 0xff) }
	return color.RGBA{R: premul(uint8(raw >> 24)), G: premul(uint8(raw >> 16)), B: premul(uint8(raw >> 8)), A: a}, nil
}

// FillRGBA returns the parsed caption fill color.
func (c Captions) FillRGBA() color.RGBA {
	parsed, err := ParseHexColor(c.FillColor)
	if err != nil {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return parsed
}

// OutlineRGBA returns the parsed caption outline color.
func (c Captions) OutlineRGBA() color.RGBA {
	parsed, err := ParseHexColor(c.OutlineColor)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return parsed
}
