package compositor

import (
	"image"
	"image/draw"

	"reelforge/internal/overlay"
)

// Composite alpha-blends ov over base in place at identity offset. A nil
// overlay leaves base untouched.
func Composite(base *image.RGBA, ov *overlay.Overlay) {
	if base == nil || ov == nil || ov.Image == nil {
		return
	}
	r := ov.Image.Bounds().Intersect(base.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(base, r, ov.Image, r.Min, draw.Over)
}
