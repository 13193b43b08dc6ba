// Package typeset loads caption fonts and word-wraps caption text to a pixel
// budget.
//
// Widths always include the outline stroke on both sides, measured from the
// glyph ink box, so a line that fits here still fits once the overlay renderer
// strokes and fills it. Wrapping is greedy on whitespace; a single word wider
// than the budget gets its own line rather than being split.
package typeset
