// Package textutil provides text cleanup helpers shared by the caption,
// narration, and output-naming code paths.
//
// Normalize folds narration text to Unicode NFC and collapses whitespace so
// caption measurement sees one canonical form of every glyph sequence.
// SanitizeFileName and SanitizeToken produce filesystem-safe names.
package textutil
