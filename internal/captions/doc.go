// Package captions turns narration text into a contiguous timeline of
// display chunks aligned to the narration audio duration.
//
// Chunk splits text into sentences, spreads the audio duration evenly across
// them, and greedily groups neighbours until each group is on screen for at
// least the configured minimum. Timeline answers "which caption is active at
// time t" for the frame compositor, and WriteSRT exports the same timeline as
// a SubRip file.
package captions
