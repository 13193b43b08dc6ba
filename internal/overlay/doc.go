// Package overlay rasterizes caption text into transparent images positioned
// in frame coordinates, and memoizes them per caption string for the length
// of one render.
//
// An Overlay's image bounds are the caption's ink rectangle inside the frame,
// not the whole frame, so compositing is a straight draw at identity offset
// and unused transparent pixels are never stored.
package overlay
