// Package compositor blends caption overlays onto decoded video frames.
//
// Composite is the pure per-frame blend. Compositor pairs a caption timeline
// with an overlay cache to caption a frame at a timestamp, and Run drives a
// frame source through it into a frame sink in strict frame order, optionally
// fanning composition out across a bounded number of workers.
package compositor
