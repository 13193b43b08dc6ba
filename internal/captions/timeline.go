package captions

import "sort"

// Timeline is an ordered, contiguous caption sequence with time lookup. It is
// immutable after construction and safe for concurrent readers.
type Timeline struct {
	captions []Caption
}

// NewTimeline wraps captions, which must already be ordered by Start.
func NewTimeline(captions []Caption) *Timeline {
	return &Timeline{captions: append([]Caption(nil), captions...)}
}

// Len returns the number of captions.
func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.captions)
}

// Empty reports whether there is nothing to display.
func (t *Timeline) Empty() bool {
	return t.Len() == 0
}

// Captions returns a copy of the caption sequence.
func (t *Timeline) Captions() []Caption {
	if t == nil {
		return nil
	}
	return append([]Caption(nil), t.captions...)
}

// End returns the end time of the final caption, or zero when empty.
func (t *Timeline) End() float64 {
	if t.Empty() {
		return 0
	}
	return t.captions[len(t.captions)-1].End
}

// At returns the caption whose [Start, End) window contains ts. Timestamps at
// or beyond the final End clamp to the last caption and negative timestamps
// clamp to the first. The boolean is false only for an empty timeline.
func (t *Timeline) At(ts float64) (Caption, bool) {
	n := t.Len()
	if n == 0 {
		return Caption{}, false
	}
	idx := sort.Search(n, func(i int) bool { return t.captions[i].End > ts })
	if idx == n {
		idx = n - 1
	}
	return t.captions[idx], true
}

// DistinctTexts counts unique caption strings. This is the number of overlay
// rasterizations a full render performs.
func (t *Timeline) DistinctTexts() int {
	if t == nil {
		return 0
	}
	seen := make(map[string]struct{}, len(t.captions))
	for _, c := range t.captions {
		seen[c.Text] = struct{}{}
	}
	return len(seen)
}
