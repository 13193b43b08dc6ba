package captions

import (
	"bytes"
	"testing"
)

func TestTimelineAt(t *testing.T) {
	tl := NewTimeline([]Caption{
		{Text: "A.", Start: 0, End: 1},
		{Text: "B.", Start: 1, End: 2.5},
		{Text: "C.", Start: 2.5, End: 3},
	})
	tests := []struct {
		ts   float64
		want string
	}{
		{-0.5, "A."},
		{0, "A."},
		{0.999, "A."},
		{1, "B."},
		{2.49, "B."},
		{2.5, "C."},
		{3, "C."},
		{3.0000001, "C."},
		{100, "C."},
	}
	for _, tt := range tests {
		got, ok := tl.At(tt.ts)
		if !ok {
			t.Fatalf("At(%v) reported no caption", tt.ts)
		}
		if got.Text != tt.want {
			t.Fatalf("At(%v) = %q, want %q", tt.ts, got.Text, tt.want)
		}
	}
}

func TestTimelineEmpty(t *testing.T) {
	tl := NewTimeline(nil)
	if !tl.Empty() || tl.Len() != 0 || tl.End() != 0 {
		t.Fatalf("expected empty timeline")
	}
	if _, ok := tl.At(1); ok {
		t.Fatal("expected no caption for empty timeline")
	}
	var nilTimeline *Timeline
	if !nilTimeline.Empty() || nilTimeline.DistinctTexts() != 0 {
		t.Fatal("nil timeline should behave as empty")
	}
}

func TestTimelineDistinctTexts(t *testing.T) {
	tl := NewTimeline([]Caption{
		{Text: "Again.", Start: 0, End: 1},
		{Text: "Other.", Start: 1, End: 2},
		{Text: "Again.", Start: 2, End: 3},
	})
	if got := tl.DistinctTexts(); got != 2 {
		t.Fatalf("DistinctTexts = %d, want 2", got)
	}
}

func TestTimelineCopiesInput(t *testing.T) {
	src := []Caption{{Text: "A.", Start: 0, End: 1}}
	tl := NewTimeline(src)
	src[0].Text = "mutated"
	if got, _ := tl.At(0); got.Text != "A." {
		t.Fatalf("timeline shares caller slice: %q", got.Text)
	}
}

func TestWriteSRT(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSRT(&buf, []Caption{
		{Text: "Yo chat.", Start: 0, End: 2},
		{Text: "Later.", Start: 3661.5, End: 3662.0004},
	})
	if err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:02,000\nYo chat.\n\n" +
		"2\n01:01:01,500 --> 01:01:02,000\nLater.\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected srt:\n%s\nwant:\n%s", buf.String(), want)
	}
}
