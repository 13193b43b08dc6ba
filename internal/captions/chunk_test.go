package captions

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
)

const tolerance = 1e-6

func TestChunkScenarioOneSentencePerCaption(t *testing.T) {
	got := Chunk("Yo chat. This is the GOAT move. No cap it slaps.", 6.0, 0.8)
	want := []Caption{
		{Text: "Yo chat.", Start: 0, End: 2},
		{Text: "This is the GOAT move.", Start: 2, End: 4},
		{Text: "No cap it slaps.", Start: 4, End: 6},
	}
	assertCaptions(t, got, want)
}

func TestChunkScenarioGroupsShortSentences(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "S%d. ", i)
	}
	got := Chunk(b.String(), 2.0, 0.8)
	want := []Caption{
		{Text: "S1. S2. S3. S4.", Start: 0, End: 0.8},
		{Text: "S5. S6. S7. S8.", Start: 0.8, End: 1.6},
		{Text: "S9. S10.", Start: 1.6, End: 2.0},
	}
	assertCaptions(t, got, want)
}

func TestChunkEmptyInputs(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		duration float64
	}{
		{"empty text", "", 5},
		{"whitespace", "   \n\t ", 5},
		{"only punctuation", "...!?!", 5},
		{"zero duration", "Hello there.", 0},
		{"negative duration", "Hello there.", -1},
		{"nan duration", "Hello there.", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Chunk(tt.text, tt.duration, 0.8); len(got) != 0 {
				t.Fatalf("expected no captions, got %+v", got)
			}
		})
	}
}

func TestChunkCollapsesDelimitersAndWhitespace(t *testing.T) {
	got := Chunk("Wait?! What...   no\nway!!! Fine", 4, 0)
	want := []Caption{
		{Text: "Wait.", Start: 0, End: 1},
		{Text: "What.", Start: 1, End: 2},
		{Text: "no way.", Start: 2, End: 3},
		{Text: "Fine.", Start: 3, End: 4},
	}
	assertCaptions(t, got, want)
}

func TestChunkSingleLongSentence(t *testing.T) {
	text := "This single sentence goes on and on without any terminal punctuation at all"
	got := Chunk(text, 0.5, 0.8)
	if len(got) != 1 {
		t.Fatalf("expected one caption, got %d", len(got))
	}
	if got[0].Start != 0 || math.Abs(got[0].End-0.5) > tolerance {
		t.Fatalf("unexpected window: %+v", got[0])
	}
	if got[0].Text != text+"." {
		t.Fatalf("unexpected text: %q", got[0].Text)
	}
}

func TestChunkIsDeterministic(t *testing.T) {
	text := "One. Two! Three? Four. Five."
	first := Chunk(text, 3.3, 0.8)
	second := Chunk(text, 3.3, 0.8)
	assertCaptions(t, second, first)
}

func TestChunkPropertiesHoldForRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 500; iter++ {
		n := 1 + rng.Intn(40)
		var b strings.Builder
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "word%d %s ", i, []string{".", "!", "?", "...", "?!"}[rng.Intn(5)])
		}
		duration := 0.1 + rng.Float64()*60
		minChunk := []float64{0, 0.8, 1.5, 3}[rng.Intn(4)]

		got := Chunk(b.String(), duration, minChunk)
		if len(got) == 0 {
			t.Fatalf("iteration %d: expected captions", iter)
		}
		if got[0].Start != 0 {
			t.Fatalf("iteration %d: first caption starts at %v", iter, got[0].Start)
		}
		if math.Abs(got[len(got)-1].End-duration) > tolerance {
			t.Fatalf("iteration %d: last caption ends at %v, want %v", iter, got[len(got)-1].End, duration)
		}
		perSentence := duration / float64(n)
		for i, c := range got {
			if c.End <= c.Start {
				t.Fatalf("iteration %d: caption %d has empty window %+v", iter, i, c)
			}
			if i+1 < len(got) {
				if got[i+1].Start != c.End {
					t.Fatalf("iteration %d: gap between %d and %d: %v != %v", iter, i, i+1, c.End, got[i+1].Start)
				}
				if perSentence < minChunk && c.Duration() < minChunk-tolerance {
					t.Fatalf("iteration %d: non-final caption %d shorter than minimum: %v", iter, i, c.Duration())
				}
			}
		}
	}
}

func assertCaptions(t *testing.T, got, want []Caption) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("caption count = %d, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Text != want[i].Text {
			t.Fatalf("caption %d text = %q, want %q", i, got[i].Text, want[i].Text)
		}
		if math.Abs(got[i].Start-want[i].Start) > tolerance || math.Abs(got[i].End-want[i].End) > tolerance {
			t.Fatalf("caption %d window = [%v, %v), want [%v, %v)", i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}
