package textsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"reelforge/internal/services"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Shortest Paths Explained</title></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Shortest Paths Explained</h1>
<p>Dijkstra's algorithm finds the shortest path from one node to every other node in a weighted graph.
It keeps a priority queue of tentative distances and repeatedly settles the closest unsettled node.
Each settled node relaxes the edges leaving it, which may shorten the tentative distance of its neighbours.</p>
<p>The algorithm requires non-negative edge weights. With a binary heap the running time is
proportional to the number of edges times the logarithm of the number of vertices, which makes it
practical for road networks, routing tables and many puzzle solvers that appear in programming contests.</p>
<p>When weights can be negative, Bellman-Ford is the usual replacement. It is slower but detects
negative cycles, which Dijkstra cannot handle at all, and it is simple enough to implement from memory.</p>
</article>
<footer>Copyright notice</footer>
</body></html>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClassify(t *testing.T) {
	tests := []struct {
		source string
		want   Kind
	}{
		{"notes.txt", KindText},
		{"notes", KindText},
		{"README.md", KindMarkdown},
		{"lecture.PDF", KindPDF},
		{"page.htm", KindHTML},
		{"https://example.com/post", KindURL},
		{"http://example.com/post.pdf", KindURL},
	}
	for _, tt := range tests {
		got, err := Classify(tt.source)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tt.source, err)
		}
		if got != tt.want {
			t.Fatalf("Classify(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
	if _, err := Classify("slides.pptx"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unsupported type, got %v", err)
	}
}

func TestExtractPlainText(t *testing.T) {
	path := writeFile(t, "lecture.txt", "  Graphs   are\n\nfun.  Trees too.  ")
	doc, err := New(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Text != "Graphs are fun. Trees too." {
		t.Fatalf("text = %q", doc.Text)
	}
	if doc.Title != "lecture" || doc.Kind != KindText {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestExtractMarkdown(t *testing.T) {
	md := "# Heaps\n\nA **heap** keeps the _smallest_ item on top.\n\n```go\nh.Push(x)\n```\n\n- See [the docs](https://go.dev/pkg/container/heap) for more.\n"
	doc, err := New(nil).Extract(context.Background(), writeFile(t, "heaps.md", md))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "Heaps. A heap keeps the smallest item on top. h.Push(x) See the docs for more."
	if doc.Text != want {
		t.Fatalf("text = %q, want %q", doc.Text, want)
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	_, err := New(nil).Extract(context.Background(), writeFile(t, "empty.txt", " \n\t"))
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := New(nil).Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("expected resource error, got %v", err)
	}
}

func TestExtractHTMLFile(t *testing.T) {
	doc, err := New(nil).Extract(context.Background(), writeFile(t, "page.html", articleHTML))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(doc.Text, "priority queue of tentative distances") {
		t.Fatalf("article body missing from %q", doc.Text)
	}
	if doc.Title != "Shortest Paths Explained" {
		t.Fatalf("title = %q", doc.Title)
	}
}

func TestExtractURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	extractor := New(nil)
	extractor.Client = server.Client()

	doc, err := extractor.Extract(context.Background(), server.URL+"/post")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Kind != KindURL || !strings.Contains(doc.Text, "Bellman-Ford") {
		t.Fatalf("unexpected document %+v", doc)
	}

	if _, err := extractor.Extract(context.Background(), server.URL+"/missing"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error for 404, got %v", err)
	}
}

func TestExtractPDFUsesPDFToText(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	stub := writeFile(t, "pdftotext", "#!/bin/sh\nprintf 'Page one text.\\n\\fPage two text.\\n'\n")
	if err := os.Chmod(stub, 0o755); err != nil {
		t.Fatal(err)
	}
	extractor := New(nil)
	extractor.PDFToText = stub

	doc, err := extractor.Extract(context.Background(), writeFile(t, "lecture.pdf", "%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Text != "Page one text. Page two text." {
		t.Fatalf("text = %q", doc.Text)
	}
}

func TestExtractPDFFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	stub := writeFile(t, "pdftotext", "#!/bin/sh\necho 'Syntax Error: Couldn'\"'\"'t find trailer dictionary' >&2\nexit 1\n")
	if err := os.Chmod(stub, 0o755); err != nil {
		t.Fatal(err)
	}
	extractor := New(nil)
	extractor.PDFToText = stub

	_, err := extractor.Extract(context.Background(), writeFile(t, "broken.pdf", "junk"))
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "trailer dictionary") {
		t.Fatalf("expected pdftotext failure with stderr, got %v", err)
	}
}
