package textsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"reelforge/internal/logging"
	"reelforge/internal/services"
	"reelforge/internal/textutil"
)

// Kind classifies a source document.
type Kind string

const (
	KindText     Kind = "text"
	KindMarkdown Kind = "markdown"
	KindPDF      Kind = "pdf"
	KindHTML     Kind = "html"
	KindURL      Kind = "url"
)

const (
	defaultPDFToText = "pdftotext"
	fetchTimeout     = 30 * time.Second
	maxHTMLBytes     = 10 << 20
	stage            = "extract"
)

// Document is extracted narration input.
type Document struct {
	Source string
	Kind   Kind
	Title  string
	Text   string
}

// Extractor reads documents of any supported kind.
type Extractor struct {
	PDFToText string
	Client    *http.Client
	logger    *slog.Logger
}

// New returns an Extractor that uses pdftotext from PATH.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{
		PDFToText: defaultPDFToText,
		Client:    &http.Client{Timeout: fetchTimeout},
		logger:    logging.NewComponentLogger(logger, "textsource"),
	}
}

// Classify reports how source would be read.
func Classify(source string) (Kind, error) {
	source = strings.TrimSpace(source)
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return KindURL, nil
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".txt", ".text", "":
		return KindText, nil
	case ".md", ".markdown":
		return KindMarkdown, nil
	case ".pdf":
		return KindPDF, nil
	case ".html", ".htm":
		return KindHTML, nil
	}
	return "", services.Wrap(services.ErrValidation, stage, "classify",
		fmt.Sprintf("unsupported document type %q", filepath.Ext(source)), nil)
}

// Extract reads source and returns its normalized text. A document with no
// usable text is an ErrInput failure.
func (e *Extractor) Extract(ctx context.Context, source string) (Document, error) {
	source = strings.TrimSpace(source)
	kind, err := Classify(source)
	if err != nil {
		return Document{}, err
	}
	doc := Document{Source: source, Kind: kind}

	var raw string
	switch kind {
	case KindURL:
		doc.Title, raw, err = e.fetchArticle(ctx, source)
	case KindHTML:
		doc.Title, raw, err = e.readHTMLFile(source)
	case KindPDF:
		raw, err = e.runPDFToText(ctx, source)
	case KindMarkdown:
		raw, err = readFile(source)
		raw = stripMarkdown(raw)
	default:
		raw, err = readFile(source)
	}
	if err != nil {
		return Document{}, err
	}

	doc.Text = textutil.Normalize(raw)
	if doc.Text == "" {
		return Document{}, services.Wrap(services.ErrInput, stage, string(kind), "document has no extractable text", nil)
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	e.logger.Info("document extracted",
		logging.String("source", source),
		logging.String("kind", string(kind)),
		logging.Int("chars", len([]rune(doc.Text))),
	)
	return doc, nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrResource, stage, "read", path, err)
	}
	return string(data), nil
}

func (e *Extractor) runPDFToText(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrResource, stage, "read", path, err)
	}
	binary := e.PDFToText
	if binary == "" {
		binary = defaultPDFToText
	}
	cmd := exec.CommandContext(ctx, binary, "-enc", "UTF-8", "-nopgbrk", path, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", services.Wrap(services.ErrExternalTool, stage, "pdftotext", "pdftotext not found; install poppler-utils", err)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = "pdftotext failed"
		}
		return "", services.Wrap(services.ErrExternalTool, stage, "pdftotext", detail, err)
	}
	return stdout.String(), nil
}

func (e *Extractor) readHTMLFile(path string) (string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", services.Wrap(services.ErrResource, stage, "read", path, err)
	}
	defer f.Close()
	abs, _ := filepath.Abs(path)
	return parseArticle(io.LimitReader(f, maxHTMLBytes), &url.URL{Scheme: "file", Path: abs})
}

func (e *Extractor) fetchArticle(ctx context.Context, source string) (string, string, error) {
	pageURL, err := url.Parse(source)
	if err != nil {
		return "", "", services.Wrap(services.ErrValidation, stage, "fetch", source, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", "", services.Wrap(services.ErrValidation, stage, "fetch", source, err)
	}
	req.Header.Set("User-Agent", "reelforge/1.0")
	client := e.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", services.Wrap(services.ErrExternalTool, stage, "fetch", source, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", services.Wrap(services.ErrExternalTool, stage, "fetch",
			fmt.Sprintf("%s returned %s", source, resp.Status), nil)
	}
	return parseArticle(io.LimitReader(resp.Body, maxHTMLBytes), pageURL)
}

func parseArticle(r io.Reader, pageURL *url.URL) (string, string, error) {
	article, err := readability.FromReader(r, pageURL)
	if err != nil {
		return "", "", services.Wrap(services.ErrInput, stage, "readability", "page has no readable article", err)
	}
	return strings.TrimSpace(article.Title), article.TextContent, nil
}

var (
	markdownFence    = regexp.MustCompile("(?m)^\\s*(```|~~~).*$")
	markdownPrefix   = regexp.MustCompile(`(?m)^\s*(#{1,6}|>+|[-*+]|\d+[.)])\s+`)
	markdownLink     = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	markdownEmphasis = regexp.MustCompile("[*_`]{1,3}")
)

// stripMarkdown drops markup so it is neither narrated nor captioned. Headings
// become sentences of their own.
func stripMarkdown(text string) string {
	text = markdownFence.ReplaceAllString(text, "")
	text = markdownLink.ReplaceAllString(text, "$1")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		heading := strings.HasPrefix(strings.TrimSpace(line), "#")
		line = markdownPrefix.ReplaceAllString(line, "")
		line = markdownEmphasis.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if heading && line != "" && !strings.ContainsAny(line[len(line)-1:], ".!?") {
			line += "."
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
