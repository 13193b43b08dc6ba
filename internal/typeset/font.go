package typeset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"reelforge/internal/logging"
	"reelforge/internal/services"
)

// Font is a parsed caption font at a fixed pixel size. A nil vector font means
// the built-in bitmap face is used.
//
// Faces derived from vector fonts are not safe for concurrent use, so callers
// take a fresh face per render with NewFace.
type Font struct {
	name   string
	vector *opentype.Font
	size   float64
}

// Parse builds a Font from TrueType or OpenType data.
func Parse(name string, data []byte, size float64) (*Font, error) {
	if size <= 0 {
		return nil, fmt.Errorf("font size must be positive (got %v)", size)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", name, err)
	}
	return &Font{name: name, vector: parsed, size: size}, nil
}

// Load reads and parses the font file at path.
func Load(path string, size float64) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrResource, "typeset", "load font", "font file unreadable", err)
	}
	f, err := Parse(filepath.Base(path), data, size)
	if err != nil {
		return nil, services.Wrap(services.ErrResource, "typeset", "load font", "font file invalid", err)
	}
	return f, nil
}

// Builtin returns the embedded Go Bold font at size.
func Builtin(size float64) *Font {
	f, err := Parse("Go Bold", gobold.TTF, size)
	if err != nil {
		return Bitmap()
	}
	return f
}

// Bitmap returns the minimal 7x13 bitmap font used when no vector font can be
// loaded. Captions stay legible but small.
func Bitmap() *Font {
	return &Font{name: "basicfont 7x13", size: 13}
}

// Resolve picks the caption font for a render: the configured path when set,
// otherwise the embedded font. A configured font that cannot be loaded
// degrades to the bitmap font with a warning instead of failing the render.
func Resolve(path string, size float64, logger *slog.Logger) *Font {
	path = strings.TrimSpace(path)
	if path == "" {
		return Builtin(size)
	}
	f, err := Load(path, size)
	if err != nil {
		logging.WarnWithContext(logger, "caption font unavailable; using bitmap fallback", "font_fallback",
			logging.String("font_path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check captions.font_path"),
			logging.String(logging.FieldImpact, "captions render in the small bitmap font"),
		)
		return Bitmap()
	}
	return f
}

// Name returns a display name for logs and status output.
func (f *Font) Name() string {
	return f.name
}

// Size returns the font size in pixels.
func (f *Font) Size() float64 {
	return f.size
}

// IsBitmap reports whether the bitmap fallback is in use.
func (f *Font) IsBitmap() bool {
	return f.vector == nil
}

// NewFace returns a face for measuring and drawing. Close it when done.
func (f *Font) NewFace() (font.Face, error) {
	if f.vector == nil {
		return basicfont.Face7x13, nil
	}
	face, err := opentype.NewFace(f.vector, &opentype.FaceOptions{
		Size:    f.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face for %s: %w", f.name, err)
	}
	return face, nil
}
