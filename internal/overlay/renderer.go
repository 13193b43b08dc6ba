package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"reelforge/internal/typeset"
)

// Style controls caption placement and colors.
type Style struct {
	Outline         int
	BottomMargin    int
	SideMarginRatio float64
	Fill            color.Color
	Stroke          color.Color
}

// DefaultStyle mirrors the configuration defaults: white text with a 3px black
// outline, 100px above the bottom edge, 10% side margins.
func DefaultStyle() Style {
	return Style{
		Outline:         3,
		BottomMargin:    100,
		SideMarginRatio: 0.1,
		Fill:            color.White,
		Stroke:          color.Black,
	}
}

// Overlay is one rasterized caption. Image bounds are in frame coordinates.
type Overlay struct {
	Text   string
	Lines  []string
	Image  *image.RGBA
	Frame  image.Rectangle
	Bitmap bool
}

// Bounds returns the region of the frame the overlay may touch.
func (o *Overlay) Bounds() image.Rectangle {
	if o == nil || o.Image == nil {
		return image.Rectangle{}
	}
	return o.Image.Bounds()
}

// Renderer draws caption overlays for one frame size and font.
type Renderer struct {
	font   *typeset.Font
	frame  image.Rectangle
	style  Style
	fill   *image.Uniform
	stroke *image.Uniform
}

// NewRenderer validates the frame size and style.
func NewRenderer(f *typeset.Font, width, height int, style Style) (*Renderer, error) {
	if f == nil {
		return nil, errors.New("overlay renderer requires a font")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if style.Outline < 0 {
		return nil, fmt.Errorf("outline must be >= 0 (got %d)", style.Outline)
	}
	if style.SideMarginRatio < 0 || style.SideMarginRatio >= 0.5 {
		return nil, fmt.Errorf("side margin ratio must be in [0, 0.5) (got %v)", style.SideMarginRatio)
	}
	if style.Fill == nil {
		style.Fill = color.White
	}
	if style.Stroke == nil {
		style.Stroke = color.Black
	}
	return &Renderer{
		font:   f,
		frame:  image.Rect(0, 0, width, height),
		style:  style,
		fill:   image.NewUniform(style.Fill),
		stroke: image.NewUniform(style.Stroke),
	}, nil
}

// MaxLineWidth is the wrap budget: the frame width minus both side margins.
func (r *Renderer) MaxLineWidth() int {
	margin := int(math.Floor(float64(r.frame.Dx()) * r.style.SideMarginRatio))
	return r.frame.Dx() - 2*margin
}

// Render rasterizes text. Blank text yields a nil overlay. Rendering the same
// text twice produces pixel-identical images.
func (r *Renderer) Render(text string) (*Overlay, error) {
	face, err := r.font.NewFace()
	if err != nil {
		return nil, err
	}
	defer face.Close()

	layout := typeset.Arrange(face, text, r.MaxLineWidth(), r.style.Outline)
	if len(layout.Lines) == 0 {
		return nil, nil
	}

	placed := r.place(face, layout)
	var bounds image.Rectangle
	for _, pl := range placed {
		bounds = bounds.Union(pl.bounds)
	}
	bounds = bounds.Intersect(r.frame)
	if bounds.Empty() {
		return nil, nil
	}

	img := image.NewRGBA(bounds)
	lines := make([]string, len(placed))
	for i, pl := range placed {
		lines[i] = pl.text
		r.drawLine(img, face, pl.text, pl.originX, pl.baseline)
	}

	return &Overlay{
		Text:   text,
		Lines:  lines,
		Image:  img,
		Frame:  r.frame,
		Bitmap: r.font.IsBitmap(),
	}, nil
}

type placedLine struct {
	text     string
	originX  int
	baseline int
	// bounds covers the line slot and every pixel the stroke and fill can
	// touch, including glyph ink that rises above the ascent or falls below
	// the descent.
	bounds image.Rectangle
}

// place positions each wrapped line in frame coordinates. Lines stack upward
// from the bottom margin so long captions grow toward the middle of the frame
// instead of off the bottom edge.
func (r *Renderer) place(face font.Face, layout typeset.Layout) []placedLine {
	top := r.frame.Dy() - layout.Height() - r.style.BottomMargin
	if top < 0 {
		top = 0
	}
	placed := make([]placedLine, len(layout.Lines))
	for i, line := range layout.Lines {
		x := (r.frame.Dx() - line.Width) / 2
		y := top + i*layout.LineHeight
		pl := placedLine{
			text:     line.Text,
			originX:  x + layout.Outline - line.InkOffset,
			baseline: y + layout.Outline + layout.Ascent,
			bounds:   image.Rect(x, y, x+line.Width, y+layout.LineHeight),
		}
		if ink, _ := font.BoundString(face, line.Text); !ink.Empty() {
			o := layout.Outline
			pl.bounds = pl.bounds.Union(image.Rect(
				pl.originX+ink.Min.X.Floor()-o,
				pl.baseline+ink.Min.Y.Floor()-o,
				pl.originX+ink.Max.X.Ceil()+o,
				pl.baseline+ink.Max.Y.Ceil()+o,
			))
		}
		placed[i] = pl
	}
	return placed
}

// drawLine strokes the outline across the full square of offsets around the
// origin, then fills at the origin. Fill must come last or the stroke would
// cover it.
func (r *Renderer) drawLine(dst draw.Image, face font.Face, text string, x, y int) {
	d := &font.Drawer{Dst: dst, Face: face}
	o := r.style.Outline
	if o > 0 {
		d.Src = r.stroke
		for dy := -o; dy <= o; dy++ {
			for dx := -o; dx <= o; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				d.Dot = fixed.P(x+dx, y+dy)
				d.DrawString(text)
			}
		}
	}
	d.Src = r.fill
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
