// Package canvas provides the 2D drawing surface used by the compositor and
// the artifact generators.
//
// Surface mirrors the small subset of an HTML canvas that the renderers need:
// a transform stack, solid and gradient fills, rounded rectangles, paths,
// drop shadows, images and text. New returns the gg-backed implementation.
package canvas

import (
	"image"
	"image/color"

	"github.com/xob0t/memoria/pkg/textlayout"
)

// Surface is a stateful 2D drawing target. Coordinates are user units under
// the current transform. Drawing errors are sticky and reported by Err.
type Surface interface {
	textlayout.Measurer

	// Width and Height report the pixel size of the backing image.
	Width() int
	Height() int

	// Save pushes transform, fill, alpha, shadow, line width and font.
	Save()
	// Restore pops the state pushed by the matching Save.
	Restore()

	Translate(x, y float64)
	// Rotate turns the coordinate system clockwise by deg degrees.
	Rotate(deg float64)
	Scale(sx, sy float64)

	SetColor(c color.Color)
	SetHexColor(hex string)
	SetLinearGradient(x0, y0, x1, y1 float64, stops ...Stop)
	SetRadialGradient(cx, cy, r0, r1 float64, stops ...Stop)
	// SetAlpha sets the global alpha multiplied into every draw.
	SetAlpha(a float64)
	SetLineWidth(w float64)
	SetShadow(s Shadow)
	ClearShadow()

	FillRect(x, y, w, h float64)
	StrokeRect(x, y, w, h float64)
	FillRoundedRect(x, y, w, h, r float64)
	StrokeRoundedRect(x, y, w, h, r float64)
	FillCircle(cx, cy, r float64)
	StrokeCircle(cx, cy, r float64)

	// Path building for curves and rules. Fill and Stroke consume the path.
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadTo(cx, cy, x, y float64)
	ClosePath()
	Fill()
	Stroke()

	// DrawImage draws img scaled to fill the w x h box at (x, y).
	DrawImage(img image.Image, x, y, w, h float64)

	SetFont(f Font)
	// FillText draws s with its baseline at y, anchored at x by align.
	FillText(s string, x, y float64, align textlayout.Align)

	// Image returns the rendered pixels.
	Image() image.Image
	Err() error
	Close() error
}

// Stop is one gradient colour stop.
type Stop struct {
	Offset float64
	Color  color.Color
}

// Shadow describes a canvas-style drop shadow. Blur and offsets are in user
// units; the offset is not rotated with the transform.
type Shadow struct {
	Color   color.Color
	Blur    float64
	OffsetX float64
	OffsetY float64
}

func (s Shadow) active() bool {
	if s.Color == nil {
		return false
	}
	_, _, _, a := s.Color.RGBA()
	return a > 0
}

// Font selects a face by family, size and style.
type Font struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}
