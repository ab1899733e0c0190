package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"

	"github.com/xob0t/memoria/pkg/textlayout"
)

// ggSurface implements Surface on a gg.Context. gg applies the transform to
// path points only, so rounded rectangles, images and text are routed
// through transform-aware helpers here.
type ggSurface struct {
	dc    *gg.Context
	fonts *FontManager

	st    state
	stack []state
	err   error
}

type state struct {
	fill      color.Color
	brush     gg.Brush // gradient, overrides fill
	alpha     float64
	lineWidth float64
	shadow    Shadow
	font      Font
}

// New returns a transparent w x h surface. fonts may be nil, in which case
// the embedded Go fonts are used.
func New(w, h int, fonts *FontManager) Surface {
	if fonts == nil {
		fonts = DefaultFonts()
	}
	return &ggSurface{
		dc:    gg.NewContext(w, h),
		fonts: fonts,
		st: state{
			fill:      color.Black,
			alpha:     1,
			lineWidth: 1,
			font:      Font{Family: "sans-serif", Size: 16},
		},
	}
}

func (s *ggSurface) Width() int  { return s.dc.Width() }
func (s *ggSurface) Height() int { return s.dc.Height() }

func (s *ggSurface) Save() {
	s.dc.Push()
	s.stack = append(s.stack, s.st)
}

func (s *ggSurface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.dc.Pop()
	s.st = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *ggSurface) Translate(x, y float64) { s.dc.Translate(x, y) }
func (s *ggSurface) Rotate(deg float64)     { s.dc.Rotate(deg * math.Pi / 180) }
func (s *ggSurface) Scale(sx, sy float64)   { s.dc.Scale(sx, sy) }

func (s *ggSurface) SetColor(c color.Color) {
	s.st.fill = c
	s.st.brush = nil
}

func (s *ggSurface) SetHexColor(hex string) {
	s.SetColor(MustColor(hex))
}

// SetLinearGradient takes user-space end points; gg brushes sample in device
// space, so the points are transformed now.
func (s *ggSurface) SetLinearGradient(x0, y0, x1, y1 float64, stops ...Stop) {
	m := s.dc.GetTransform()
	p0 := m.TransformPoint(gg.Pt(x0, y0))
	p1 := m.TransformPoint(gg.Pt(x1, y1))
	b := gg.NewLinearGradientBrush(p0.X, p0.Y, p1.X, p1.Y)
	for _, st := range stops {
		b.AddColorStop(st.Offset, s.withAlpha(st.Color))
	}
	s.st.brush = b
}

func (s *ggSurface) SetRadialGradient(cx, cy, r0, r1 float64, stops ...Stop) {
	m := s.dc.GetTransform()
	c := m.TransformPoint(gg.Pt(cx, cy))
	k := scaleFactor(m)
	b := gg.NewRadialGradientBrush(c.X, c.Y, r0*k, r1*k)
	for _, st := range stops {
		b.AddColorStop(st.Offset, s.withAlpha(st.Color))
	}
	s.st.brush = b
}

func (s *ggSurface) SetAlpha(a float64)     { s.st.alpha = math.Max(0, math.Min(1, a)) }
func (s *ggSurface) SetLineWidth(w float64) { s.st.lineWidth = w }
func (s *ggSurface) SetShadow(sh Shadow)    { s.st.shadow = sh }
func (s *ggSurface) ClearShadow()           { s.st.shadow = Shadow{} }

// ── Shapes ──

func (s *ggSurface) FillRect(x, y, w, h float64) {
	s.fillShape(x, y, w, h, func(dc *gg.Context) { dc.DrawRectangle(x, y, w, h) })
}

func (s *ggSurface) StrokeRect(x, y, w, h float64) {
	s.dc.DrawRectangle(x, y, w, h)
	s.stroke()
}

func (s *ggSurface) FillRoundedRect(x, y, w, h, r float64) {
	s.fillShape(x, y, w, h, func(dc *gg.Context) { roundedRect(dc, x, y, w, h, r) })
}

func (s *ggSurface) StrokeRoundedRect(x, y, w, h, r float64) {
	roundedRect(s.dc, x, y, w, h, r)
	s.stroke()
}

func (s *ggSurface) FillCircle(cx, cy, r float64) {
	s.fillShape(cx-r, cy-r, 2*r, 2*r, func(dc *gg.Context) { dc.DrawCircle(cx, cy, r) })
}

func (s *ggSurface) StrokeCircle(cx, cy, r float64) {
	s.dc.DrawCircle(cx, cy, r)
	s.stroke()
}

// roundedRect builds the outline through MoveTo/LineTo/QuadraticTo so that
// the current transform applies to every point.
func roundedRect(dc *gg.Context, x, y, w, h, r float64) {
	r = math.Max(0, math.Min(r, math.Min(w, h)/2))
	if r == 0 {
		dc.DrawRectangle(x, y, w, h)
		return
	}
	dc.MoveTo(x+r, y)
	dc.LineTo(x+w-r, y)
	dc.QuadraticTo(x+w, y, x+w, y+r)
	dc.LineTo(x+w, y+h-r)
	dc.QuadraticTo(x+w, y+h, x+w-r, y+h)
	dc.LineTo(x+r, y+h)
	dc.QuadraticTo(x, y+h, x, y+h-r)
	dc.LineTo(x, y+r)
	dc.QuadraticTo(x, y, x+r, y)
	dc.ClosePath()
}

// ── Paths ──

func (s *ggSurface) MoveTo(x, y float64)         { s.dc.MoveTo(x, y) }
func (s *ggSurface) LineTo(x, y float64)         { s.dc.LineTo(x, y) }
func (s *ggSurface) QuadTo(cx, cy, x, y float64) { s.dc.QuadraticTo(cx, cy, x, y) }
func (s *ggSurface) ClosePath()                  { s.dc.ClosePath() }

func (s *ggSurface) Fill() {
	s.applyPaint()
	s.check(s.dc.Fill())
}

func (s *ggSurface) Stroke() { s.stroke() }

func (s *ggSurface) stroke() {
	s.applyPaint()
	s.dc.SetLineWidth(s.st.lineWidth)
	s.check(s.dc.Stroke())
}

// fillShape paints the shadow for the shape's user-space box, then the shape.
func (s *ggSurface) fillShape(x, y, w, h float64, build func(dc *gg.Context)) {
	if s.st.shadow.active() {
		s.shadowFor(rectCorners(x, y, w, h), build)
	}
	build(s.dc)
	s.applyPaint()
	s.check(s.dc.Fill())
}

func (s *ggSurface) applyPaint() {
	if s.st.brush != nil {
		s.dc.SetFillBrush(s.st.brush)
		return
	}
	s.dc.SetFillBrush(gg.Solid(s.withAlpha(s.st.fill)))
}

// withAlpha converts c to a gg colour with the global alpha applied.
func (s *ggSurface) withAlpha(c color.Color) gg.RGBA {
	col := gg.FromColor(c)
	col.A *= s.st.alpha
	return col
}

// ── Images and text ──

func (s *ggSurface) DrawImage(img image.Image, x, y, w, h float64) {
	if img == nil || w <= 0 || h <= 0 {
		return
	}
	if s.st.shadow.active() {
		s.shadowFor(rectCorners(x, y, w, h), func(dc *gg.Context) { dc.DrawRectangle(x, y, w, h) })
	}
	s.blit(img, x, y, w, h, 0, 0)
}

func (s *ggSurface) SetFont(f Font) { s.st.font = f }

// MeasureWidth returns the advance of str in user units for the current font.
func (s *ggSurface) MeasureWidth(str string) float64 {
	face, err := s.fonts.Face(s.st.font)
	if err != nil {
		s.check(err)
		return 0
	}
	return face.Advance(str)
}

func (s *ggSurface) FillText(str string, x, y float64, align textlayout.Align) {
	if str == "" {
		return
	}
	s.drawText(str, x, y, align)
}

func (s *ggSurface) Image() image.Image { return s.dc.Image() }

func (s *ggSurface) Err() error { return s.err }

func (s *ggSurface) check(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

// Close releases the gg context.
func (s *ggSurface) Close() error {
	return s.dc.Close()
}

func scaleFactor(m gg.Matrix) float64 {
	return math.Sqrt(math.Abs(m.A*m.E - m.B*m.D))
}

func rectCorners(x, y, w, h float64) [4]gg.Point {
	return [4]gg.Point{gg.Pt(x, y), gg.Pt(x+w, y), gg.Pt(x+w, y+h), gg.Pt(x, y+h)}
}
