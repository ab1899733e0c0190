package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/xob0t/memoria/pkg/textlayout"
)

// blit draws img into the user-space box (x, y, w, h) under the current
// transform, shifted by (dx, dy) device pixels.
func (s *ggSurface) blit(img image.Image, x, y, w, h, dx, dy float64) {
	if s.st.alpha <= 0 {
		return
	}
	m := s.dc.GetTransform()
	k := scaleFactor(m)
	b := deviceBounds(m, rectCorners(x, y, w, h)).Add(image.Pt(int(math.Floor(dx)), int(math.Floor(dy))))
	b = b.Intersect(image.Rect(0, 0, s.Width(), s.Height()))
	if b.Empty() {
		return
	}

	// Downscale large sources first; the affine sampler is bilinear and
	// aliases on strong reductions.
	src := img
	tw, th := int(math.Ceil(w*k)), int(math.Ceil(h*k))
	if sb := src.Bounds(); tw > 0 && th > 0 && (sb.Dx() > 2*tw || sb.Dy() > 2*th) {
		src = imaging.Resize(src, tw, th, imaging.Lanczos)
	}

	sb := src.Bounds()
	sx := w / float64(sb.Dx())
	sy := h / float64(sb.Dy())
	ux := x - float64(sb.Min.X)*sx
	uy := y - float64(sb.Min.Y)*sy
	ox, oy := float64(b.Min.X), float64(b.Min.Y)

	s2d := f64.Aff3{
		m.A * sx, m.B * sy, m.A*ux + m.B*uy + m.C + dx - ox,
		m.D * sx, m.E * sy, m.D*ux + m.E*uy + m.F + dy - oy,
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.BiLinear.Transform(dst, s2d, src, sb, xdraw.Over, nil)

	s.composite(dst, ox, oy, s.st.alpha)
}

// composite draws a device-space layer at (ox, oy) with the identity
// transform.
func (s *ggSurface) composite(layer image.Image, ox, oy, opacity float64) {
	if opacity <= 0 {
		return
	}
	buf := gg.ImageBufFromImage(imaging.Clone(layer))
	s.dc.Push()
	s.dc.Identity()
	s.dc.DrawImageEx(buf, gg.DrawImageOptions{
		X:         ox,
		Y:         oy,
		Opacity:   opacity,
		BlendMode: gg.BlendNormal,
	})
	s.dc.Pop()
}

// shadowFor rasterizes the shape built by build in the shadow colour,
// blurs it and composites it under where the shape will be drawn.
func (s *ggSurface) shadowFor(corners [4]gg.Point, build func(dc *gg.Context)) {
	sh := s.st.shadow
	m := s.dc.GetTransform()
	k := scaleFactor(m)
	sigma := sh.Blur * k / 2
	pad := int(math.Ceil(sigma*3)) + 2

	b := deviceBounds(m, corners).Inset(-pad)
	b = b.Intersect(image.Rect(-pad, -pad, s.Width()+pad, s.Height()+pad))
	if b.Empty() {
		return
	}

	layer := gg.NewContext(b.Dx(), b.Dy())
	defer layer.Close()
	layer.SetTransform(gg.Translate(-float64(b.Min.X), -float64(b.Min.Y)).Multiply(m))
	build(layer)
	layer.SetFillBrush(gg.Solid(s.withAlpha(sh.Color)))
	s.check(layer.Fill())

	var img image.Image = layer.Image()
	if sigma > 0 {
		img = imaging.Blur(img, sigma)
	}
	s.composite(img, float64(b.Min.X)+sh.OffsetX*k, float64(b.Min.Y)+sh.OffsetY*k, 1)
}

// drawText renders str on a device-resolution layer and blits it through
// the current transform, so rotated and scaled text stays sharp.
func (s *ggSurface) drawText(str string, x, y float64, align textlayout.Align) {
	m := s.dc.GetTransform()
	k := scaleFactor(m)
	if k == 0 {
		return
	}

	f := s.st.font
	f.Size *= k
	face, err := s.fonts.Face(f)
	if err != nil {
		s.check(err)
		return
	}
	met := face.Metrics()
	advance := face.Advance(str)

	sh := s.st.shadow
	pad := 2.0
	if sh.active() {
		pad += math.Ceil(sh.Blur * k * 1.5)
	}
	lw := int(math.Ceil(advance + 2*pad))
	lh := int(math.Ceil(met.Ascent + met.Descent + 2*pad))
	if lw <= 0 || lh <= 0 {
		return
	}

	layer := gg.NewContext(lw, lh)
	defer layer.Close()
	layer.SetFont(face)
	layer.SetColor(s.st.fill)
	layer.DrawString(str, pad, pad+met.Ascent)
	glyphs := layer.Image()

	width := advance / k
	left := x
	switch align {
	case textlayout.AlignCenter:
		left -= width / 2
	case textlayout.AlignRight:
		left -= width
	}
	ux := left - pad/k
	uy := y - (met.Ascent+pad)/k
	uw := float64(lw) / k
	uh := float64(lh) / k

	if sh.active() {
		shadow := tint(glyphs, sh.Color)
		if sigma := sh.Blur * k / 2; sigma > 0 {
			shadow = imaging.Blur(shadow, sigma)
		}
		s.blit(shadow, ux, uy, uw, uh, sh.OffsetX*k, sh.OffsetY*k)
	}
	s.blit(glyphs, ux, uy, uw, uh, 0, 0)
}

// tint replaces the colour of every pixel with c, keeping coverage.
func tint(img image.Image, c color.Color) *image.NRGBA {
	src := imaging.Clone(img)
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	for i := 0; i < len(src.Pix); i += 4 {
		a := uint32(src.Pix[i+3]) * uint32(n.A) / 255
		src.Pix[i+0] = n.R
		src.Pix[i+1] = n.G
		src.Pix[i+2] = n.B
		src.Pix[i+3] = uint8(a)
	}
	return src
}

// deviceBounds returns the integer device rectangle covering the
// transformed corners.
func deviceBounds(m gg.Matrix, corners [4]gg.Point) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := m.TransformPoint(c)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}
