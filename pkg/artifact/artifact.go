// Package artifact renders the single-purpose keepsakes built on the drawing
// surface: memory certificates, hanging-thread timelines and wheel reveals.
//
// Every generator draws through canvas.Surface in fixed layout units and
// scales the surface for print. Random decoration is drawn from a seeded
// source so the same request always produces the same pixels.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/xob0t/memoria/pkg/canvas"
	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/textlayout"
	"github.com/xob0t/memoria/pkg/theme"
)

// ErrNoPhotos is returned when a generator is given nothing to draw.
var ErrNoPhotos = errors.New("no photos to render")

// ErrUnknownOrientation is returned by ParseOrientation.
var ErrUnknownOrientation = errors.New("unknown orientation")

// ErrBadSelection is returned when a wheel's chosen photo is out of range.
var ErrBadSelection = errors.New("selected photo out of range")

// Orientation selects the portrait or landscape variant of an artifact.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// ParseOrientation accepts "portrait", "landscape" or "" (portrait).
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(s))) {
	case "", Portrait:
		return Portrait, nil
	case Landscape:
		return Landscape, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOrientation, s)
}

// PrintScale is the default output scale over layout units.
const PrintScale = 3

// DateLayout formats default dates.
const DateLayout = "January 2, 2006"

// Tagline closes certificates and thread footers.
const Tagline = "Memoria - Where Emotions Meet Memories"

// Output is one rendered artifact.
type Output struct {
	Image    image.Image
	Filename string
	Warnings []string
}

// Generator renders artifacts. It is safe for concurrent use.
type Generator struct {
	loader compositor.Loader
	fonts  *canvas.FontManager
	themes *theme.Registry
	scale  float64
	now    func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithFonts sets the font manager.
func WithFonts(fm *canvas.FontManager) Option {
	return func(g *Generator) { g.fonts = fm }
}

// WithThemes sets the theme registry.
func WithThemes(reg *theme.Registry) Option {
	return func(g *Generator) { g.themes = reg }
}

// WithScale overrides PrintScale. Previews use a scale below 1.
func WithScale(s float64) Option {
	return func(g *Generator) {
		if s > 0 {
			g.scale = s
		}
	}
}

// WithClock overrides the time source used for default dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New returns a generator that decodes photos through loader.
func New(loader compositor.Loader, opts ...Option) *Generator {
	g := &Generator{
		loader: loader,
		themes: theme.Default(),
		scale:  PrintScale,
		now:    time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// surface returns a canvas of w x h layout units, already scaled.
func (g *Generator) surface(w, h float64) canvas.Surface {
	surf := canvas.New(int(w*g.scale+0.5), int(h*g.scale+0.5), g.fonts)
	surf.Scale(g.scale, g.scale)
	return surf
}

func (g *Generator) theme(id string) (theme.Theme, error) {
	if id == "" {
		id = theme.DefaultID
	}
	return g.themes.Lookup(id)
}

func (g *Generator) today() string {
	return g.now().Format(DateLayout)
}

func (g *Generator) load(ctx context.Context, a media.Asset) (image.Image, error) {
	img, err := g.loader.Load(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", a.Name, err)
	}
	return img, nil
}

func finish(surf canvas.Surface) (image.Image, error) {
	if err := surf.Err(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return surf.Image(), nil
}

// drawLines fills laid-out lines in the current font and colour.
func drawLines(surf canvas.Surface, lines []textlayout.Line) {
	for _, l := range lines {
		if !l.Justified() {
			surf.FillText(l.Text, l.X, l.Y, l.Align)
			continue
		}
		for i, w := range l.Words {
			surf.FillText(w, l.WordX[i], l.Y, textlayout.AlignLeft)
		}
	}
}

// specks scatters n small squares across a w x h area.
func specks(surf canvas.Surface, rng *rand.Rand, n int, w, h float64, size func(r float64) float64) {
	for range n {
		x := rng.Float64() * w
		y := rng.Float64() * h
		s := size(rng.Float64())
		surf.FillRect(x, y, s, s)
	}
}

// fitInside scales an iw x ih image to fit maxW x maxH, keeping its aspect.
func fitInside(iw, ih, maxW, maxH float64) (w, h float64) {
	if iw <= 0 || ih <= 0 {
		return maxW, maxH
	}
	aspect := iw / ih
	if aspect > maxW/maxH {
		return maxW, maxW / aspect
	}
	return maxH * aspect, maxH
}

func imageSize(img image.Image) (float64, float64) {
	b := img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// capitalize upper-cases the first letter of s.
func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// heart traces a small heart of the given size centred on (cx, cy).
func heart(surf canvas.Surface, cx, cy, size float64) {
	const steps = 32
	for i := 0; i <= steps; i++ {
		hx, hy := layout.HeartPoint(float64(i) / steps * 2 * math.Pi)
		x := cx + hx/32*size
		y := cy - hy/32*size
		if i == 0 {
			surf.MoveTo(x, y)
		} else {
			surf.LineTo(x, y)
		}
	}
	surf.ClosePath()
	surf.Fill()
}

// sparkle traces a four-pointed star centred on (cx, cy).
func sparkle(surf canvas.Surface, cx, cy, r float64) {
	in := r * 0.3
	surf.MoveTo(cx, cy-r)
	surf.QuadTo(cx+in*0.3, cy-in*0.3, cx+r, cy)
	surf.QuadTo(cx+in*0.3, cy+in*0.3, cx, cy+r)
	surf.QuadTo(cx-in*0.3, cy+in*0.3, cx-r, cy)
	surf.QuadTo(cx-in*0.3, cy-in*0.3, cx, cy-r)
	surf.ClosePath()
	surf.Fill()
}
