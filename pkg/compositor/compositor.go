// Package compositor flattens a scene.Composition into one raster image.
//
// Rendering follows a layered approach: the background first, then every
// visible item in z order. Photos get a shadowed white border and an
// optional theme-coloured outline; text items get an optional background
// box, a shadow and an underline.
package compositor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/canvas"
	"github.com/xob0t/memoria/pkg/generator"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/scene"
	"github.com/xob0t/memoria/pkg/theme"
)

// ErrNothingToRender is returned by Export when no item is visible.
var ErrNothingToRender = errors.New("nothing to render")

// DefaultSupersample is the output scale relative to composition units.
const DefaultSupersample = 2

// Renderer draws compositions.
type Renderer struct {
	loader      Loader
	fonts       *canvas.FontManager
	themes      *theme.Registry
	supersample float64
	quality     int
	now         func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSupersample sets the output scale factor.
func WithSupersample(s float64) Option {
	return func(r *Renderer) {
		if s > 0 {
			r.supersample = s
		}
	}
}

// WithFonts sets the font manager. The embedded fonts are used otherwise.
func WithFonts(fm *canvas.FontManager) Option {
	return func(r *Renderer) { r.fonts = fm }
}

// WithThemes sets the theme registry. The default registry is used otherwise.
func WithThemes(reg *theme.Registry) Option {
	return func(r *Renderer) { r.themes = reg }
}

// WithQuality sets the JPEG export quality.
func WithQuality(q int) Option {
	return func(r *Renderer) { r.quality = q }
}

// WithClock overrides the time source used for filenames.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// NewRenderer creates a renderer that decodes assets through loader.
func NewRenderer(loader Loader, opts ...Option) *Renderer {
	r := &Renderer{
		loader:      loader,
		supersample: DefaultSupersample,
		quality:     generator.DefaultQuality,
		themes:      theme.Default(),
		now:         time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Result is an encoded export.
type Result struct {
	Data     []byte
	Filename string
	MIME     string
	Warnings []string
}

// Render draws comp and returns the flattened image. Assets that fail to
// load are skipped and reported in the returned warnings.
func (r *Renderer) Render(ctx context.Context, comp *scene.Composition, assets []media.Asset) (image.Image, []string, error) {
	var th *theme.Theme
	if comp.Theme != "" {
		t, err := r.themes.Lookup(comp.Theme)
		if err != nil {
			return nil, nil, err
		}
		th = &t
	}

	s := r.supersample
	w := int(float64(comp.Width)*s + 0.5)
	h := int(float64(comp.Height)*s + 0.5)
	if w <= 0 || h <= 0 {
		return nil, nil, fmt.Errorf("invalid canvas size %dx%d", comp.Width, comp.Height)
	}

	surf := canvas.New(w, h, r.fonts)
	defer surf.Close()
	surf.Scale(s, s)

	drawBackground(surf, comp, th)

	cache := newImageCache(r.loader, assets)
	var warnings []string

	for _, it := range comp.Ordered() {
		if err := ctx.Err(); err != nil {
			return nil, warnings, err
		}

		switch it.Kind {
		case scene.KindPhoto:
			if it.Photo == nil {
				continue
			}
			img, err := cache.get(ctx, it.Photo.AssetID)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"item":  it.ID,
					"asset": it.Photo.AssetID,
					"error": err,
				}).Warn("Skipping photo that failed to load")
				warnings = append(warnings, fmt.Sprintf("item %s: %v", it.ID, err))
				continue
			}
			drawPhoto(surf, it, img, comp.Settings, th)
		case scene.KindText:
			if it.Text == nil {
				continue
			}
			drawText(surf, it)
		}
	}

	if err := surf.Err(); err != nil {
		return nil, warnings, fmt.Errorf("render: %w", err)
	}
	return surf.Image(), warnings, nil
}

// Export renders comp and encodes it. It declines with ErrNothingToRender
// when no item is visible.
func (r *Renderer) Export(ctx context.Context, comp *scene.Composition, assets []media.Asset, f generator.Format) (*Result, error) {
	if !comp.HasVisible() {
		return nil, ErrNothingToRender
	}
	img, warnings, err := r.Render(ctx, comp, assets)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := generator.Encode(&buf, img, f, r.quality); err != nil {
		return nil, err
	}
	return &Result{
		Data:     buf.Bytes(),
		Filename: SuggestFilename(Collage, "", "", r.now(), f.Ext()),
		MIME:     f.MIME(),
		Warnings: warnings,
	}, nil
}

func drawBackground(surf canvas.Surface, comp *scene.Composition, th *theme.Theme) {
	w, h := float64(comp.Width), float64(comp.Height)
	if th != nil {
		surf.SetLinearGradient(0, 0, w, h, th.BackgroundStops()...)
	} else {
		surf.SetHexColor(comp.Background)
	}
	surf.FillRect(0, 0, w, h)
}
