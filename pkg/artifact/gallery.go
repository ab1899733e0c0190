// gallery.go — The 3D gallery: photos orbiting as a carousel, a cube or a
// sphere, projected flat with depth carried by scale and opacity.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/canvas"
	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/textlayout"
)

// ErrUnknownGalleryMode is returned for a mode outside GalleryModes.
var ErrUnknownGalleryMode = errors.New("unknown gallery mode")

// GalleryMode is the solid the photos are arranged on.
type GalleryMode string

const (
	ModeCarousel GalleryMode = "carousel"
	ModeCube     GalleryMode = "cube"
	ModeSphere   GalleryMode = "sphere"
)

// GalleryModes lists the gallery arrangements.
var GalleryModes = []GalleryMode{ModeCarousel, ModeCube, ModeSphere}

// ParseGalleryMode validates a mode name. Empty means carousel.
func ParseGalleryMode(s string) (GalleryMode, error) {
	if s == "" {
		return ModeCarousel, nil
	}
	for _, m := range GalleryModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownGalleryMode, s)
}

// Gallery describes one 3D gallery.
type Gallery struct {
	Photos []media.Asset `json:"photos"`
	Mode   GalleryMode   `json:"mode,omitempty"`
	Seed   int64         `json:"seed,omitempty"`
}

// Gallery geometry and timing. One reel is a single full turn.
const (
	GalleryWidth      = 1920
	GalleryHeight     = 1080
	GalleryFrames     = 300
	MaxGalleryPhotos  = 30
	MaxCubeFaces      = 6
	galleryStars      = 100
	carouselRadius    = 450
	cubeSize          = 300
	sphereRadius      = 400
	carouselW         = 200
	carouselH         = 250
	carouselMaxZoom   = 2.8 // base scale 1 times the largest front zoom
	sphereTile        = 120
	galleryTitle      = "3D Memory Gallery"
	galleryDegPerStep = 360.0 / GalleryFrames
)

// cubeFaceAngles places front, back, right, left, top and bottom faces.
var cubeFaceAngles = [MaxCubeFaces]float64{0, 180, 90, 270, 45, 315}

// GalleryCard is one projected photo on a frame.
type GalleryCard struct {
	Index   int     // photo index
	X, Y    float64 // centre on the frame
	Z       float64 // depth, larger is nearer
	Scale   float64
	Opacity float64
	Front   bool // the carousel photo facing the viewer
}

// GalleryLayout projects n photos for frame in mode. Cards come back to
// front. The cube shows at most MaxCubeFaces photos.
func GalleryLayout(mode GalleryMode, n, frame int) []GalleryCard {
	const cx, cy = GalleryWidth / 2, GalleryHeight / 2
	f := float64(frame)
	rotation := f * galleryDegPerStep
	var cards []GalleryCard
	switch mode {
	case ModeCube:
		for i := range min(n, MaxCubeFaces) {
			rad := (cubeFaceAngles[i] + rotation + f*0.5) * math.Pi / 180
			const r = cubeSize * 0.7
			c := GalleryCard{Index: i, X: cx + math.Cos(rad)*r, Y: cy, Z: math.Sin(rad) * r}
			switch i {
			case 4:
				c.Y -= cubeSize / 3
			case 5:
				c.Y += cubeSize / 3
			}
			depth := (c.Z + cubeSize) / (2 * cubeSize)
			c.Scale = 0.6 + depth*0.4
			c.Opacity = 0.4 + depth*0.6
			cards = append(cards, c)
		}
	case ModeSphere:
		for i := range n {
			phi := math.Acos(-1 + 2*float64(i)/float64(n))
			theta := math.Sqrt(float64(n)*math.Pi)*phi + rotation*math.Pi/180
			c := GalleryCard{
				Index: i,
				X:     cx + math.Cos(theta)*math.Sin(phi)*sphereRadius,
				Y:     cy + math.Sin(theta)*math.Sin(phi)*sphereRadius,
				Z:     math.Cos(phi) * sphereRadius,
			}
			depth := (c.Z + sphereRadius) / (2 * sphereRadius)
			c.Scale = 0.3 + depth*0.7
			c.Opacity = 0.2 + depth*0.8
			cards = append(cards, c)
		}
	default:
		step := 360 / float64(n)
		for i := range n {
			angle := float64(i)*step + rotation
			rad := angle * math.Pi / 180
			c := GalleryCard{Index: i, X: cx + math.Cos(rad)*carouselRadius, Y: cy, Z: math.Sin(rad) * carouselRadius}
			depth := (c.Z + carouselRadius) / (2 * carouselRadius)
			c.Scale = 0.4 + depth*0.6
			c.Opacity = 0.3 + depth*0.7
			off := math.Abs(math.Mod(angle-90, 360))
			c.Front = math.Min(off, 360-off) < step/2
			if c.Front {
				c.Scale *= 1.5 + math.Sin(f*0.02)*0.3 + 1
				c.X += math.Sin(f*0.03) * 20
				c.Y += math.Cos(f*0.025) * 10
			}
			cards = append(cards, c)
		}
	}
	sort.SliceStable(cards, func(a, b int) bool { return cards[a].Z < cards[b].Z })
	return cards
}

// GalleryReel is a gallery with its photos decoded, ready to render frames.
type GalleryReel struct {
	gen      *Generator
	mode     GalleryMode
	scale    float64
	photos   []media.Asset
	images   []image.Image // mode-sized crops
	stars    [][3]float64  // x, y, radius
	alphas   []float64
	Warnings []string
}

// Gallery prepares g for rendering. Photos beyond MaxGalleryPhotos are
// ignored. Photos that fail to load are skipped with a warning; at least one
// must load.
func (g *Generator) Gallery(ctx context.Context, gal Gallery) (*GalleryReel, error) {
	if len(gal.Photos) == 0 {
		return nil, ErrNoPhotos
	}
	mode, err := ParseGalleryMode(string(gal.Mode))
	if err != nil {
		return nil, err
	}
	photos := gal.Photos
	if len(photos) > MaxGalleryPhotos {
		photos = photos[:MaxGalleryPhotos]
	}
	if mode == ModeCube && len(photos) > MaxCubeFaces {
		photos = photos[:MaxCubeFaces]
	}

	r := &GalleryReel{gen: g, mode: mode, scale: g.videoScale()}
	var firstErr error
	for _, p := range photos {
		img, err := g.load(ctx, p)
		if err != nil {
			logrus.WithFields(logrus.Fields{"asset": p.ID, "error": err}).Warn("Gallery photo failed to load")
			r.Warnings = append(r.Warnings, err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		r.photos = append(r.photos, p)
		r.images = append(r.images, r.crop(img))
	}
	if len(r.images) == 0 {
		return nil, firstErr
	}

	rng := layout.NewRand(gal.Seed)
	r.stars = make([][3]float64, galleryStars)
	r.alphas = make([]float64, galleryStars)
	for i := range r.stars {
		r.stars[i] = [3]float64{rng.Float64() * GalleryWidth, rng.Float64() * GalleryHeight, rng.Float64()*3 + 1}
		r.alphas[i] = rng.Float64()*0.5 + 0.3
	}
	return r, nil
}

// crop fits img to the largest box the mode ever draws it at.
func (r *GalleryReel) crop(img image.Image) image.Image {
	switch r.mode {
	case ModeCube:
		return coverCrop(img, cubeSize-20, cubeSize-20, r.scale)
	case ModeSphere:
		return coverCrop(img, sphereTile, sphereTile, r.scale)
	default:
		return coverCrop(img, carouselW*carouselMaxZoom, carouselH*carouselMaxZoom, r.scale)
	}
}

// Mode returns the arrangement.
func (r *GalleryReel) Mode() GalleryMode { return r.mode }

// Len returns GalleryFrames.
func (r *GalleryReel) Len() int { return GalleryFrames }

// Filename suggests a download name; ext includes the dot. Still previews
// carry a "preview" suffix.
func (r *GalleryReel) Filename(ext string) string {
	suffix := ""
	if ext != ".avi" {
		suffix = "preview"
	}
	return compositor.SuggestFilename(compositor.Gallery, string(r.mode), suffix, r.gen.now(), ext)
}

// Frame renders frame i of GalleryFrames.
func (r *GalleryReel) Frame(i int) (image.Image, error) {
	if err := checkFrame(i, GalleryFrames); err != nil {
		return nil, err
	}
	surf := r.gen.frameSurface(GalleryWidth, GalleryHeight, r.scale)
	defer surf.Close()

	nightSky(surf, GalleryWidth, GalleryHeight, GalleryWidth, GalleryHeight)
	for k, s := range r.stars {
		surf.SetColor(canvas.RGBA(255, 255, 255, r.alphas[k]))
		surf.FillCircle(s[0], s[1], s[2])
	}

	for _, c := range GalleryLayout(r.mode, len(r.images), i) {
		surf.Save()
		surf.Translate(c.X, c.Y)
		surf.SetAlpha(c.Opacity)
		switch r.mode {
		case ModeCube:
			r.drawFace(surf, c)
		case ModeSphere:
			r.drawTile(surf, c)
		default:
			r.drawCard(surf, c)
		}
		surf.Restore()
	}

	const cx = GalleryWidth / 2
	surf.SetHexColor("#ffffff")
	surf.SetFont(canvas.Font{Family: "sans-serif", Size: 48, Bold: true})
	surf.FillText(galleryTitle, cx, 100, textlayout.AlignCenter)
	surf.SetHexColor("#e0e7ff")
	surf.SetFont(canvas.Font{Family: "sans-serif", Size: 24, Italic: true})
	surf.FillText(fmt.Sprintf("%s Mode - %d Photos", capitalize(string(r.mode)), len(r.images)), cx, 140, textlayout.AlignCenter)
	surf.SetHexColor("#a855f7")
	surf.SetFont(canvas.Font{Family: "sans-serif", Size: 20, Italic: true})
	surf.FillText(Tagline, cx, GalleryHeight-50, textlayout.AlignCenter)
	return finish(surf)
}

// Frames renders every frame in order and hands each to yield.
func (r *GalleryReel) Frames(ctx context.Context, yield func(i int, img image.Image) error) error {
	return StreamFrames(ctx, r, yield)
}

// WriteAVI encodes the full turn as an MJPEG AVI.
func (r *GalleryReel) WriteAVI(ctx context.Context, w io.Writer, fps, quality int) error {
	return WriteSequenceAVI(ctx, r, w, fps, quality)
}

func (r *GalleryReel) drawCard(surf canvas.Surface, c GalleryCard) {
	pw, ph := carouselW*c.Scale, carouselH*c.Scale
	surf.SetShadow(canvas.Shadow{Color: canvas.RGBA(0, 0, 0, 0.6), Blur: 30 * c.Scale, OffsetX: 15 * c.Scale, OffsetY: 15 * c.Scale})
	if c.Front {
		surf.SetLinearGradient(-pw/2-15, -ph/2-15, pw/2+15, ph/2+15,
			canvas.Stop{Offset: 0, Color: canvas.MustColor("#fbbf24")},
			canvas.Stop{Offset: 0.5, Color: canvas.MustColor("#f59e0b")},
			canvas.Stop{Offset: 1, Color: canvas.MustColor("#d97706")},
		)
		surf.FillRect(-pw/2-15, -ph/2-15, pw+30, ph+30)
		surf.SetShadow(canvas.Shadow{Color: canvas.MustColor("#fbbf24"), Blur: 40})
		surf.FillRect(-pw/2-15, -ph/2-15, pw+30, ph+30)
	} else {
		surf.SetHexColor("#ffffff")
		surf.FillRect(-pw/2-10, -ph/2-10, pw+20, ph+20)
	}
	surf.ClearShadow()
	surf.DrawImage(r.images[c.Index], -pw/2, -ph/2, pw, ph)

	if c.Front {
		surf.SetHexColor("#fbbf24")
		surf.SetLineWidth(4)
	} else {
		surf.SetHexColor("#e5e7eb")
		surf.SetLineWidth(2)
	}
	surf.StrokeRect(-pw/2, -ph/2, pw, ph)

	if c.Front {
		surf.SetColor(canvas.RGBA(0, 0, 0, 0.8))
		surf.FillRect(-pw/2, ph/2-40, pw, 40)
		surf.SetHexColor("#ffffff")
		surf.SetFont(canvas.Font{Family: "sans-serif", Size: 16, Bold: true})
		surf.FillText(fmt.Sprintf("Photo %d", c.Index+1), 0, ph/2-15, textlayout.AlignCenter)
	}
}

func (r *GalleryReel) drawFace(surf canvas.Surface, c GalleryCard) {
	side := cubeSize * c.Scale
	surf.SetShadow(canvas.Shadow{Color: canvas.RGBA(0, 0, 0, 0.5), Blur: 20 * c.Scale, OffsetX: 10 * c.Scale, OffsetY: 10 * c.Scale})
	surf.SetHexColor("#ffffff")
	surf.FillRect(-side/2, -side/2, side, side)
	surf.ClearShadow()
	surf.DrawImage(r.images[c.Index], -side/2+10, -side/2+10, side-20, side-20)
	surf.SetHexColor("#8b5cf6")
	surf.SetLineWidth(3)
	surf.StrokeRect(-side/2, -side/2, side, side)
}

func (r *GalleryReel) drawTile(surf canvas.Surface, c GalleryCard) {
	side := sphereTile * c.Scale
	surf.SetShadow(canvas.Shadow{Color: canvas.RGBA(0, 0, 0, 0.4), Blur: 15 * c.Scale, OffsetX: 8 * c.Scale, OffsetY: 8 * c.Scale})
	surf.SetHexColor("#ffffff")
	surf.FillRect(-side/2-5, -side/2-5, side+10, side+10)
	surf.ClearShadow()
	surf.DrawImage(r.images[c.Index], -side/2, -side/2, side, side)
	surf.SetHexColor("#ec4899")
	surf.SetLineWidth(2)
	surf.StrokeRect(-side/2, -side/2, side, side)
}
