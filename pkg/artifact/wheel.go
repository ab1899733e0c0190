// wheel.go — The memory wheel: a spinning ring of photos that stops on one
// and reveals it with a typewriter caption.
package artifact

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/canvas"
	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/textlayout"
	"github.com/xob0t/memoria/pkg/theme"
)

// Wheel describes one wheel reel. A nil Selected spins for a winner using
// Seed. Empty Caption picks one from the winner's subject.
type Wheel struct {
	Photos   []media.Asset `json:"photos"`
	Selected *int          `json:"selected,omitempty"`
	Title    string        `json:"title,omitempty"`
	Caption  string        `json:"caption,omitempty"`
	Theme    string        `json:"theme,omitempty"`
	Seed     int64         `json:"seed,omitempty"`
}

// Reel geometry and timing.
const (
	WheelWidth      = 1920
	WheelHeight     = 1080
	SpinFrames      = 120
	RevealFrames    = 60
	TotalFrames     = SpinFrames + RevealFrames
	MaxWheelPhotos  = 8
	DefaultWheelFPS = 30

	wheelRadius   = 350
	petalRadius   = wheelRadius - 60
	petalThumb    = 78 // inscribed thumbnail side at the largest pulse
	spinTurns     = 6
	wheelSparkles = 80
	captionWidth  = WheelWidth - 250
	captionStep   = 45
	wheelSubtitle = "Spinning through your memories..."
)

// Spin is the outcome of one spin of the wheel.
type Spin struct {
	Turns float64 // full turns before settling, in [4,7)
	Final float64 // resting angle in degrees, in [0,360)
	Index int     // photo the wheel stops on
}

// SpinWheel spins the wheel for n photos. The photo is chosen from the
// resting angle: index = (n-1-floor(final/360*n)) mod n.
func SpinWheel(n int, rng *rand.Rand) Spin {
	if n <= 0 {
		return Spin{Index: -1}
	}
	s := Spin{Turns: 4 + rng.Float64()*3, Final: rng.Float64() * 360}
	landed := int(math.Floor(s.Final / 360 * float64(n)))
	s.Index = ((n-1-landed)%n + n) % n
	return s
}

// PickWinner returns the index of the photo a spin stops on.
func PickWinner(n int, rng *rand.Rand) int {
	return SpinWheel(n, rng).Index
}

// easeOutCubic maps linear progress to a decelerating curve.
func easeOutCubic(p float64) float64 {
	return 1 - math.Pow(1-p, 3)
}

type wheelPalette struct {
	deep, mid, bright color.NRGBA
	ring, gold, mist  color.NRGBA
}

var defaultWheelPalette = wheelPalette{
	deep:   canvas.MustColor("#1e1b4b"),
	mid:    canvas.MustColor("#581c87"),
	bright: canvas.MustColor("#7c3aed"),
	ring:   canvas.MustColor("#8b5cf6"),
	gold:   canvas.MustColor("#fbbf24"),
	mist:   canvas.MustColor("#e0e7ff"),
}

func paletteFor(th theme.Theme) wheelPalette {
	p := defaultWheelPalette
	p.deep = canvas.MustColor(th.Colors.Text)
	p.mid = canvas.MustColor(th.Colors.Primary)
	p.bright = canvas.MustColor(th.Colors.Accent)
	p.ring = canvas.MustColor(th.Colors.Accent)
	p.mist = canvas.MustColor(th.Colors.Background)
	return p
}

// WheelReel is a wheel with its photos decoded, ready to render frames.
type WheelReel struct {
	gen      *Generator
	title    string
	caption  string
	selected int
	photos   []media.Asset
	thumbs   []image.Image // petal crops, nil where a photo failed to load
	winner   image.Image   // reveal crop at full zoom
	subject  media.Subject
	pal      wheelPalette
	scale    float64
	sparks   [][2]float64
	Warnings []string
}

// Wheel prepares w for rendering. Photos beyond MaxWheelPhotos are ignored.
// Other photos that fail to load are drawn as empty petals; the selected
// photo must load.
func (g *Generator) Wheel(ctx context.Context, w Wheel) (*WheelReel, error) {
	photos := w.Photos
	if len(photos) == 0 {
		return nil, ErrNoPhotos
	}
	if len(photos) > MaxWheelPhotos {
		photos = photos[:MaxWheelPhotos]
	}

	rng := layout.NewRand(w.Seed)
	selected := PickWinner(len(photos), rng)
	if w.Selected != nil {
		selected = *w.Selected
	}
	if selected < 0 || selected >= len(photos) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrBadSelection, selected, len(photos))
	}

	r := &WheelReel{
		gen:      g,
		title:    w.Title,
		caption:  w.Caption,
		selected: selected,
		photos:   photos,
		thumbs:   make([]image.Image, len(photos)),
		subject:  photos[selected].DetectSubject(),
		pal:      defaultWheelPalette,
		scale:    g.videoScale(),
	}
	if r.title == "" {
		r.title = "Memory Wheel"
	}
	if r.caption == "" {
		r.caption = PickWheelCaption(r.subject, rng)
	}
	if w.Theme != "" {
		th, err := g.theme(w.Theme)
		if err != nil {
			return nil, err
		}
		r.pal = paletteFor(th)
	}

	for i, a := range photos {
		img, err := g.load(ctx, a)
		if err != nil {
			if i == selected {
				return nil, err
			}
			logrus.WithFields(logrus.Fields{"asset": a.ID, "error": err}).Warn("Wheel photo failed to load")
			r.Warnings = append(r.Warnings, err.Error())
			continue
		}
		r.thumbs[i] = coverCrop(img, petalThumb, petalThumb, r.scale)
		if i == selected {
			r.winner = coverCrop(img, 300*1.5, 360*1.5, r.scale)
		}
	}

	r.sparks = make([][2]float64, wheelSparkles)
	for i := range r.sparks {
		r.sparks[i] = [2]float64{rng.Float64() * WheelWidth, rng.Float64() * WheelHeight}
	}
	return r, nil
}

// Selected returns the winning photo.
func (r *WheelReel) Selected() media.Asset { return r.photos[r.selected] }

// Caption returns the reveal caption.
func (r *WheelReel) Caption() string { return r.caption }

// Filename suggests a download name; ext includes the dot.
func (r *WheelReel) Filename(ext string) string {
	return compositor.SuggestFilename(compositor.Wheel, "", r.Selected().Name, r.gen.now(), ext)
}

// Len returns TotalFrames.
func (r *WheelReel) Len() int { return TotalFrames }

// Frame renders frame i of TotalFrames.
func (r *WheelReel) Frame(i int) (image.Image, error) {
	if err := checkFrame(i, TotalFrames); err != nil {
		return nil, err
	}
	surf := r.gen.frameSurface(WheelWidth, WheelHeight, r.scale)
	defer surf.Close()

	r.drawBackdrop(surf, i)
	if i < SpinFrames {
		r.drawSpin(surf, i)
	} else {
		r.drawReveal(surf, float64(i-SpinFrames)/RevealFrames)
	}
	return finish(surf)
}

// Frames renders every frame in order and hands each to yield. It stops at
// the first error from yield or when ctx is done.
func (r *WheelReel) Frames(ctx context.Context, yield func(i int, img image.Image) error) error {
	return StreamFrames(ctx, r, yield)
}

// WriteAVI encodes all frames as an MJPEG AVI.
func (r *WheelReel) WriteAVI(ctx context.Context, w io.Writer, fps, quality int) error {
	return WriteSequenceAVI(ctx, r, w, fps, quality)
}

func (r *WheelReel) drawBackdrop(surf canvas.Surface, frame int) {
	const cx, cy = WheelWidth / 2, WheelHeight / 2
	surf.SetRadialGradient(cx, cy, 0, cx,
		canvas.Stop{Offset: 0, Color: r.pal.deep},
		canvas.Stop{Offset: 0.3, Color: r.pal.mid},
		canvas.Stop{Offset: 0.7, Color: r.pal.bright},
		canvas.Stop{Offset: 1, Color: r.pal.deep},
	)
	surf.FillRect(0, 0, WheelWidth, WheelHeight)

	f := float64(frame)
	for i, p := range r.sparks {
		opacity := math.Sin(f*0.1+float64(i))*0.5 + 0.5
		size := math.Max(0.5, math.Sin(f*0.05+float64(i))*2+1)
		surf.SetColor(canvas.RGBA(255, 255, 255, opacity*0.8))
		surf.FillCircle(p[0], p[1], size)
	}
}

func (r *WheelReel) drawSpin(surf canvas.Surface, frame int) {
	const cx, cy = WheelWidth / 2, WheelHeight / 2
	progress := float64(frame) / SpinFrames
	rotation := easeOutCubic(progress) * 360 * spinTurns

	surf.Save()
	surf.SetShadow(canvas.Shadow{Color: r.pal.ring, Blur: 40})
	surf.SetColor(canvas.WithAlpha(r.pal.ring, 0.3))
	surf.FillCircle(cx, cy, wheelRadius+30)
	surf.Restore()

	petals := layout.Radial(MaxWheelPhotos, cx, cy, petalRadius, rotation)
	size := math.Max(10, math.Abs(math.Sin(float64(frame)*0.4))*15+50)
	for i := range r.photos {
		p := petals[i]
		surf.Save()
		surf.SetAlpha(0.9)
		surf.SetHexColor("#ffffff")
		surf.FillCircle(p.X, p.Y, size)
		if img := r.thumbs[i]; img != nil {
			side := size * 1.2
			surf.DrawImage(img, p.X-side/2, p.Y-side/2, side, side)
		}
		surf.SetColor(r.pal.ring)
		surf.SetLineWidth(4)
		surf.StrokeCircle(p.X, p.Y, size)
		surf.Restore()
	}

	surf.SetColor(r.pal.ring)
	surf.FillCircle(cx, cy, 60)
	surf.SetHexColor("#ffffff")
	sparkle(surf, cx, cy, 26)

	surf.SetFont(canvas.Font{Family: "serif", Size: 56, Bold: true})
	surf.FillText(r.title, cx, 120, textlayout.AlignCenter)
	surf.SetColor(r.pal.mist)
	surf.SetFont(canvas.Font{Family: "serif", Size: 28, Italic: true})
	surf.FillText(wheelSubtitle, cx, 170, textlayout.AlignCenter)
}

func (r *WheelReel) drawReveal(surf canvas.Surface, p float64) {
	const cx, cy = WheelWidth / 2, WheelHeight / 2
	scale := p * 1.5

	surf.Save()
	surf.SetShadow(canvas.Shadow{Color: r.pal.gold, Blur: p * 80})
	surf.SetColor(canvas.WithAlpha(r.pal.gold, p*0.4))
	surf.FillCircle(cx, cy, 300*scale+80)
	surf.Restore()

	if scale > 0 {
		surf.Save()
		surf.Translate(cx, cy)
		surf.Scale(scale, scale)
		surf.SetAlpha(p)
		surf.SetHexColor("#ffffff")
		surf.FillRect(-180, -220, 360, 440)
		surf.DrawImage(r.winner, -150, -190, 300, 360)
		surf.SetColor(r.pal.ring)
		surf.SetLineWidth(6)
		surf.StrokeRect(-150, -190, 300, 360)
		surf.Restore()
	}

	if p > 0.5 {
		surf.SetColor(canvas.RGBA(255, 255, 255, p))
		for i := range 15 {
			deg := float64(i)*24 + p*360
			radius := 200 + math.Sin(p*math.Pi*2+float64(i))*40
			x := cx + math.Cos(deg*math.Pi/180)*radius
			y := cy + math.Sin(deg*math.Pi/180)*radius
			if i%2 == 0 {
				heart(surf, x, y, 28)
			} else {
				sparkle(surf, x, y, 14)
			}
		}
	}

	if p > 0.7 {
		r.drawCaption(surf, (p-0.7)/0.3)
	}
}

// drawCaption types out the caption: a share of its characters equal to
// progress is visible.
func (r *WheelReel) drawCaption(surf canvas.Surface, progress float64) {
	const cx = WheelWidth / 2
	surf.SetColor(canvas.RGBA(0, 0, 0, 0.85))
	surf.FillRect(100, WheelHeight-300, WheelWidth-200, 200)

	surf.SetHexColor("#ffffff")
	surf.SetFont(canvas.Font{Family: "serif", Size: 32, Italic: true})
	for i, line := range textlayout.Wrap(VisibleCaption(r.caption, progress), captionWidth, surf) {
		surf.FillText(line, cx, WheelHeight-240+float64(i)*captionStep, textlayout.AlignCenter)
	}

	surf.SetColor(r.pal.gold)
	surf.SetFont(canvas.Font{Family: "sans-serif", Size: 28, Bold: true})
	surf.FillText(r.Selected().Name, cx, WheelHeight-120, textlayout.AlignCenter)

	surf.SetColor(r.pal.mist)
	surf.SetFont(canvas.Font{Family: "serif", Size: 24, Italic: true})
	surf.FillText(capitalize(string(r.subject))+" memory", cx, WheelHeight-80, textlayout.AlignCenter)
}

// VisibleCaption returns the prefix of caption shown at progress in [0,1]:
// floor(len*progress) characters.
func VisibleCaption(caption string, progress float64) string {
	runes := []rune(caption)
	n := int(math.Floor(float64(len(runes)) * math.Max(0, math.Min(1, progress))))
	return string(runes[:n])
}
