// reel.go — Animated memory reels: photos shown in turn over a drifting
// starfield, each brought to life by one looping effect.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/canvas"
	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/textlayout"
)

// ErrUnknownEffect is returned for an effect name outside Effects.
var ErrUnknownEffect = errors.New("unknown effect")

// ErrUnknownAspect is returned for an aspect ratio outside Aspects.
var ErrUnknownAspect = errors.New("unknown aspect ratio")

// ErrReelTooLong is returned when a reel asks for more than MaxReelSeconds
// or MaxReelFPS.
var ErrReelTooLong = errors.New("reel too long")

// Effect animates the photo on screen.
type Effect string

const (
	EffectSparkles  Effect = "sparkles"
	EffectBlinking  Effect = "blinking"
	EffectFloating  Effect = "floating"
	EffectHeartbeat Effect = "heartbeat"
	EffectBreathing Effect = "zoom-breath"
)

// Effects lists the reel effects in menu order.
var Effects = []Effect{EffectSparkles, EffectBlinking, EffectFloating, EffectHeartbeat, EffectBreathing}

// ParseEffect validates an effect name. Empty means sparkles.
func ParseEffect(s string) (Effect, error) {
	if s == "" {
		return EffectSparkles, nil
	}
	for _, e := range Effects {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownEffect, s)
}

// Aspect is the frame shape of a reel.
type Aspect string

const (
	AspectWide   Aspect = "16:9"
	AspectTall   Aspect = "9:16"
	AspectSquare Aspect = "1:1"
)

const reelLongSide, reelShortSide = 1920, 1080

// Aspects lists the supported reel shapes.
var Aspects = []Aspect{AspectWide, AspectTall, AspectSquare}

// ParseAspect validates an aspect ratio. Empty means 16:9.
func ParseAspect(s string) (Aspect, error) {
	if s == "" {
		return AspectWide, nil
	}
	for _, a := range Aspects {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownAspect, s)
}

// Size returns the frame size in pixels.
func (a Aspect) Size() (w, h float64) {
	switch a {
	case AspectTall:
		return reelShortSide, reelLongSide
	case AspectSquare:
		return reelShortSide, reelShortSide
	default:
		return reelLongSide, reelShortSide
	}
}

// Animation describes one animated reel. Zero Duration and FPS take the
// defaults; empty Title reads "AI Memory Reel".
type Animation struct {
	Photos   []media.Asset `json:"photos"`
	Effect   Effect        `json:"effect,omitempty"`
	Aspect   Aspect        `json:"aspect,omitempty"`
	Duration int           `json:"duration,omitempty"` // seconds
	FPS      int           `json:"fps,omitempty"`
	Title    string        `json:"title,omitempty"`
	Seed     int64         `json:"seed,omitempty"`
}

// Reel timing.
const (
	DefaultReelSeconds = 3
	MaxReelSeconds     = 30
	DefaultReelFPS     = 30
	MaxReelFPS         = 60

	effectLoop    = 90 // frames per effect cycle
	reelParticles = 50
	reelTitle     = "AI Memory Reel"
)

// AnimatedReel is an animation with its photos decoded, ready to render
// frames.
type AnimatedReel struct {
	gen      *Generator
	effect   Effect
	w, h     float64
	fps      int
	frames   int
	perPhoto int
	title    string
	seed     int64
	scale    float64
	photos   []media.Asset
	images   []image.Image // resampled to their on-screen size
	Warnings []string
}

// Animate prepares a for rendering. Photos that fail to load are skipped
// with a warning; at least one must load.
func (g *Generator) Animate(ctx context.Context, a Animation) (*AnimatedReel, error) {
	if len(a.Photos) == 0 {
		return nil, ErrNoPhotos
	}
	effect, err := ParseEffect(string(a.Effect))
	if err != nil {
		return nil, err
	}
	aspect, err := ParseAspect(string(a.Aspect))
	if err != nil {
		return nil, err
	}
	secs := a.Duration
	if secs <= 0 {
		secs = DefaultReelSeconds
	}
	fps := a.FPS
	if fps <= 0 {
		fps = DefaultReelFPS
	}
	if secs > MaxReelSeconds || fps > MaxReelFPS {
		return nil, fmt.Errorf("%w: %ds at %d fps, limit %ds at %d fps", ErrReelTooLong, secs, fps, MaxReelSeconds, MaxReelFPS)
	}

	w, h := aspect.Size()
	r := &AnimatedReel{
		gen:    g,
		effect: effect,
		w:      w,
		h:      h,
		fps:    fps,
		frames: secs * fps,
		title:  a.Title,
		seed:   a.Seed,
		scale:  g.videoScale(),
	}
	if r.title == "" {
		r.title = reelTitle
	}
	if r.seed == 0 {
		r.seed = layout.NewRand(0).Int63()
	}

	box := math.Min(w, h) * 0.6
	var firstErr error
	for _, p := range a.Photos {
		img, err := g.load(ctx, p)
		if err != nil {
			logrus.WithFields(logrus.Fields{"asset": p.ID, "error": err}).Warn("Reel photo failed to load")
			r.Warnings = append(r.Warnings, err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		iw, ih := imageSize(img)
		fw, fh := fitInside(iw, ih, box, box)
		r.photos = append(r.photos, p)
		r.images = append(r.images, resample(img, fw, fh, r.scale))
	}
	if len(r.images) == 0 {
		return nil, firstErr
	}
	r.perPhoto = (r.frames + len(r.images) - 1) / len(r.images)
	return r, nil
}

// resample scales img to the pixel size of a w x h box at scale.
func resample(img image.Image, w, h, scale float64) image.Image {
	pw := max(1, int(w*scale+0.5))
	ph := max(1, int(h*scale+0.5))
	return imaging.Resize(img, pw, ph, imaging.Lanczos)
}

// Len returns the frame count: duration times fps.
func (r *AnimatedReel) Len() int { return r.frames }

// FPS returns the playback rate.
func (r *AnimatedReel) FPS() int { return r.fps }

// Size returns the frame size in layout units.
func (r *AnimatedReel) Size() (w, h float64) { return r.w, r.h }

// PhotoAt returns the index, among the loaded photos, shown on frame i.
func (r *AnimatedReel) PhotoAt(i int) int {
	return (i / r.perPhoto) % len(r.images)
}

// Filename suggests a download name; ext includes the dot.
func (r *AnimatedReel) Filename(ext string) string {
	return compositor.SuggestFilename(compositor.Reel, "", "", r.gen.now(), ext)
}

// Frame renders frame i of Len.
func (r *AnimatedReel) Frame(i int) (image.Image, error) {
	if err := checkFrame(i, r.frames); err != nil {
		return nil, err
	}
	surf := r.gen.frameSurface(r.w, r.h, r.scale)
	defer surf.Close()

	nightSky(surf, r.w, r.h, r.w, r.h)
	r.drawParticles(surf, float64(i))

	idx := r.PhotoAt(i)
	r.drawPhoto(surf, i, r.images[idx])

	surf.SetColor(canvas.RGBA(0, 0, 0, 0.7))
	surf.FillRect(0, r.h-120, r.w, 120)
	surf.SetHexColor("#ffffff")
	surf.SetFont(canvas.Font{Family: "sans-serif", Size: 48, Bold: true})
	surf.FillText(r.title, r.w/2, r.h-60, textlayout.AlignCenter)

	surf.SetColor(canvas.RGBA(0, 0, 0, 0.5))
	surf.FillRect(0, 0, r.w, 80)
	surf.SetHexColor("#ffffff")
	surf.SetFont(canvas.Font{Family: "sans-serif", Size: 32})
	surf.FillText(r.photos[idx].Name, r.w/2, 50, textlayout.AlignCenter)
	return finish(surf)
}

// Frames renders every frame in order and hands each to yield.
func (r *AnimatedReel) Frames(ctx context.Context, yield func(i int, img image.Image) error) error {
	return StreamFrames(ctx, r, yield)
}

// WriteAVI encodes all frames at the reel's rate as an MJPEG AVI.
func (r *AnimatedReel) WriteAVI(ctx context.Context, w io.Writer, quality int) error {
	return WriteSequenceAVI(ctx, r, w, r.fps, quality)
}

func (r *AnimatedReel) drawParticles(surf canvas.Surface, f float64) {
	for i := range reelParticles {
		k := float64(i)
		x := math.Sin(f*0.01+k)*100 + r.w/2 + math.Cos(k)*200
		y := math.Cos(f*0.01+k)*100 + r.h/2 + math.Sin(k)*200
		opacity := math.Sin(f*0.05+k)*0.3 + 0.3
		size := math.Sin(f*0.03+k)*2 + 1
		if opacity <= 0 || size <= 0 {
			continue
		}
		surf.SetColor(canvas.RGBA(255, 255, 255, opacity))
		surf.FillCircle(x, y, size)
	}
}

// drawPhoto draws img centred with the reel's effect at frame.
func (r *AnimatedReel) drawPhoto(surf canvas.Surface, frame int, img image.Image) {
	t := float64(frame%effectLoop) / effectLoop * 2 * math.Pi
	iw, ih := imageSize(img)
	w, h := iw/r.scale, ih/r.scale
	x, y := (r.w-w)/2, (r.h-h)/2

	surf.Save()
	defer surf.Restore()
	switch r.effect {
	case EffectBlinking:
		surf.DrawImage(img, x, y, w, h)
		if a := BlinkIntensity(t); a > 0.2 {
			surf.SetColor(canvas.RGBA(0, 0, 0, a))
			surf.FillRect(x+w*0.3, y+h*0.35, w*0.15, h*0.05)
			surf.FillRect(x+w*0.55, y+h*0.35, w*0.15, h*0.05)
		}
	case EffectFloating:
		surf.Translate(x+w/2+math.Cos(t*0.7)*5, y+h/2+math.Sin(t)*10)
		surf.Rotate(math.Sin(t*0.5) * 0.02 * 180 / math.Pi)
		surf.DrawImage(img, -w/2, -h/2, w, h)
	case EffectHeartbeat:
		beat := HeartbeatScale(t)
		surf.Translate(x+w/2, y+h/2)
		surf.Scale(beat, beat)
		surf.DrawImage(img, -w/2, -h/2, w, h)
		if beat > 1.03 {
			rng := rand.New(rand.NewSource(r.seed + int64(frame)))
			surf.SetHexColor("#FF69B4")
			for range 5 {
				heart(surf, (rng.Float64()-0.5)*w, (rng.Float64()-0.5)*h, 20)
			}
		}
	case EffectBreathing:
		s := 1 + math.Sin(t*0.8)*0.03
		surf.SetAlpha(0.95 + math.Sin(t*0.8)*0.05)
		surf.Translate(x+w/2, y+h/2)
		surf.Scale(s, s)
		surf.DrawImage(img, -w/2, -h/2, w, h)
	default:
		surf.DrawImage(img, x, y, w, h)
		drawSparkles(surf, t, x, y, w, h)
	}
}

// drawSparkles twinkles 20 gold crosses over the photo.
func drawSparkles(surf canvas.Surface, t, x, y, w, h float64) {
	gold := canvas.MustColor("#FFD700")
	for i := range 20 {
		k := float64(i)
		sx := x + (math.Sin(t+k)*0.5+0.5)*w
		sy := y + (math.Cos(t+k*1.5)*0.5+0.5)*h
		size := 3 + math.Sin(t+k)*2
		surf.SetColor(canvas.WithAlpha(gold, (math.Sin(t*2+k)*0.5+0.5)*0.8))
		surf.FillCircle(sx, sy, size)
		surf.SetLineWidth(1)
		surf.MoveTo(sx-size*2, sy)
		surf.LineTo(sx+size*2, sy)
		surf.MoveTo(sx, sy-size*2)
		surf.LineTo(sx, sy+size*2)
		surf.Stroke()
	}
}

// BlinkIntensity is the eyelid opacity at effect time t in [0,2π]. Lids are
// drawn only above 0.2.
func BlinkIntensity(t float64) float64 {
	return math.Max(0, math.Sin(t*0.3)) * 0.3
}

// HeartbeatScale is the photo zoom at effect time t; it stays in [1,1.05].
func HeartbeatScale(t float64) float64 {
	return math.Abs(math.Sin(t*2))*0.05 + 1
}
