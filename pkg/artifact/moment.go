// moment.go — Unspoken moments: a single clip frame recropped around its
// moment type and set on a 9:16 portrait card.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/xob0t/memoria/pkg/canvas"
	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/textlayout"
)

// ErrUnknownMomentType is returned for a type outside MomentTypes.
var ErrUnknownMomentType = errors.New("unknown moment type")

// MomentType says what made a frame worth keeping. It decides the crop.
type MomentType string

const (
	MomentExpression MomentType = "expression_change"
	MomentMovement   MomentType = "movement_peak"
	MomentLighting   MomentType = "lighting_shift"
	MomentGesture    MomentType = "gesture_moment"
	MomentTransition MomentType = "scene_transition"
	MomentEmotional  MomentType = "emotional_peak"
)

// MomentTypes lists every moment type.
var MomentTypes = []MomentType{MomentExpression, MomentMovement, MomentLighting, MomentGesture, MomentTransition, MomentEmotional}

// ParseMomentType validates a type name. Empty is returned as is and picked
// at render time.
func ParseMomentType(s string) (MomentType, error) {
	if s == "" {
		return "", nil
	}
	for _, t := range MomentTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownMomentType, s)
}

// Label is the upper-case heading printed under the frame.
func (t MomentType) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(t), "_", " "))
}

// Crop is a source rectangle in fractions of the image size.
type Crop struct {
	X, Y, W, H float64
}

// PortraitCrop returns the crop that frames a moment type: tight on faces,
// wide on scene changes.
func PortraitCrop(t MomentType) Crop {
	switch t {
	case MomentExpression:
		return Crop{0.15, 0.1, 0.7, 0.8}
	case MomentMovement:
		return Crop{0.1, 0.05, 0.8, 0.9}
	case MomentLighting:
		return Crop{0.25, 0.2, 0.5, 0.7}
	case MomentTransition:
		return Crop{0.05, 0.1, 0.9, 0.85}
	case MomentEmotional:
		return Crop{0.3, 0.25, 0.4, 0.6}
	default:
		return Crop{0.2, 0.15, 0.6, 0.75}
	}
}

// Rect maps c onto b.
func (c Crop) Rect(b image.Rectangle) image.Rectangle {
	w, h := float64(b.Dx()), float64(b.Dy())
	x0 := b.Min.X + int(w*c.X)
	y0 := b.Min.Y + int(h*c.Y)
	return image.Rect(x0, y0, x0+max(1, int(w*c.W)), y0+max(1, int(h*c.H)))
}

// Moment describes one portrait frame. Zero fields are filled in: a random
// Type, a caption and emotion from the default pools, a confidence in
// [0.85,0.99] and, for clips longer than ten seconds, a timestamp at least
// five seconds from either end.
type Moment struct {
	Photo      media.Asset `json:"photo"`
	Type       MomentType  `json:"type,omitempty"`
	Caption    string      `json:"caption,omitempty"`
	Emotion    string      `json:"emotion,omitempty"`
	Timestamp  float64     `json:"timestamp,omitempty"` // seconds into the clip
	Confidence float64     `json:"confidence,omitempty"`
	Seed       int64       `json:"seed,omitempty"`
}

// Portrait card geometry.
const (
	MomentWidth     = 1080
	MomentHeight    = 1920
	momentBorder    = 20
	momentSpecks    = 200
	momentLines     = 3
	momentLineStep  = 40
	momentMaxWidth  = MomentWidth * 0.85
	momentMaxHeight = MomentHeight * 0.65
	momentBranding  = "Memoria - Unspoken Moments"
)

// MomentBox places a crop of the given aspect (width over height) on the
// card. Wide crops take 60% of the height from 15% down; tall crops take 85%
// of the width centred in the upper three quarters. Both are capped so the
// text below stays on the card.
func MomentBox(aspect float64) (x, y, w, h float64) {
	if aspect > 0.75 {
		h = MomentHeight * 0.6
		w = h * aspect
		if w > momentMaxWidth {
			w = momentMaxWidth
			h = w / aspect
		}
		y = MomentHeight * 0.15
	} else {
		w = momentMaxWidth
		h = w / aspect
		if h > momentMaxHeight {
			h = momentMaxHeight
			w = h * aspect
		}
		y = (MomentHeight*0.75 - h) / 2
	}
	return (MomentWidth - w) / 2, y, w, h
}

// ClipTime formats seconds as m:ss.
func ClipTime(sec float64) string {
	s := int(math.Max(0, sec))
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// Moment renders m.
func (g *Generator) Moment(ctx context.Context, m Moment) (*Output, error) {
	if m.Photo.Source == "" && m.Photo.ID == "" {
		return nil, ErrNoPhotos
	}
	if _, err := ParseMomentType(string(m.Type)); err != nil {
		return nil, err
	}
	rng := layout.NewRand(m.Seed)
	m = fillMoment(m, rng)

	img, err := g.load(ctx, m.Photo)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scale := g.videoScale()
	src := imaging.Crop(img, PortraitCrop(m.Type).Rect(img.Bounds()))
	sw, sh := imageSize(src)
	dx, dy, dw, dh := MomentBox(sw / sh)
	photo := resample(src, dw, dh, scale)

	const w, h = MomentWidth, MomentHeight
	surf := g.frameSurface(w, h, scale)
	defer surf.Close()

	nightSky(surf, 0, h, w, h)
	for range momentSpecks {
		surf.SetColor(canvas.RGBA(255, 255, 255, rng.Float64()*0.02))
		specks(surf, rng, 1, w, h, func(r float64) float64 { return r*2 + 1 })
	}

	surf.Save()
	surf.SetShadow(canvas.Shadow{Color: canvas.RGBA(0, 0, 0, 0.6), Blur: 40, OffsetY: 20})
	surf.SetHexColor("#ffffff")
	surf.FillRect(dx-momentBorder, dy-momentBorder, dw+2*momentBorder, dh+2*momentBorder)
	surf.Restore()
	surf.DrawImage(photo, dx, dy, dw, dh)
	surf.SetHexColor("#e5e7eb")
	surf.SetLineWidth(2)
	surf.StrokeRect(dx, dy, dw, dh)

	const cx = w / 2
	typeY := dy + dh + 60
	surf.SetHexColor("#8b5cf6")
	surf.SetFont(canvas.Font{Family: "sans-serif", Size: 24, Bold: true})
	surf.FillText(m.Type.Label(), cx, typeY, textlayout.AlignCenter)

	captionY := typeY + 80
	surf.SetHexColor("#ffffff")
	surf.SetFont(canvas.Font{Family: "serif", Size: 28, Italic: true})
	lines := textlayout.Wrap(m.Caption, w-120, surf)
	if len(lines) > momentLines {
		lines = lines[:momentLines]
	}
	for i, line := range lines {
		surf.FillText(line, cx, captionY+float64(i)*momentLineStep, textlayout.AlignCenter)
	}

	metaY := captionY + float64(len(lines))*momentLineStep + 60
	surf.SetHexColor("#a855f7")
	surf.SetFont(canvas.Font{Family: "sans-serif", Size: 20, Bold: true})
	surf.FillText(fmt.Sprintf("%s - %d%% confidence", ClipTime(m.Timestamp), int(math.Round(m.Confidence*100))), cx, metaY, textlayout.AlignCenter)
	surf.SetHexColor("#ec4899")
	surf.SetFont(canvas.Font{Family: "serif", Size: 18, Italic: true})
	surf.FillText(`"`+m.Emotion+`"`, cx, metaY+40, textlayout.AlignCenter)

	surf.SetHexColor("#fbbf24")
	sparkle(surf, cx-200, dy-30, 16)
	sparkle(surf, cx+200, dy-30, 16)

	surf.SetHexColor("#6b7280")
	surf.SetFont(canvas.Font{Family: "serif", Size: 16, Italic: true})
	surf.FillText(momentBranding, cx, h-40, textlayout.AlignCenter)

	out, err := finish(surf)
	if err != nil {
		return nil, err
	}
	clip := strings.Replace(ClipTime(m.Timestamp), ":", "m", 1) + "s"
	return &Output{
		Image:    out,
		Filename: compositor.SuggestFilename(compositor.Moment, string(m.Type), clip, g.now(), ".png"),
	}, nil
}

// fillMoment resolves the empty fields of m.
func fillMoment(m Moment, rng *rand.Rand) Moment {
	if m.Type == "" {
		m.Type = MomentTypes[rng.Intn(len(MomentTypes))]
	}
	if m.Caption == "" {
		m.Caption = PickMomentCaption(rng)
	}
	if m.Emotion == "" {
		m.Emotion = m.Photo.Emotion(MomentEmotions[rng.Intn(len(MomentEmotions))])
	}
	if m.Confidence <= 0 {
		m.Confidence = math.Min(0.99, 0.85+rng.Float64()*0.15)
	}
	m.Confidence = math.Min(1, m.Confidence)
	if m.Timestamp <= 0 && m.Photo.Video != nil && m.Photo.Video.Duration > 10 {
		d := m.Photo.Video.Duration
		m.Timestamp = math.Max(5, math.Min(d-5, rng.Float64()*d))
	}
	return m
}
