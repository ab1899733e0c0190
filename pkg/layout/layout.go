// Package layout computes the initial placement of a photo collection for
// each collage template.
//
// Every function here is pure apart from the injected random source, so a
// seeded *rand.Rand reproduces a layout exactly.
package layout

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/scene"
)

// Template names a placement algorithm.
type Template string

const (
	Grid        Template = "grid"
	Overlapping Template = "overlapping"
	Polaroid    Template = "polaroid"
	Heart       Template = "heart"
	Freeform    Template = "freeform"
)

// Templates lists every template in presentation order.
var Templates = []Template{Grid, Overlapping, Polaroid, Heart, Freeform}

// ErrUnknownTemplate is returned for names outside Templates.
var ErrUnknownTemplate = errors.New("unknown layout template")

// Fixed template geometry.
const (
	PolaroidWidth  = 200
	PolaroidHeight = 240
	HeartItemSize  = 100
	FreeformMin    = 150
	FreeformRange  = 100
)

// ParseTemplate resolves a template name.
func ParseTemplate(name string) (Template, error) {
	for _, t := range Templates {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
}

// MustParseTemplate is ParseTemplate for names fixed at compile time.
func MustParseTemplate(name string) Template {
	t, err := ParseTemplate(name)
	if err != nil {
		panic(err)
	}
	return t
}

// NewRand returns a random source for layouts. A zero seed draws one from
// the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Compute places assets on a canvasW x canvasH canvas. The returned items are
// photo variants whose z-order equals their input index. Every bounding box
// lies within the canvas.
func Compute(assets []media.Asset, tmpl Template, canvasW, canvasH, spacing float64, rng *rand.Rand) ([]scene.Item, error) {
	if rng == nil {
		rng = NewRand(0)
	}

	var place func(i, n int) box
	switch tmpl {
	case Grid:
		place = gridPlacer(len(assets), canvasW, canvasH, spacing)
	case Overlapping:
		base := math.Min(canvasW, canvasH) * 0.4
		place = func(i, n int) box {
			size := base * (1 + (rng.Float64()-0.5)*0.3)
			return randomBox(rng, size, size, canvasW, canvasH, (rng.Float64()-0.5)*30)
		}
	case Polaroid:
		place = func(i, n int) box {
			return randomBox(rng, PolaroidWidth, PolaroidHeight, canvasW, canvasH, (rng.Float64()-0.5)*45)
		}
	case Heart:
		place = func(i, n int) box {
			return heartBox(i, n, canvasW, canvasH)
		}
	case Freeform:
		place = func(i, n int) box {
			size := FreeformMin + rng.Float64()*FreeformRange
			return randomBox(rng, size, size, canvasW, canvasH, 0)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, tmpl)
	}

	items := make([]scene.Item, 0, len(assets))
	for i, a := range assets {
		b := place(i, len(assets)).fit(canvasW, canvasH)
		items = append(items, scene.NewPhoto(a.ID, b.x, b.y, b.w, b.h, b.rot, i))
	}
	return items, nil
}

// box is an intermediate placement before it becomes a scene item.
type box struct {
	x, y, w, h, rot float64
}

// fit shrinks the box to the canvas and moves it inside the bounds.
func (b box) fit(canvasW, canvasH float64) box {
	b.w = math.Max(1, math.Min(b.w, canvasW))
	b.h = math.Max(1, math.Min(b.h, canvasH))
	b.x = clamp(b.x, 0, canvasW-b.w)
	b.y = clamp(b.y, 0, canvasH-b.h)
	return b
}

func gridPlacer(n int, canvasW, canvasH, spacing float64) func(i, n int) box {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	cols = max(cols, 1)
	rows := max(int(math.Ceil(float64(n)/float64(cols))), 1)
	cellW := (canvasW - spacing*float64(cols+1)) / float64(cols)
	cellH := (canvasH - spacing*float64(rows+1)) / float64(rows)

	return func(i, _ int) box {
		col := i % cols
		row := i / cols
		return box{
			x: spacing + float64(col)*(cellW+spacing),
			y: spacing + float64(row)*(cellH+spacing),
			w: cellW,
			h: cellH,
		}
	}
}

// randomBox positions a w x h box uniformly so that it never leaves the canvas.
func randomBox(rng *rand.Rand, w, h, canvasW, canvasH, rot float64) box {
	return box{
		x:   rng.Float64() * math.Max(0, canvasW-w),
		y:   rng.Float64() * math.Max(0, canvasH-h),
		w:   w,
		h:   h,
		rot: rot,
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}
