// thread.go — Hanging-thread timelines: polaroids clipped to a drooping rope.
package artifact

import (
	"context"
	"fmt"
	"image"
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

// Thread is a titled sequence of cards.
type Thread struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Cards       []ThreadCard `json:"cards"`
	Orientation Orientation  `json:"orientation,omitempty"`
	Seed        int64        `json:"seed,omitempty"`
}

// ThreadCard is one photo on the thread. An empty Caption reads
// "Memory N"; an empty Date shows the upload date.
type ThreadCard struct {
	Photo   media.Asset `json:"photo"`
	Caption string      `json:"caption,omitempty"`
	Date    string      `json:"date,omitempty"`
}

// Thread page sizes in layout units.
const (
	ThreadShort = 1080
	ThreadLong  = 1920
)

const (
	threadStartY   = 280
	threadSpecks   = 800
	threadStains   = 8
	threadSprinkle = 15
	cardGap        = 80
	cardLabel      = 60 // polaroid strip below the photo
	ropeStrands    = 4
	stringLength   = 80
	cardDateLayout = "1/2/2006"
)

// threadGeometry holds the per-orientation measures.
type threadGeometry struct {
	w, h       float64
	rowSpacing float64
	cardW      float64
	cardH      float64
}

func geometryFor(o Orientation) threadGeometry {
	if o == Landscape {
		return threadGeometry{w: ThreadLong, h: ThreadShort, rowSpacing: 350, cardW: 200, cardH: 240}
	}
	return threadGeometry{w: ThreadShort, h: ThreadLong, rowSpacing: 400, cardW: 180, cardH: 220}
}

// RowSizes splits n cards into rows. Landscape pages hold 6 per row above
// 10 cards and two rows above 5; portrait pages 4 per row above 8 and two
// rows above 4. Smaller threads are a single row.
func RowSizes(n int, o Orientation) []int {
	if n <= 0 {
		return nil
	}
	perRow := n
	bigAt, bigRow, splitAt := 8, 4, 4
	if o == Landscape {
		bigAt, bigRow, splitAt = 10, 6, 5
	}
	switch {
	case n > bigAt:
		perRow = bigRow
	case n > splitAt:
		perRow = (n + 1) / 2
	}

	var rows []int
	for left := n; left > 0; left -= perRow {
		rows = append(rows, min(perRow, left))
	}
	return rows
}

// rope describes the curve of one row.
type rope struct {
	startX, endX float64 // first and last card x
	midY         float64
	depth        float64
}

func ropeFor(g threadGeometry, row, count int) rope {
	threadY := threadStartY + float64(row)*g.rowSpacing
	total := float64(count) * (g.cardW + cardGap)
	startX := (g.w-total)/2 + cardGap/2
	return rope{
		startX: startX,
		endX:   startX + total - cardGap,
		midY:   threadY + 60,
		depth:  math.Min(40, float64(count)*8),
	}
}

// at returns the rope height at progress p in [0,1].
func (r rope) at(p float64) float64 {
	return r.midY + math.Sin(p*math.Pi)*r.depth
}

// attachY returns the height at which card i of count hangs from the rope.
func (r rope) attachY(i, count int) float64 {
	return r.at(float64(i) / float64(max(1, count-1)))
}

// Thread renders t. Cards whose photo fails to load keep their place with an
// empty frame and are reported in Output.Warnings.
func (g *Generator) Thread(ctx context.Context, t Thread) (*Output, error) {
	if len(t.Cards) == 0 {
		return nil, ErrNoPhotos
	}
	orient, err := ParseOrientation(string(t.Orientation))
	if err != nil {
		return nil, err
	}
	geo := geometryFor(orient)
	rng := layout.NewRand(t.Seed)

	surf := g.surface(geo.w, geo.h)
	defer surf.Close()

	drawPaper(surf, rng, geo.w, geo.h)
	drawThreadHeading(surf, t, geo.w)

	var warnings []string
	index := 0
	for row, count := range RowSizes(len(t.Cards), orient) {
		r := ropeFor(geo, row, count)
		drawRope(surf, r, count)

		for i := range count {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			card := t.Cards[index]
			img, err := g.load(ctx, card.Photo)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"card":  index,
					"asset": card.Photo.ID,
					"error": err,
				}).Warn("Skipping thread photo that failed to load")
				warnings = append(warnings, fmt.Sprintf("card %d: %v", index+1, err))
			}

			x := r.startX + float64(i)*(geo.cardW+cardGap)
			cy := r.attachY(i, count) + stringLength + geo.cardH/2
			g.drawCard(surf, rng, geo, card, img, index, len(t.Cards), x+geo.cardW/2, cy)
			index++
		}
	}

	drawThreadFooter(surf, g.today(), geo.w, geo.h)

	out, err := finish(surf)
	if err != nil {
		return nil, err
	}
	return &Output{
		Image:    out,
		Filename: compositor.SuggestFilename(compositor.Thread, string(orient), t.Title, g.now(), ".png"),
		Warnings: warnings,
	}, nil
}

// drawPaper lays the watercolour wash, paper fibres, stains and sprinkles.
func drawPaper(surf canvas.Surface, rng *rand.Rand, w, h float64) {
	surf.SetLinearGradient(0, 0, w, h,
		canvas.Stop{Offset: 0, Color: canvas.MustColor("#fef7ed")},
		canvas.Stop{Offset: 0.3, Color: canvas.MustColor("#fdf2f8")},
		canvas.Stop{Offset: 0.7, Color: canvas.MustColor("#f0f9ff")},
		canvas.Stop{Offset: 1, Color: canvas.MustColor("#f8fafc")},
	)
	surf.FillRect(0, 0, w, h)

	for range threadSpecks {
		surf.SetColor(canvas.RGBA(139, 69, 19, rng.Float64()*0.03))
		x, y := rng.Float64()*w, rng.Float64()*h
		s := rng.Float64()*3 + 1
		surf.FillRect(x, y, s, s)
	}

	for range threadStains {
		x, y := rng.Float64()*w, rng.Float64()*h
		radius := rng.Float64()*80 + 40
		c := canvas.RGBA(
			uint8(rng.Float64()*100+100),
			uint8(rng.Float64()*100+100),
			uint8(rng.Float64()*100+150),
			0.04,
		)
		surf.SetRadialGradient(x, y, 0, radius,
			canvas.Stop{Offset: 0, Color: c},
			canvas.Stop{Offset: 1, Color: canvas.WithAlpha(c, 0)},
		)
		surf.FillRect(x-radius, y-radius, radius*2, radius*2)
	}

	surf.SetColor(canvas.RGBA(214, 158, 46, 0.35))
	for range threadSprinkle {
		size := rng.Float64()*20 + 15
		sparkle(surf, rng.Float64()*w, rng.Float64()*h, size/3)
	}
}

func drawThreadHeading(surf canvas.Surface, t Thread, w float64) {
	surf.SetHexColor("#4a5568")
	surf.SetFont(canvas.Font{Family: "serif", Size: 64, Bold: true})
	surf.FillText(t.Title, w/2, 120, textlayout.AlignCenter)

	surf.SetHexColor("#8b5a3c")
	surf.SetLineWidth(3)
	surf.MoveTo(w/2-200, 150)
	surf.QuadTo(w/2, 155, w/2+200, 150)
	surf.Stroke()

	if t.Description != "" {
		surf.SetHexColor("#718096")
		surf.SetFont(canvas.Font{Family: "serif", Size: 36, Italic: true})
		surf.FillText(t.Description, w/2, 200, textlayout.AlignCenter)
	}
}

// drawRope strokes the strands of one row and knots both ends.
func drawRope(surf canvas.Surface, r rope, count int) {
	left := r.startX - 50
	span := r.endX - r.startX + 100
	segments := max(3, count)

	for strand := range ropeStrands {
		off := float64(strand) * 2
		surf.SetColor(canvas.RGBA(139, 90, 60, 0.9-float64(strand)*0.15))
		surf.SetLineWidth(12 - off)

		surf.MoveTo(left, r.at(0)+off)
		for i := 1; i <= segments; i++ {
			p0 := float64(i-1) / float64(segments)
			p1 := float64(i) / float64(segments)
			x0, y0 := left+span*p0, r.at(p0)+off
			x1, y1 := left+span*p1, r.at(p1)+off
			surf.QuadTo((x0+x1)/2, (y0+y1)/2-5, x1, y1)
		}
		surf.Stroke()
	}

	surf.SetHexColor("#8b5a3c")
	surf.FillCircle(left, r.midY, 8)
	surf.FillCircle(r.endX+50, r.midY, 8)
}

var polaroidColors = []string{"#fefefe", "#fdfcfc", "#fcfbfb"}

// drawCard draws one polaroid centred on (cx, cy) with its string and clip.
func (g *Generator) drawCard(surf canvas.Surface, rng *rand.Rand, geo threadGeometry, card ThreadCard, img image.Image, index, total int, cx, cy float64) {
	pw, ph := geo.cardW, geo.cardH
	top := -ph / 2

	surf.Save()
	defer surf.Restore()
	surf.Translate(cx, cy)
	surf.Rotate((rng.Float64() - 0.5) * 0.15 * 180 / math.Pi)

	// String and clip.
	surf.SetHexColor("#8b5a3c")
	surf.SetLineWidth(2)
	surf.MoveTo(0, top-stringLength)
	surf.QuadTo(-15, top-stringLength/2, 0, top-20)
	surf.Stroke()

	surf.SetHexColor("#cd853f")
	surf.FillRect(-8, top-25, 16, 20)
	surf.SetHexColor("#8b5a3c")
	surf.FillRect(-6, top-23, 12, 3)
	surf.FillRect(-6, top-15, 12, 3)
	surf.SetHexColor("#a0a0a0")
	surf.SetLineWidth(1)
	surf.StrokeCircle(0, top-18, 3)
	surf.SetColor(canvas.RGBA(0, 0, 0, 0.2))
	surf.FillRect(-6, top-20, 12, 15)

	// Polaroid.
	surf.SetShadow(canvas.Shadow{Color: canvas.RGBA(0, 0, 0, 0.4), Blur: 25, OffsetX: 12, OffsetY: 15})
	surf.SetHexColor(polaroidColors[rng.Intn(len(polaroidColors))])
	surf.FillRect(-pw/2-20, top-20, pw+40, ph+80)
	surf.ClearShadow()
	surf.SetHexColor("#f0f0f0")
	surf.SetLineWidth(1)
	surf.StrokeRect(-pw/2-20, top-20, pw+40, ph+80)

	photoH := ph - cardLabel
	if img != nil {
		surf.DrawImage(coverCrop(img, pw, photoH, g.scale), -pw/2, top, pw, photoH)
	} else {
		surf.SetHexColor("#edf2f7")
		surf.FillRect(-pw/2, top, pw, photoH)
	}
	surf.SetHexColor("#e2e8f0")
	surf.SetLineWidth(2)
	surf.StrokeRect(-pw/2, top, pw, photoH)

	caption := card.Caption
	if caption == "" {
		caption = fmt.Sprintf("Memory %d", index+1)
	}
	surf.SetHexColor("#2d3748")
	surf.SetFont(canvas.Font{Family: "serif", Size: 18, Italic: true})
	surf.FillText(caption, 0, ph/2-35, textlayout.AlignCenter)

	surf.SetHexColor("#718096")
	surf.SetFont(canvas.Font{Family: "serif", Size: 14})
	surf.FillText(g.cardDate(card), 0, ph/2-15, textlayout.AlignCenter)

	// Stickers on the first and last card.
	if index == 0 {
		surf.SetHexColor("#e53e7a")
		heart(surf, -pw/2-15, top-12, 22)
	}
	if index == total-1 {
		surf.SetHexColor("#ecc94b")
		sparkle(surf, pw/2+15, top-12, 12)
	}
}

// coverCrop crops img to the w x h aspect and resamples it to the pixel
// size of that box at scale.
func coverCrop(img image.Image, w, h, scale float64) image.Image {
	pw := max(1, int(w*scale+0.5))
	ph := max(1, int(h*scale+0.5))
	return imaging.Fill(img, pw, ph, imaging.Center, imaging.Lanczos)
}

func (g *Generator) cardDate(c ThreadCard) string {
	if c.Date != "" {
		return c.Date
	}
	if !c.Photo.UploadedAt.IsZero() {
		return c.Photo.UploadedAt.Format(cardDateLayout)
	}
	return g.now().Format(cardDateLayout)
}

func drawThreadFooter(surf canvas.Surface, today string, w, h float64) {
	surf.SetHexColor("#d69e2e")
	for _, p := range [][2]float64{{100, 70}, {w - 100, 70}, {100, h - 90}, {w - 100, h - 90}} {
		sparkle(surf, p[0], p[1], 16)
	}

	surf.SetHexColor("#9ca3af")
	surf.SetFont(canvas.Font{Family: "serif", Size: 24, Italic: true})
	surf.FillText("Created with love on "+today, w/2, h-60, textlayout.AlignCenter)
	surf.FillText(Tagline, w/2, h-30, textlayout.AlignCenter)
}
