// certificate.go — Printable memory certificates in portrait and landscape.
package artifact

import (
	"context"
	"image"
	"math"
	"math/rand"

	"github.com/xob0t/memoria/pkg/canvas"
	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/textlayout"
	"github.com/xob0t/memoria/pkg/theme"
)

// Certificate describes one certificate. Empty Title, Caption, Emotion and
// Date are filled from the photo and Seed.
type Certificate struct {
	Photo       media.Asset `json:"photo"`
	Title       string      `json:"title,omitempty"`
	Caption     string      `json:"caption,omitempty"`
	Emotion     string      `json:"emotion,omitempty"`
	Date        string      `json:"date,omitempty"`
	Theme       string      `json:"theme,omitempty"`
	Orientation Orientation `json:"orientation,omitempty"`
	Seed        int64       `json:"seed,omitempty"`
}

// Certificate page sizes in layout units.
const (
	CertificateShort = 1200
	CertificateLong  = 1584
)

const (
	certBorderInset = 40
	certInnerInset  = 60
	certSpecks      = 200
	certSubtitle    = "Memory Certificate"
)

// Certificate renders c.
func (g *Generator) Certificate(ctx context.Context, c Certificate) (*Output, error) {
	if c.Photo.Source == "" && c.Photo.ID == "" {
		return nil, ErrNoPhotos
	}
	orient, err := ParseOrientation(string(c.Orientation))
	if err != nil {
		return nil, err
	}
	th, err := g.theme(c.Theme)
	if err != nil {
		return nil, err
	}

	rng := layout.NewRand(c.Seed)
	c = g.fillCertificate(c, rng)

	img, err := g.load(ctx, c.Photo)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := float64(CertificateShort), float64(CertificateLong)
	if orient == Landscape {
		w, h = h, w
	}
	surf := g.surface(w, h)
	defer surf.Close()

	// Page, texture and double border.
	surf.SetLinearGradient(0, 0, w, h, th.BackgroundStops()...)
	surf.FillRect(0, 0, w, h)
	surf.SetColor(canvas.WithAlpha(canvas.MustColor(th.Colors.Accent), 0x15/255.0))
	specks(surf, rng, certSpecks, w, h, func(r float64) float64 { return r*2 + 1 })

	surf.SetHexColor(th.Colors.Accent)
	surf.SetLineWidth(3)
	surf.StrokeRect(certBorderInset, certBorderInset, w-2*certBorderInset, h-2*certBorderInset)
	surf.SetHexColor(th.Colors.Primary)
	surf.SetLineWidth(1)
	surf.StrokeRect(certInnerInset, certInnerInset, w-2*certInnerInset, h-2*certInnerInset)

	if orient == Portrait {
		drawPortraitCertificate(surf, c, th, img, w, h)
	} else {
		drawLandscapeCertificate(surf, c, th, img, w, h)
	}

	out, err := finish(surf)
	if err != nil {
		return nil, err
	}
	return &Output{
		Image:    out,
		Filename: compositor.SuggestFilename(compositor.Certificate, string(orient), c.Photo.Name, g.now(), ".jpg"),
	}, nil
}

// fillCertificate resolves the empty fields of c.
func (g *Generator) fillCertificate(c Certificate, r *rand.Rand) Certificate {
	subject := c.Photo.DetectSubject()
	if c.Emotion == "" {
		c.Emotion = PickEmotion(c.Photo, r)
	}
	if c.Title == "" {
		c.Title = PickTitle(subject, c.Emotion, r)
	}
	if c.Caption == "" {
		c.Caption = PickCaption(subject, r)
	}
	if c.Date == "" {
		c.Date = g.today()
	}
	return c
}

func drawPortraitCertificate(surf canvas.Surface, c Certificate, th theme.Theme, img image.Image, w, h float64) {
	const (
		padding = 80
		titleY  = 180
	)
	contentW := w - padding*2

	surf.SetHexColor(th.Colors.Primary)
	surf.SetFont(th.Title(72, true))
	drawLines(surf, textlayout.WrapAndCenter(c.Title, contentW-40, w/2, titleY, 80, surf))

	surf.SetHexColor(th.Colors.Accent)
	surf.SetFont(th.Subtitle(36))
	surf.FillText(certSubtitle, w/2, titleY+120, textlayout.AlignCenter)
	ornaments(surf, th, []float64{w/2 - 100, w / 2, w/2 + 100}, titleY+150, 28)

	// Photo box: bounded height, aspect kept, centred.
	photoStartY := float64(titleY + 200)
	iw, ih := imageSize(img)
	ph := math.Min(700, (h-photoStartY-400)*0.7)
	pw, ph := fitInside(iw, ih, contentW-80, ph)
	px := (w - pw) / 2
	py := photoStartY + 50
	framedPhoto(surf, th, img, px, py, pw, ph, 20, canvas.Shadow{
		Color: canvas.RGBA(0, 0, 0, 0.3), Blur: 30, OffsetX: 15, OffsetY: 15,
	}, 4)

	captionY := py + ph + 80
	surf.SetHexColor(th.Colors.Text)
	surf.SetFont(th.Body(24, false))
	drawLines(surf, textlayout.WrapAndJustify(c.Caption, contentW-40, w/2, captionY, 35, 3, surf))

	emotionY := captionY + 140
	surf.SetHexColor(th.Colors.Accent)
	surf.SetFont(th.Subtitle(20))
	surf.FillText("Emotion: "+capitalize(c.Emotion), w/2, emotionY, textlayout.AlignCenter)

	badgeY := emotionY + 80
	badge(surf, th, w/2, badgeY, 400, 60, 24, c.Date)

	surf.SetHexColor(th.Colors.Accent)
	surf.SetFont(th.Subtitle(18))
	surf.FillText(Tagline, w/2, badgeY+120, textlayout.AlignCenter)
}

func drawLandscapeCertificate(surf canvas.Surface, c Certificate, th theme.Theme, img image.Image, w, h float64) {
	const (
		padding    = 60
		titleY     = 150
		titleStep  = 50
		captionMax = 8
		captionLH  = 25
	)
	contentW := w - padding*2
	leftW := contentW * 0.35
	rightW := contentW * 0.6
	gap := contentW * 0.05
	leftX := float64(padding)
	rightX := leftX + leftW + gap
	textX := leftX + 20

	surf.SetHexColor(th.Colors.Primary)
	surf.SetFont(th.Title(42, true))
	titleLines := textlayout.Wrap(c.Title, leftW-40, surf)
	for i, l := range titleLines {
		surf.FillText(l, textX, titleY+float64(i)*titleStep, textlayout.AlignLeft)
	}

	subtitleY := titleY + float64(len(titleLines))*titleStep + 30
	surf.SetHexColor(th.Colors.Accent)
	surf.SetFont(th.Subtitle(24))
	surf.FillText(certSubtitle, textX, subtitleY, textlayout.AlignLeft)

	decorY := subtitleY + 40
	ornaments(surf, th, []float64{textX + 14, textX + 64, textX + 114}, decorY-10, 24)
	surf.SetHexColor(th.Colors.Accent)
	surf.SetLineWidth(1)
	surf.MoveTo(textX, decorY+18)
	surf.LineTo(leftX+leftW-20, decorY+18)
	surf.Stroke()

	captionY := decorY + 60
	surf.SetHexColor(th.Colors.Text)
	surf.SetFont(th.Body(18, false))
	captionLines := textlayout.WrapTruncate(c.Caption, leftW-40, captionMax, surf)
	for i, l := range captionLines {
		surf.FillText(l, textX, captionY+float64(i)*captionLH, textlayout.AlignLeft)
	}

	emotionY := captionY + float64(len(captionLines))*captionLH + 40
	surf.SetHexColor(th.Colors.Accent)
	surf.SetFont(th.Subtitle(16))
	surf.FillText("Emotion: "+capitalize(c.Emotion), textX, emotionY, textlayout.AlignLeft)

	iw, ih := imageSize(img)
	pw, ph := fitInside(iw, ih, rightW-40, h-200)
	px := rightX + (rightW-pw)/2
	py := (h - ph) / 2
	framedPhoto(surf, th, img, px, py, pw, ph, 15, canvas.Shadow{
		Color: canvas.RGBA(0, 0, 0, 0.3), Blur: 25, OffsetX: 12, OffsetY: 12,
	}, 3)

	badgeY := h - 120
	badge(surf, th, w/2, badgeY, 350, 45, 18, c.Date)

	surf.SetHexColor(th.Colors.Accent)
	surf.SetFont(th.Subtitle(14))
	surf.FillText(Tagline, w/2, badgeY+60, textlayout.AlignCenter)
}

// framedPhoto draws a shadowed white mat, the photo, and an accent outline.
func framedPhoto(surf canvas.Surface, th theme.Theme, img image.Image, x, y, w, h, mat float64, sh canvas.Shadow, outline float64) {
	surf.Save()
	surf.SetShadow(sh)
	surf.SetColor(canvas.MustColor("#ffffff"))
	surf.FillRect(x-mat, y-mat, w+2*mat, h+2*mat)
	surf.ClearShadow()
	surf.DrawImage(img, x, y, w, h)
	surf.SetHexColor(th.Colors.Accent)
	surf.SetLineWidth(outline)
	surf.StrokeRect(x, y, w, h)
	surf.Restore()
}

// badge draws the "Certified on" plate centred on cx.
func badge(surf canvas.Surface, th theme.Theme, cx, y, w, h, size float64, date string) {
	surf.SetHexColor(th.Colors.Primary)
	surf.FillRect(cx-w/2, y, w, h)
	surf.SetHexColor("#ffffff")
	surf.SetFont(th.Body(size, true))
	surf.FillText("Certified on "+date, cx, y+h/2+size/3, textlayout.AlignCenter)
}

// ornaments draws a sparkle, a camera lens and a heart centred on xs.
func ornaments(surf canvas.Surface, th theme.Theme, xs []float64, cy, size float64) {
	surf.SetHexColor(th.Colors.Accent)
	sparkle(surf, xs[0], cy, size/2)

	surf.SetLineWidth(2)
	surf.StrokeRoundedRect(xs[1]-size/2, cy-size/3, size, size*2/3, 4)
	surf.StrokeCircle(xs[1], cy, size/5)

	surf.SetHexColor(th.Colors.Primary)
	heart(surf, xs[2], cy, size)
}
