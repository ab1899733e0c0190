package compositor

import (
	"image"

	"github.com/xob0t/memoria/pkg/canvas"
	"github.com/xob0t/memoria/pkg/scene"
	"github.com/xob0t/memoria/pkg/textlayout"
	"github.com/xob0t/memoria/pkg/theme"
)

// Fixed decoration parameters, in composition units.
const (
	photoShadowOffset = 8
	photoShadowAlpha  = 0.3
	outlineWidth      = 2
	textShadowBlur    = 4
	textShadowOffset  = 2
	textShadowAlpha   = 0.5
	underlineWidth    = 2
	underlineDrop     = 0.1 // of the font size, below the baseline
)

// drawPhoto draws a photo centred on its box and rotated about the centre.
// The shadow is attached to the border rectangle, or to the photo itself
// when there is no border.
func drawPhoto(surf canvas.Surface, it scene.Item, img image.Image, set scene.Settings, th *theme.Theme) {
	surf.Save()
	defer surf.Restore()

	surf.Translate(it.X+it.Width/2, it.Y+it.Height/2)
	surf.Rotate(it.Rotation)

	hw, hh := it.Width/2, it.Height/2
	if set.ShadowIntensity > 0 {
		surf.SetShadow(canvas.Shadow{
			Color:   canvas.RGBA(0, 0, 0, photoShadowAlpha),
			Blur:    set.ShadowIntensity,
			OffsetX: photoShadowOffset,
			OffsetY: photoShadowOffset,
		})
	}
	if b := set.BorderWidth; b > 0 {
		surf.SetHexColor("#ffffff")
		surf.FillRoundedRect(-hw-b, -hh-b, it.Width+2*b, it.Height+2*b, set.BorderRadius)
		surf.ClearShadow()
	}

	surf.DrawImage(img, -hw, -hh, it.Width, it.Height)
	surf.ClearShadow()

	if th != nil {
		surf.SetHexColor(th.Colors.Accent)
		surf.SetLineWidth(outlineWidth)
		surf.StrokeRect(-hw, -hh, it.Width, it.Height)
	}
}

// drawText draws a single-line text item. The anchor is the horizontal
// centre of the box at half the font size below its top; the baseline sits
// on the anchor.
func drawText(surf canvas.Surface, it scene.Item) {
	st := it.Text.Style
	content := it.Text.Content

	surf.Save()
	defer surf.Restore()

	surf.Translate(it.X+it.Width/2, it.Y+st.FontSize/2)
	surf.Rotate(it.Rotation)
	surf.SetFont(canvas.Font{
		Family: st.FontFamily,
		Size:   st.FontSize,
		Bold:   st.Bold(),
		Italic: st.Italic(),
	})

	align := alignOf(st.Align)
	width := surf.MeasureWidth(content)
	left := anchorLeft(align, width)

	if st.HasBackground() {
		p := st.Padding
		surf.SetHexColor(st.Background)
		surf.FillRoundedRect(left-p, -st.FontSize/2-p, width+2*p, st.FontSize+2*p, st.Radius)
	}

	if st.Shadow {
		surf.SetShadow(canvas.Shadow{
			Color:   canvas.RGBA(0, 0, 0, textShadowAlpha),
			Blur:    textShadowBlur,
			OffsetX: textShadowOffset,
			OffsetY: textShadowOffset,
		})
	}

	surf.SetHexColor(st.Color)
	surf.SetAlpha(st.Opacity)
	surf.FillText(content, 0, 0, align)
	surf.ClearShadow()

	if st.Underlined() {
		y := st.FontSize * underlineDrop
		surf.SetLineWidth(underlineWidth)
		surf.MoveTo(left, y)
		surf.LineTo(left+width, y)
		surf.Stroke()
	}
}

func alignOf(s string) textlayout.Align {
	switch s {
	case "left":
		return textlayout.AlignLeft
	case "right":
		return textlayout.AlignRight
	default:
		return textlayout.AlignCenter
	}
}

// anchorLeft returns the left edge of a run of the given width drawn at x=0.
func anchorLeft(a textlayout.Align, width float64) float64 {
	switch a {
	case textlayout.AlignLeft:
		return 0
	case textlayout.AlignRight:
		return -width
	default:
		return -width / 2
	}
}
