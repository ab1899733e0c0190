// sequence.go — Frame sequences: the wheel, the animated reel and the 3D
// gallery all render numbered frames and share their streaming and AVI
// packaging.
package artifact

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/xob0t/memoria/pkg/canvas"
	"github.com/xob0t/memoria/pkg/generator"
)

// Sequence is a prepared animation.
type Sequence interface {
	// Len is the number of frames.
	Len() int
	// Frame renders frame i of Len.
	Frame(i int) (image.Image, error)
	// Filename suggests a download name; ext includes the dot.
	Filename(ext string) string
}

// StreamFrames renders every frame of seq in order and hands each to yield.
// It stops at the first error from yield or when ctx is done.
func StreamFrames(ctx context.Context, seq Sequence, yield func(i int, img image.Image) error) error {
	for i := range seq.Len() {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := seq.Frame(i)
		if err != nil {
			return err
		}
		if err := yield(i, img); err != nil {
			return err
		}
	}
	return nil
}

// WriteSequenceAVI encodes every frame of seq as an MJPEG AVI.
func WriteSequenceAVI(ctx context.Context, seq Sequence, w io.Writer, fps, quality int) error {
	if fps <= 0 {
		fps = DefaultWheelFPS
	}
	reel := generator.NewReel(fps, quality)
	err := StreamFrames(ctx, seq, func(_ int, img image.Image) error {
		return reel.AddFrame(img)
	})
	if err != nil {
		return err
	}
	_, err = reel.WriteTo(w)
	return err
}

func checkFrame(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("frame %d out of range [0,%d)", i, n)
	}
	return nil
}

// videoScale caps the output scale at 1: frames are screen-sized.
func (g *Generator) videoScale() float64 {
	return math.Min(g.scale, 1)
}

// frameSurface returns a w x h surface in layout units at scale.
func (g *Generator) frameSurface(w, h, scale float64) canvas.Surface {
	surf := canvas.New(int(w*scale+0.5), int(h*scale+0.5), g.fonts)
	surf.Scale(scale, scale)
	return surf
}

// nightSky is the deep-violet backdrop shared by the video artifacts.
func nightSky(surf canvas.Surface, x1, y1, w, h float64) {
	surf.SetLinearGradient(0, 0, x1, y1,
		canvas.Stop{Offset: 0, Color: canvas.MustColor("#0f0f23")},
		canvas.Stop{Offset: 0.3, Color: canvas.MustColor("#1e1b4b")},
		canvas.Stop{Offset: 0.7, Color: canvas.MustColor("#581c87")},
		canvas.Stop{Offset: 1, Color: canvas.MustColor("#1e1b4b")},
	)
	surf.FillRect(0, 0, w, h)
}
