package compositor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"
	"time"

	"github.com/xob0t/memoria/pkg/generator"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/scene"
	"github.com/xob0t/memoria/pkg/theme"
)

// memLoader serves pre-decoded images keyed by asset id and counts loads.
type memLoader struct {
	images map[string]image.Image
	calls  map[string]int
}

func (m *memLoader) Load(_ context.Context, a media.Asset) (image.Image, error) {
	m.calls[a.ID]++
	img, ok := m.images[a.ID]
	if !ok {
		return nil, errors.New("missing")
	}
	return img, nil
}

func fixture(t *testing.T) (*scene.Composition, []media.Asset, *memLoader) {
	t.Helper()
	assets := []media.Asset{
		{ID: "a", Name: "beach.jpg", Source: "a.jpg"},
		{ID: "b", Name: "party.jpg", Source: "b.jpg"},
	}
	loader := &memLoader{
		images: map[string]image.Image{
			"a": generator.NewSolidImage(40, 30, color.RGBA{200, 30, 30, 255}),
			"b": generator.NewSolidImage(30, 40, color.RGBA{30, 30, 200, 255}),
		},
		calls: map[string]int{},
	}

	comp := scene.New()
	comp.Width, comp.Height = 200, 150
	comp.Add(scene.NewPhoto("a", 10, 10, 80, 60, 0, 0))
	comp.Add(scene.NewPhoto("b", 100, 40, 60, 80, 15, 1))
	comp.Add(scene.NewPhoto("a", 40, 70, 50, 40, -10, 2))
	txt := comp.NewText("Summer")
	txt.Text.Style.Shadow = true
	txt.Text.Style.Decoration = "underline"
	txt.Text.Style.Background = "#ffffffcc"
	comp.Add(txt)
	return comp, assets, loader
}

// TestRenderDeterministic checks that two renders of the same input are
// pixel-identical and that each asset is decoded once per render.
func TestRenderDeterministic(t *testing.T) {
	comp, assets, loader := fixture(t)
	r := NewRenderer(loader)

	first, warns, err := r.Render(context.Background(), comp, assets)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings %v", warns)
	}
	if loader.calls["a"] != 1 {
		t.Errorf("asset a loaded %d times in one render", loader.calls["a"])
	}
	second, _, err := r.Render(context.Background(), comp, assets)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if first.Bounds() != image.Rect(0, 0, 400, 300) {
		t.Fatalf("bounds = %v, want supersampled 400x300", first.Bounds())
	}
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			if first.At(x, y) != second.At(x, y) {
				t.Fatalf("pixel (%d,%d) differs between renders", x, y)
			}
		}
	}
}

// TestRenderSkipsFailedAssets checks that a failing asset only costs its
// item and is reported as a warning.
func TestRenderSkipsFailedAssets(t *testing.T) {
	comp, assets, loader := fixture(t)
	delete(loader.images, "b")

	img, warns, err := NewRenderer(loader, WithSupersample(1)).Render(context.Background(), comp, assets)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(warns) != 1 || !strings.Contains(warns[0], "missing") {
		t.Errorf("warnings = %v", warns)
	}
	// Centre of photo "a" (first item) is still drawn in red.
	c := color.NRGBAModel.Convert(img.At(30, 30)).(color.NRGBA)
	if c.R < 150 || c.B > 80 {
		t.Errorf("photo a missing at centre: %v", c)
	}
}

// TestExportNothingVisible is the empty-export scenario: no blank image.
func TestExportNothingVisible(t *testing.T) {
	comp, assets, loader := fixture(t)
	for i := range comp.Items {
		comp.Items[i].Visible = false
	}
	res, err := NewRenderer(loader).Export(context.Background(), comp, assets, generator.JPEG)
	if !errors.Is(err, ErrNothingToRender) {
		t.Fatalf("err = %v, want ErrNothingToRender", err)
	}
	if res != nil {
		t.Error("declined export returned a result")
	}
}

// TestExportJPEG checks encoding, MIME and the collage filename.
func TestExportJPEG(t *testing.T) {
	comp, assets, loader := fixture(t)
	comp.Theme = "sage"
	now := time.UnixMilli(1700000000123)

	res, err := NewRenderer(loader, WithClock(func() time.Time { return now })).
		Export(context.Background(), comp, assets, generator.JPEG)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.MIME != "image/jpeg" || res.Filename != "memoria-collage-1700000000123.jpg" {
		t.Errorf("result = %s %s", res.MIME, res.Filename)
	}
	img, err := jpeg.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 400 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}

// TestUnknownThemeFails checks that a bad theme id is a hard error.
func TestUnknownThemeFails(t *testing.T) {
	comp, assets, loader := fixture(t)
	comp.Theme = "neon"
	_, _, err := NewRenderer(loader).Render(context.Background(), comp, assets)
	if !errors.Is(err, theme.ErrUnknownTheme) {
		t.Fatalf("err = %v", err)
	}
}

// TestRenderCancelled checks that a cancelled context stops the render.
func TestRenderCancelled(t *testing.T) {
	comp, assets, loader := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewRenderer(loader).Render(ctx, comp, assets); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

// TestSuggestFilename covers each artifact pattern.
func TestSuggestFilename(t *testing.T) {
	now := time.UnixMilli(42)
	tests := []struct {
		kind            Artifact
		orient, subject string
		ext, want       string
	}{
		{Collage, "", "", ".jpg", "memoria-collage-42.jpg"},
		{Certificate, "portrait", "beach.day.jpg", ".jpg", "memory-certificate-portrait-beach.day.jpg"},
		{Thread, "landscape", "Our  Summer Trip", ".png", "memory-thread-landscape-our-summer-trip.png"},
		{Wheel, "", "party.png", ".jpg", "memory-wheel-video-party.jpg"},
		{Reel, "", "", ".avi", "ai-memory-reel-42.avi"},
		{Gallery, "cube", "Preview", ".jpg", "3d-gallery-cube-preview.jpg"},
		{Gallery, "sphere", "", ".avi", "3d-gallery-sphere.avi"},
		{Moment, "movement_peak", "1m05s", ".png", "unspoken-moment-movement_peak-1m05s.png"},
	}
	for _, tt := range tests {
		if got := SuggestFilename(tt.kind, tt.orient, tt.subject, now, tt.ext); got != tt.want {
			t.Errorf("SuggestFilename(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
