package canvas

import (
	"image"
	"image/color"
	"log/slog"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/textlayout"
)

func newTestSurface(t *testing.T, w, h int) Surface {
	t.Helper()
	s := New(w, h, nil)
	t.Cleanup(func() { s.Close() })
	return s
}

func rgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d > -6 && d < 6
}

// TestParseColor covers the accepted notations and rejections.
func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#ff0000", color.NRGBA{255, 0, 0, 255}, true},
		{"#0f0", color.NRGBA{0, 255, 0, 255}, true},
		{"#00000080", color.NRGBA{0, 0, 0, 128}, true},
		{"transparent", color.NRGBA{}, true},
		{"none", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, false},
		{"#gggggg", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("ParseColor(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if MustColor("bogus") != (color.NRGBA{255, 255, 255, 255}) {
		t.Error("MustColor fallback is not white")
	}
	if WithAlpha(color.Black, 0.5).A != 128 {
		t.Error("WithAlpha did not set alpha")
	}
}

// TestFillRectUnderTransform checks that fills follow translate and scale.
func TestFillRectUnderTransform(t *testing.T) {
	s := newTestSurface(t, 100, 100)
	s.Scale(2, 2)
	s.Translate(10, 10)
	s.SetHexColor("#ff0000")
	s.FillRect(0, 0, 10, 10)
	if err := s.Err(); err != nil {
		t.Fatal(err)
	}

	img := s.Image()
	if c := rgbaAt(img, 30, 30); c.R != 255 || c.A != 255 {
		t.Errorf("inside pixel = %v", c)
	}
	if c := rgbaAt(img, 10, 10); c.A != 0 {
		t.Errorf("outside pixel = %v", c)
	}
}

// TestSaveRestore checks that colour, alpha and transform are restored.
func TestSaveRestore(t *testing.T) {
	s := newTestSurface(t, 40, 20)
	s.SetHexColor("#0000ff")
	s.Save()
	s.Translate(20, 0)
	s.SetHexColor("#00ff00")
	s.SetAlpha(0)
	s.Restore()
	s.FillRect(0, 0, 10, 10)

	img := s.Image()
	if c := rgbaAt(img, 5, 5); c.B != 255 || c.A != 255 {
		t.Errorf("restored fill = %v", c)
	}
	if c := rgbaAt(img, 25, 5); c.A != 0 {
		t.Errorf("translate leaked past Restore: %v", c)
	}
}

// TestDrawImageRotated checks that a rotated image covers its centre and
// stays out of the corners a 45 degree turn uncovers.
func TestDrawImageRotated(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i := range src.Pix {
		src.Pix[i] = 255
	}

	s := newTestSurface(t, 100, 100)
	s.Translate(50, 50)
	s.Rotate(45)
	s.DrawImage(src, -30, -30, 60, 60)

	img := s.Image()
	if c := rgbaAt(img, 50, 50); c.A < 250 || !near(c.R, 255) {
		t.Errorf("centre = %v", c)
	}
	if c := rgbaAt(img, 22, 22); c.A != 0 {
		t.Errorf("corner covered after rotation: %v", c)
	}
	if c := rgbaAt(img, 50, 12); c.A == 0 {
		t.Errorf("rotated tip missing: %v", c)
	}
}

// TestShadowOffset checks that a shadow lands at the offset and is not
// painted inside an untouched region.
func TestShadowOffset(t *testing.T) {
	s := newTestSurface(t, 100, 100)
	s.SetShadow(Shadow{Color: color.NRGBA{0, 0, 0, 255}, OffsetX: 30, OffsetY: 0})
	s.SetHexColor("#ffffff")
	s.FillRect(10, 10, 20, 20)

	img := s.Image()
	if c := rgbaAt(img, 50, 20); c.A < 200 || c.R > 10 {
		t.Errorf("shadow pixel = %v", c)
	}
	if c := rgbaAt(img, 20, 20); c.R != 255 {
		t.Errorf("shape pixel = %v", c)
	}
	if c := rgbaAt(img, 80, 80); c.A != 0 {
		t.Errorf("stray paint = %v", c)
	}
}

// TestTextMeasureAndDraw checks measurement growth and that text paints
// somewhere near its anchor.
func TestTextMeasureAndDraw(t *testing.T) {
	s := newTestSurface(t, 200, 60)
	s.SetFont(Font{Family: "sans-serif", Size: 20})
	short, long := s.MeasureWidth("Hi"), s.MeasureWidth("Hi there")
	if short <= 0 || long <= short {
		t.Fatalf("widths %v, %v", short, long)
	}

	s.SetFont(Font{Family: "sans-serif", Size: 40})
	if big := s.MeasureWidth("Hi"); big <= short {
		t.Errorf("larger font measured %v <= %v", big, short)
	}

	s.SetHexColor("#000000")
	s.FillText("Memoria", 100, 40, textlayout.AlignCenter)
	if err := s.Err(); err != nil {
		t.Fatal(err)
	}
	img := s.Image()
	painted := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 200; x++ {
			if rgbaAt(img, x, y).A > 0 {
				painted++
			}
		}
	}
	if painted == 0 {
		t.Error("FillText painted nothing")
	}
}

// TestFontVariants checks family and style mapping.
func TestFontVariants(t *testing.T) {
	tests := []struct {
		f    Font
		want variant
	}{
		{Font{Family: "Arial"}, variant{}},
		{Font{Family: "Courier New", Bold: true}, variant{mono: true, bold: true}},
		{Font{Family: "cursive"}, variant{italic: true}},
		{Font{Family: "serif", Bold: true, Italic: true}, variant{bold: true, italic: true}},
	}
	for _, tt := range tests {
		if got := variantFor(tt.f); got != tt.want {
			t.Errorf("variantFor(%+v) = %+v, want %+v", tt.f, got, tt.want)
		}
	}
}

// TestLogrusLevels checks the slog to logrus level mapping.
func TestLogrusLevels(t *testing.T) {
	tests := map[slog.Level]logrus.Level{
		slog.LevelDebug: logrus.DebugLevel,
		slog.LevelInfo:  logrus.InfoLevel,
		slog.LevelWarn:  logrus.WarnLevel,
		slog.LevelError: logrus.ErrorLevel,
	}
	for in, want := range tests {
		if got := logrusLevel(in); got != want {
			t.Errorf("logrusLevel(%v) = %v, want %v", in, got, want)
		}
	}
}
