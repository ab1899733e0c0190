package layout

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/xob0t/memoria/pkg/media"
)

func testAssets(n int) []media.Asset {
	assets := make([]media.Asset, n)
	for i := range assets {
		assets[i] = media.Asset{ID: fmt.Sprintf("asset-%d", i), Name: fmt.Sprintf("photo%d.jpg", i)}
	}
	return assets
}

// TestBoundsInvariant verifies that every template keeps every item inside
// the canvas for n = 1..20 and several canvas shapes. A failure prints the
// offending template, n and box.
func TestBoundsInvariant(t *testing.T) {
	canvases := [][2]float64{{800, 600}, {300, 200}, {150, 900}}
	for _, tmpl := range Templates {
		for _, cv := range canvases {
			for n := 1; n <= 20; n++ {
				items, err := Compute(testAssets(n), tmpl, cv[0], cv[1], 20, NewRand(int64(n)))
				if err != nil {
					t.Fatalf("%s: %v", tmpl, err)
				}
				if len(items) != n {
					t.Fatalf("%s n=%d: got %d items", tmpl, n, len(items))
				}
				for i, it := range items {
					if it.X < 0 || it.Y < 0 || it.X+it.Width > cv[0]+1e-9 || it.Y+it.Height > cv[1]+1e-9 {
						t.Fatalf("%s n=%d canvas=%v item %d out of bounds: x=%v y=%v w=%v h=%v",
							tmpl, n, cv, i, it.X, it.Y, it.Width, it.Height)
					}
					if it.Width <= 0 || it.Height <= 0 {
						t.Fatalf("%s n=%d item %d has non-positive size", tmpl, n, i)
					}
					if it.Z != i {
						t.Fatalf("%s item %d z = %d, want input index", tmpl, i, it.Z)
					}
				}
			}
		}
	}
}

// TestGridScenario checks the 4-asset 800x600 grid: a 2x2 layout of
// 370x270 cells starting at the spacing offset.
func TestGridScenario(t *testing.T) {
	items, err := Compute(testAssets(4), Grid, 800, 600, 20, NewRand(1))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	want := [][2]float64{{20, 20}, {410, 20}, {20, 310}, {410, 310}}
	for i, it := range items {
		if math.Abs(it.Width-370) > 1e-9 || math.Abs(it.Height-270) > 1e-9 {
			t.Fatalf("item %d size = %vx%v, want 370x270", i, it.Width, it.Height)
		}
		if it.X != want[i][0] || it.Y != want[i][1] {
			t.Fatalf("item %d at (%v,%v), want %v", i, it.X, it.Y, want[i])
		}
		if it.Rotation != 0 {
			t.Fatalf("grid item %d rotated by %v", i, it.Rotation)
		}
	}
}

// TestRandomRanges checks size and rotation ranges of the random templates.
func TestRandomRanges(t *testing.T) {
	rng := NewRand(42)
	over, _ := Compute(testAssets(50), Overlapping, 800, 600, 0, rng)
	for _, it := range over {
		if it.Width < 240*0.85-1e-9 || it.Width > 240*1.15+1e-9 || it.Width != it.Height {
			t.Fatalf("overlapping size %v outside 240±15%%", it.Width)
		}
		if math.Abs(it.Rotation) > 15 {
			t.Fatalf("overlapping rotation %v outside ±15", it.Rotation)
		}
	}

	pol, _ := Compute(testAssets(50), Polaroid, 800, 600, 0, rng)
	for _, it := range pol {
		if it.Width != PolaroidWidth || it.Height != PolaroidHeight || math.Abs(it.Rotation) > 22.5 {
			t.Fatalf("polaroid item %+v", it)
		}
	}

	free, _ := Compute(testAssets(50), Freeform, 800, 600, 0, rng)
	for _, it := range free {
		if it.Width < FreeformMin || it.Width > FreeformMin+FreeformRange || it.Rotation != 0 {
			t.Fatalf("freeform item %+v", it)
		}
	}
}

// TestSeededLayoutReproducible checks the same seed gives the same layout.
func TestSeededLayoutReproducible(t *testing.T) {
	a, _ := Compute(testAssets(6), Overlapping, 800, 600, 20, NewRand(7))
	b, _ := Compute(testAssets(6), Overlapping, 800, 600, 20, NewRand(7))
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y || a[i].Width != b[i].Width || a[i].Rotation != b[i].Rotation {
			t.Fatalf("item %d differs between identical seeds", i)
		}
	}
}

// TestHeartSymmetry verifies x(t) == -x(2π - t) and y(t) == y(2π - t) for
// evenly distributed parameters, and that the placed items mirror about the
// vertical centerline.
func TestHeartSymmetry(t *testing.T) {
	const n = 12
	for i := 0; i < n; i++ {
		tt := float64(i) / n * 2 * math.Pi
		x1, y1 := HeartPoint(tt)
		x2, y2 := HeartPoint(2*math.Pi - tt)
		if math.Abs(x1+x2) > 1e-9 || math.Abs(y1-y2) > 1e-9 {
			t.Fatalf("t=%v: (%v,%v) vs mirror (%v,%v)", tt, x1, y1, x2, y2)
		}
	}

	items, _ := Compute(testAssets(n), Heart, 800, 600, 0, nil)
	for i := 1; i < n; i++ {
		a, b := items[i], items[n-i]
		ca := a.X + a.Width/2 - 400
		cb := b.X + b.Width/2 - 400
		if math.Abs(ca+cb) > 1e-9 || math.Abs(a.Y-b.Y) > 1e-9 {
			t.Fatalf("items %d and %d are not mirrored: %v/%v vs %v/%v", i, n-i, ca, a.Y, cb, b.Y)
		}
	}
}

// TestUnknownTemplate makes sure unknown names fail loudly.
func TestUnknownTemplate(t *testing.T) {
	if _, err := ParseTemplate("spiral"); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("ParseTemplate err = %v", err)
	}
	if _, err := Compute(testAssets(1), Template("spiral"), 100, 100, 0, nil); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("Compute err = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("MustParseTemplate did not panic")
		}
	}()
	MustParseTemplate("spiral")
}

// TestRadial checks equal angular spacing around the centre.
func TestRadial(t *testing.T) {
	pts := Radial(8, 100, 100, 50, 0)
	if len(pts) != 8 {
		t.Fatalf("got %d points", len(pts))
	}
	for i, p := range pts {
		if math.Abs(p.Angle-float64(i)*45) > 1e-9 {
			t.Fatalf("point %d angle %v", i, p.Angle)
		}
		if d := math.Hypot(p.X-100, p.Y-100); math.Abs(d-50) > 1e-9 {
			t.Fatalf("point %d radius %v", i, d)
		}
	}
	if Radial(0, 0, 0, 1, 0) != nil {
		t.Fatal("Radial(0) should be empty")
	}
}
