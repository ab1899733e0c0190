package theme

import (
	"errors"
	"strings"
	"testing"
)

// TestBuiltins checks that the five palettes exist in their fixed order.
func TestBuiltins(t *testing.T) {
	r := NewRegistry()
	want := []string{"elegant", "blush", "muted-gold", "sage", "lavender"}
	all := r.All()
	if len(all) != len(want) {
		t.Fatalf("got %d themes, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("theme %d = %q, want %q", i, all[i].ID, id)
		}
	}

	sage := r.MustLookup("sage")
	if sage.Colors.Accent != "#9CAF88" || sage.Fonts.Subtitle != "cursive" {
		t.Errorf("sage = %+v", sage)
	}
}

// TestUnknownTheme checks the sentinel and the panicking variant.
func TestUnknownTheme(t *testing.T) {
	if _, err := Lookup("neon"); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("Lookup(neon) err = %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("MustLookup did not panic")
		}
	}()
	MustLookup("neon")
}

// TestLoadYAML checks defaults, ordering of extra themes and colour validation.
func TestLoadYAML(t *testing.T) {
	r := NewRegistry()
	ids, err := r.Load(strings.NewReader(`
themes:
  - id: ocean
    colors:
      primary: "#1E3A5F"
      secondary: "#E0F2FE"
      accent: "#0EA5E9"
      background: "#F0F9FF"
      text: "#334155"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ids) != 1 || ids[0] != "ocean" {
		t.Fatalf("ids = %v", ids)
	}
	ocean := r.MustLookup("ocean")
	if ocean.Name != "ocean" || ocean.Fonts.Title != "serif" {
		t.Errorf("defaults not applied: %+v", ocean)
	}
	if all := r.All(); all[len(all)-1].ID != "ocean" {
		t.Errorf("extra theme not listed last")
	}

	_, err = r.Load(strings.NewReader(`
themes:
  - id: broken
    colors: {primary: "nope", secondary: "#fff", accent: "#fff", background: "#fff", text: "#000"}
`))
	if err == nil {
		t.Error("invalid colour accepted")
	}
	if _, err := r.Lookup("broken"); err == nil {
		t.Error("invalid theme registered")
	}
}

// TestFormatThemes checks that every id appears in the listing.
func TestFormatThemes(t *testing.T) {
	out := FormatThemes(NewRegistry())
	for _, id := range []string{"elegant", "blush", "muted-gold", "sage", "lavender"} {
		if !strings.Contains(out, "["+id+"]") {
			t.Errorf("listing lacks %s", id)
		}
	}
}

// TestBackgroundStops checks the three-stop gradient shape.
func TestBackgroundStops(t *testing.T) {
	stops := MustLookup("blush").BackgroundStops()
	if len(stops) != 3 || stops[1].Offset != 0.5 {
		t.Fatalf("stops = %+v", stops)
	}
	if stops[0].Color != stops[2].Color {
		t.Error("gradient ends differ")
	}
}
