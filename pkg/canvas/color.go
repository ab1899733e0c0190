// color.go — Colour parsing for theme palettes and editor styles.
package canvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa" or "transparent".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "transparent") || strings.EqualFold(s, "none") {
		return color.NRGBA{}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: expected #rgb, #rrggbb or #rrggbbaa", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// MustColor parses s and falls back to opaque white on error, which keeps a
// bad user colour from aborting a render.
func MustColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		return color.NRGBA{255, 255, 255, 255}
	}
	return c
}

// RGBA builds a colour from 8-bit channels and a 0–1 alpha, like CSS rgba().
func RGBA(r, g, b uint8, a float64) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: uint8(clamp01(a)*255 + 0.5)}
}

// WithAlpha returns c with its alpha replaced by a (0–1).
func WithAlpha(c color.Color, a float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(clamp01(a)*255 + 0.5)
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
