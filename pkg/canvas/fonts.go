// fonts.go - Font management with custom TTF support and embedded Go fonts.
// Family names from the editor map onto the Go font families; a custom TTF,
// when configured, replaces the proportional regular face.
package canvas

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

type variant struct {
	mono, bold, italic bool
}

type faceKey struct {
	v    variant
	size float64
}

// FontManager loads font sources once and caches faces per size.
type FontManager struct {
	mu      sync.Mutex
	custom  []byte
	sources map[variant]*text.FontSource
	faces   map[faceKey]text.Face
}

var (
	defaultFonts     *FontManager
	defaultFontsOnce sync.Once
)

// DefaultFonts returns a shared manager backed by the embedded Go fonts.
func DefaultFonts() *FontManager {
	defaultFontsOnce.Do(func() {
		defaultFonts = &FontManager{
			sources: make(map[variant]*text.FontSource),
			faces:   make(map[faceKey]text.Face),
		}
	})
	return defaultFonts
}

// NewFontManager creates a font manager. If customPath is empty or cannot be
// read, the embedded Go fonts are used.
func NewFontManager(customPath string) (*FontManager, error) {
	fm := &FontManager{
		sources: make(map[variant]*text.FontSource),
		faces:   make(map[faceKey]text.Face),
	}

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"path":  customPath,
				"error": err,
			}).Warn("Could not load custom font, using default")
		} else {
			fm.custom = data
		}
	}

	// Parse the regular face eagerly so a broken custom font fails here.
	if _, err := fm.source(variant{}); err != nil {
		return nil, err
	}
	return fm, nil
}

// Face returns a face for f. Sizes are rounded to a quarter pixel so that
// the cache stays small.
func (fm *FontManager) Face(f Font) (text.Face, error) {
	size := math.Round(f.Size*4) / 4
	if size <= 0 {
		size = 1
	}
	key := faceKey{v: variantFor(f), size: size}

	fm.mu.Lock()
	defer fm.mu.Unlock()

	if face, ok := fm.faces[key]; ok {
		return face, nil
	}
	src, err := fm.sourceLocked(key.v)
	if err != nil {
		return nil, err
	}
	face := src.Face(size)
	fm.faces[key] = face
	return face, nil
}

// Close releases all parsed sources.
func (fm *FontManager) Close() error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	for v, src := range fm.sources {
		if err := src.Close(); err != nil {
			return err
		}
		delete(fm.sources, v)
	}
	clear(fm.faces)
	return nil
}

func (fm *FontManager) source(v variant) (*text.FontSource, error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.sourceLocked(v)
}

func (fm *FontManager) sourceLocked(v variant) (*text.FontSource, error) {
	if src, ok := fm.sources[v]; ok {
		return src, nil
	}
	data := fontData(v)
	if v == (variant{}) && fm.custom != nil {
		data = fm.custom
	}
	src, err := text.NewFontSource(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	fm.sources[v] = src
	return src, nil
}

// variantFor maps a CSS-like family name onto an embedded family.
func variantFor(f Font) variant {
	family := strings.ToLower(f.Family)
	v := variant{bold: f.Bold, italic: f.Italic}
	switch {
	case strings.Contains(family, "mono"), strings.Contains(family, "courier"):
		v.mono = true
	case strings.Contains(family, "cursive"), strings.Contains(family, "script"):
		v.italic = true
	}
	return v
}

func fontData(v variant) []byte {
	switch {
	case v.mono && v.bold && v.italic:
		return gomonobolditalic.TTF
	case v.mono && v.bold:
		return gomonobold.TTF
	case v.mono && v.italic:
		return gomonoitalic.TTF
	case v.mono:
		return gomono.TTF
	case v.bold && v.italic:
		return gobolditalic.TTF
	case v.bold:
		return gobold.TTF
	case v.italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}
