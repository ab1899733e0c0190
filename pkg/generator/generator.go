// Package generator encodes rendered artifacts to files and streams.
//
// All output follows one pipeline: the renderers produce an image.Image,
// which is written as JPEG, PNG or BMP, or packed with other frames into
// an MJPEG AVI reel.
package generator

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// Format is an output encoding.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	BMP  Format = "bmp"
	AVI  Format = "avi"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 95

// Config holds parameters for file generation.
type Config struct {
	Quality  int // JPEG quality 1-100 (default: 95)
	FPS      int // AVI only (default: 15)
	Duration int // Seconds a still image is held in an AVI (default: 1)
}

// FormatFromExt maps a file extension (with or without the dot) to a Format.
func FormatFromExt(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "avi":
		return AVI, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use .jpg, .png, .bmp or .avi", ext)
	}
}

// Ext returns the canonical file extension including the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// MIME returns the content type for f.
func (f Format) MIME() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case PNG:
		return "image/png"
	case BMP:
		return "image/bmp"
	case AVI:
		return "video/x-msvideo"
	default:
		return "application/octet-stream"
	}
}

// Encode writes img to w in the given still-image format.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	switch f {
	case JPEG:
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: qualityOrDefault(quality)}); err != nil {
			return fmt.Errorf("encode JPEG: %w", err)
		}
	case PNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode PNG: %w", err)
		}
	case BMP:
		if err := bmp.Encode(w, img); err != nil {
			return fmt.Errorf("encode BMP: %w", err)
		}
	default:
		return fmt.Errorf("format %q is not a still-image format", f)
	}
	return nil
}

// Generate writes img to output. The format is inferred from the file
// extension:
//   - ".jpg", ".png", ".bmp" → still image
//   - ".avi" → MJPEG AVI holding img for cfg.Duration seconds
func Generate(output string, img image.Image, cfg Config) error {
	f, err := FormatFromExt(filepath.Ext(output))
	if err != nil {
		return err
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer file.Close()

	if err := GenerateToWriter(file, f, img, cfg); err != nil {
		return err
	}
	return file.Sync()
}

// GenerateToWriter writes img to w in format f.
// This is useful for in-memory generation (e.g., WASM and HTTP responses).
func GenerateToWriter(w io.Writer, f Format, img image.Image, cfg Config) error {
	if f != AVI {
		return Encode(w, img, f, cfg.Quality)
	}

	reel := NewReel(cfg.FPS, cfg.Quality)
	frames := reel.FPS() * max(cfg.Duration, 1)
	if err := reel.AddFrame(img); err != nil {
		return err
	}
	for i := 1; i < frames; i++ {
		reel.Repeat()
	}
	_, err := reel.WriteTo(w)
	return err
}

// NewSolidImage creates a uniform solid-color image.
func NewSolidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func qualityOrDefault(q int) int {
	if q <= 0 || q > 100 {
		return DefaultQuality
	}
	return q
}
