// sample.go — Write a starter album and pack directories into bundles.
package album

import (
	"archive/zip"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/xob0t/memoria/pkg/generator"
	"github.com/xob0t/memoria/pkg/media"
)

var samplePhotos = []struct {
	name, caption, date string
	c                   color.NRGBA
}{
	{"sunset-beach.png", "The evening the sky caught fire", "June 2023", color.NRGBA{0xf4, 0xa2, 0x61, 0xff}},
	{"family-picnic.png", "Grandma's lemonade", "July 2023", color.NRGBA{0x8f, 0xbc, 0x8f, 0xff}},
	{"mountain-view.png", "Above the clouds", "August 2023", color.NRGBA{0x6c, 0x8e, 0xbf, 0xff}},
	{"birthday-cake.png", "Thirty candles", "September 2023", color.NRGBA{0xe0, 0x9f, 0xc8, 0xff}},
	{"old-camera.png", "", "", color.NRGBA{0x9c, 0x7c, 0x5c, 0xff}},
}

// WriteSample creates dir with a manifest and a few placeholder photos.
func WriteSample(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	a := Album{
		Title:       "Summer of Memories",
		Description: "A season worth keeping",
		Theme:       "elegant",
		Template:    "grid",
	}
	for i, p := range samplePhotos {
		img := generator.NewSolidImage(480, 360, p.c)
		if err := generator.Generate(filepath.Join(dir, p.name), img, generator.Config{}); err != nil {
			return err
		}
		a.Photos = append(a.Photos, Photo{
			Asset: media.Asset{
				ID:     fmt.Sprintf("photo-%d", i+1),
				Source: p.name,
			},
			Caption: p.caption,
			Date:    p.date,
		})
	}

	data, err := yaml.Marshal(&a)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ManifestName), data, 0644)
}

// Pack zips the album directory dir into the bundle file out.
func Pack(dir, out string) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
	if err != nil {
		return fmt.Errorf("pack %s: %w", dir, err)
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Sync()
}
