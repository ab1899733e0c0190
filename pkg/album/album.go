// Package album loads photo albums from a directory or a .memalbum bundle.
//
// An album is a list of photos plus optional titles, a theme and a saved
// composition. A bundle is a ZIP of the same directory layout.
package album

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/scene"
)

// ManifestName is the manifest file inside an album directory or bundle.
const ManifestName = "album.yaml"

// BundleExt is the extension of zipped albums.
const BundleExt = ".memalbum"

// Album is a loaded album.
type Album struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description,omitempty"`
	Theme       string  `yaml:"theme,omitempty"`
	Template    string  `yaml:"template,omitempty"`
	Photos      []Photo `yaml:"photos"`
	// Composition is the path of a saved composition JSON, relative to the
	// album root.
	Composition string `yaml:"composition,omitempty"`

	// Root is the directory photo paths were resolved against.
	Root string `yaml:"-"`
	// Comp is the parsed composition, or nil.
	Comp *scene.Composition `yaml:"-"`
	// Warnings lists recoverable problems found while loading.
	Warnings []string `yaml:"-"`
}

// Photo is one album entry. Caption and Date label thread cards.
type Photo struct {
	media.Asset `yaml:",inline"`
	Caption     string `yaml:"caption,omitempty"`
	Date        string `yaml:"date,omitempty"`
}

// Assets returns the album's media records in album order.
func (a *Album) Assets() []media.Asset {
	out := make([]media.Asset, len(a.Photos))
	for i, p := range a.Photos {
		out[i] = p.Asset
	}
	return out
}

// Find returns the photo with the given id or name.
func (a *Album) Find(ref string) (Photo, bool) {
	for _, p := range a.Photos {
		if p.ID == ref || p.Name == ref {
			return p, true
		}
	}
	return Photo{}, false
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
}

// IsImage reports whether name has a decodable image extension.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// resolve makes relative local paths absolute using baseDir. URLs and
// store references are left alone.
func resolve(p, baseDir string) string {
	if p == "" || filepath.IsAbs(p) || strings.Contains(p, "://") || strings.HasPrefix(p, "store:") {
		return p
	}
	return filepath.Join(baseDir, filepath.FromSlash(p))
}

// applyDefaults fills ids, names and kinds, and resolves paths.
func (a *Album) applyDefaults() {
	if a.Title == "" {
		a.Title = "Our Memories"
	}
	for i := range a.Photos {
		p := &a.Photos[i]
		if p.ID == "" {
			p.ID = fmt.Sprintf("photo-%d", i+1)
		}
		if p.Name == "" {
			p.Name = filepath.Base(filepath.FromSlash(p.Source))
		}
		if p.Kind == "" {
			p.Kind = media.KindOf(p.Source)
		}
		p.Source = resolve(p.Source, a.Root)
		if p.Video != nil {
			p.Video.Thumbnail = resolve(p.Video.Thumbnail, a.Root)
		}
	}
}
