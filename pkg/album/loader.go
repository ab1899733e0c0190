// loader.go — Load album directories and .memalbum (ZIP) bundles.
package album

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/xob0t/memoria/pkg/scene"
)

// ErrEmpty is returned for albums without photos.
var ErrEmpty = errors.New("album has no photos")

// Load opens path, which is either an album directory or a .memalbum ZIP.
// Bundles are extracted to a temp directory; the returned cleanup function
// removes it. For directories cleanup is a no-op.
func Load(path string) (*Album, func(), error) {
	noop := func() {}

	info, err := os.Stat(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open album: %w", err)
	}
	if info.IsDir() {
		a, err := LoadDir(path)
		return a, noop, err
	}
	return LoadBundle(path)
}

// LoadBundle extracts a .memalbum ZIP and loads it as a directory.
func LoadBundle(path string) (*Album, func(), error) {
	noop := func() {}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	tmpDir, err := os.MkdirTemp("", "memalbum-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	if err := extractZip(&r.Reader, tmpDir); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("extract %s: %w", path, err)
	}

	a, err := LoadDir(tmpDir)
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	return a, cleanup, nil
}

// LoadDir loads an album directory. Without a manifest every image file in
// the directory becomes a photo, in name order.
func LoadDir(dir string) (*Album, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	a := &Album{}
	data, err := os.ReadFile(filepath.Join(root, ManifestName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, a); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ManifestName, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		photos, err := scanPhotos(root)
		if err != nil {
			return nil, err
		}
		a.Title = filepath.Base(root)
		a.Photos = photos
	default:
		return nil, fmt.Errorf("read %s: %w", ManifestName, err)
	}

	a.Root = root
	a.applyDefaults()
	if len(a.Photos) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrEmpty)
	}

	if a.Composition != "" {
		comp, err := scene.LoadComposition(resolve(a.Composition, root))
		if err != nil {
			return nil, err
		}
		ids := make(map[string]bool, len(a.Photos))
		for _, p := range a.Photos {
			ids[p.ID] = true
		}
		a.Comp = comp
		a.Warnings = append(a.Warnings, scene.Validate(comp, ids)...)
	}

	logrus.WithFields(logrus.Fields{
		"root":   root,
		"photos": len(a.Photos),
	}).Debug("Loaded album")
	return a, nil
}

func scanPhotos(dir string) ([]Photo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read album dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsImage(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	photos := make([]Photo, len(names))
	for i, name := range names {
		photos[i].Source = name
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
			photos[i].Size = info.Size()
			photos[i].UploadedAt = info.ModTime().UTC()
		}
	}
	return photos, nil
}

// extractZip extracts all files from a zip reader into destDir.
func extractZip(r *zip.Reader, destDir string) error {
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)

		// Guard against zip slip.
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in zip: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
