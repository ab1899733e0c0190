package album

import (
	"archive/zip"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xob0t/memoria/pkg/generator"
	"github.com/xob0t/memoria/pkg/media"
)

func TestSampleRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "summer")
	if err := WriteSample(dir); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}

	a, cleanup, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer cleanup()

	if a.Title != "Summer of Memories" || a.Theme != "elegant" || a.Template != "grid" {
		t.Errorf("header = %q %q %q", a.Title, a.Theme, a.Template)
	}
	if len(a.Photos) != len(samplePhotos) {
		t.Fatalf("photos = %d, want %d", len(a.Photos), len(samplePhotos))
	}
	for _, p := range a.Photos {
		if !filepath.IsAbs(p.Source) {
			t.Errorf("%s: source %q not resolved", p.ID, p.Source)
		}
		if _, err := os.Stat(p.Source); err != nil {
			t.Errorf("%s: %v", p.ID, err)
		}
		if p.Kind != media.KindPhoto {
			t.Errorf("%s: kind %q", p.ID, p.Kind)
		}
	}
	first, ok := a.Find("photo-1")
	if !ok || first.Name != "sunset-beach.png" || first.Caption == "" || first.Date != "June 2023" {
		t.Errorf("photo-1 = %+v", first)
	}
	if got := a.Assets(); len(got) != len(a.Photos) || got[2].ID != "photo-3" {
		t.Errorf("Assets = %+v", got)
	}
}

func TestBundle(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "album")
	if err := WriteSample(dir); err != nil {
		t.Fatal(err)
	}
	bundle := filepath.Join(tmp, "summer"+BundleExt)
	if err := Pack(dir, bundle); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	a, cleanup, err := Load(bundle)
	if err != nil {
		t.Fatalf("Load bundle: %v", err)
	}
	root := a.Root
	if !strings.HasPrefix(a.Photos[0].Source, root) {
		t.Errorf("source %q outside extracted root %q", a.Photos[0].Source, root)
	}
	if _, err := os.Stat(a.Photos[0].Source); err != nil {
		t.Errorf("extracted photo missing: %v", err)
	}

	cleanup()
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("cleanup left %s behind (err=%v)", root, err)
	}
}

func TestDirectoryWithoutManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Holiday")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.png", "a.jpg"} {
		img := generator.NewSolidImage(8, 8, color.White)
		if err := generator.Generate(filepath.Join(dir, name), img, generator.Config{}); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	a, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if a.Title != "Holiday" {
		t.Errorf("title = %q", a.Title)
	}
	if len(a.Photos) != 2 || a.Photos[0].Name != "a.jpg" || a.Photos[1].Name != "b.png" {
		t.Fatalf("photos = %+v", a.Photos)
	}
	if a.Photos[0].Size == 0 || a.Photos[0].UploadedAt.IsZero() {
		t.Errorf("file info not recorded: %+v", a.Photos[0].Asset)
	}
}

func TestEmptyAlbum(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
}

func TestManifestDefaultsAndComposition(t *testing.T) {
	dir := t.TempDir()
	manifest := `
photos:
  - source: pics/one.jpg
  - id: clip
    source: https://example.com/clip.mp4
    video:
      duration: 3
      thumbnail: thumbs/clip.png
composition: layout.json
`
	comp := `{"width": 400, "height": 300, "items": [
  {"id": "a", "kind": "photo", "x": 0, "y": 0, "width": 100, "height": 100, "photo": {"assetId": "photo-1"}},
  {"id": "b", "kind": "photo", "x": 0, "y": 0, "width": 100, "height": 100, "photo": {"assetId": "missing"}}
]}`
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "layout.json"), []byte(comp), 0644); err != nil {
		t.Fatal(err)
	}

	a, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if a.Title == "" {
		t.Error("default title not applied")
	}

	one := a.Photos[0]
	if one.ID != "photo-1" || one.Name != "one.jpg" || one.Source != filepath.Join(a.Root, "pics", "one.jpg") {
		t.Errorf("photo 1 = %+v", one.Asset)
	}
	clip := a.Photos[1]
	if clip.Kind != media.KindVideo || clip.Source != "https://example.com/clip.mp4" {
		t.Errorf("clip = %+v", clip.Asset)
	}
	if clip.Video.Thumbnail != filepath.Join(a.Root, "thumbs", "clip.png") {
		t.Errorf("thumbnail = %q", clip.Video.Thumbnail)
	}

	if a.Comp == nil || len(a.Comp.Items) != 2 {
		t.Fatalf("composition not loaded: %+v", a.Comp)
	}
	if len(a.Warnings) != 1 || !strings.Contains(a.Warnings[0], "missing") {
		t.Errorf("warnings = %v", a.Warnings)
	}
}

func TestZipSlipRejected(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "evil"+BundleExt)
	f, err := os.Create(bundle)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("../escape.txt")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("gotcha"))
	zw.Close()
	f.Close()

	_, cleanup, err := Load(bundle)
	defer cleanup()
	if err == nil || !strings.Contains(err.Error(), "illegal path") {
		t.Errorf("err = %v, want illegal path", err)
	}
}
