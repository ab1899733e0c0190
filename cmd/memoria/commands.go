package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xob0t/memoria/pkg/album"
	"github.com/xob0t/memoria/pkg/artifact"
	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/generator"
	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/scene"
)

// loadAlbum opens an album directory or bundle and prints its warnings.
func loadAlbum(path string) (*album.Album, func(), error) {
	if path == "" {
		return nil, nil, fmt.Errorf("-album is required")
	}
	a, cleanup, err := album.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load album: %w", err)
	}
	warn(a.Warnings)
	return a, cleanup, nil
}

func warn(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}

// resolvePhoto finds photoRef in the album at albumPath, defaulting to its
// first photo, or opens photoRef as a file when no album is given. It also
// returns the album theme.
func resolvePhoto(albumPath, photoRef string) (media.Asset, string, func(), error) {
	if albumPath == "" {
		if photoRef == "" {
			return media.Asset{}, "", nil, fmt.Errorf("-photo is required")
		}
		info, err := os.Stat(photoRef)
		if err != nil {
			return media.Asset{}, "", nil, err
		}
		asset := media.New(filepath.Base(photoRef), photoRef, info.Size())
		asset.Kind = media.KindOf(photoRef)
		return asset, "", func() {}, nil
	}
	a, cleanup, err := loadAlbum(albumPath)
	if err != nil {
		return media.Asset{}, "", nil, err
	}
	if photoRef == "" && len(a.Photos) > 0 {
		photoRef = a.Photos[0].ID
	}
	p, ok := a.Find(photoRef)
	if !ok {
		cleanup()
		return media.Asset{}, "", nil, fmt.Errorf("photo %q not in album %s", photoRef, a.Title)
	}
	return p.Asset, a.Theme, cleanup, nil
}

// save writes img to output, choosing the encoding by extension.
func (e *env) save(output string, img image.Image) error {
	cfg := generator.Config{Quality: e.cfg.Render.JPEGQuality}
	if err := generator.Generate(output, img, cfg); err != nil {
		return err
	}
	fmt.Printf("Done: %s\n", output)
	return nil
}

func (e *env) runCollage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("collage", flag.ExitOnError)
	var (
		albumPath string
		tmplName  string
		themeID   string
		output    string
		width     int
		height    int
		seed      int64
		scale     float64
	)
	fs.StringVar(&albumPath, "album", "", "Album directory or "+album.BundleExt+" bundle")
	fs.StringVar(&tmplName, "template", "", "Layout template (default: album's, then grid)")
	fs.StringVar(&themeID, "theme", "", "Theme id for the background gradient")
	fs.StringVar(&output, "o", "", "Output file (.jpg, .png, .bmp or .avi)")
	fs.IntVar(&width, "w", scene.DefaultWidth, "Canvas width")
	fs.IntVar(&height, "h", scene.DefaultHeight, "Canvas height")
	fs.Int64Var(&seed, "seed", 0, "Layout seed (0 = random)")
	fs.Float64Var(&scale, "scale", 0, "Output scale (default: render.supersample)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, cleanup, err := loadAlbum(albumPath)
	if err != nil {
		return err
	}
	defer cleanup()

	comp := a.Comp
	if comp == nil || tmplName != "" {
		if tmplName == "" {
			tmplName = a.Template
		}
		if tmplName == "" {
			tmplName = string(layout.Grid)
		}
		tmpl, err := layout.ParseTemplate(tmplName)
		if err != nil {
			return err
		}
		comp = scene.New()
		comp.Width, comp.Height = width, height
		comp.Normalize()
		items, err := layout.Compute(a.Assets(), tmpl, float64(comp.Width), float64(comp.Height), comp.Settings.Spacing, layout.NewRand(seed))
		if err != nil {
			return err
		}
		comp.Items = items
		comp.Template = string(tmpl)
	}
	if themeID == "" {
		themeID = a.Theme
	}
	if themeID != "" {
		comp.Theme = themeID
	}
	if !comp.HasVisible() {
		return compositor.ErrNothingToRender
	}

	if output == "" {
		output = compositor.SuggestFilename(compositor.Collage, "", "", time.Now(), ".jpg")
	}
	fmt.Printf("Rendering collage: %s (%d photos, %s)\n", a.Title, len(a.Photos), comp.Template)
	img, warnings, err := e.renderer(scale).Render(ctx, comp, a.Assets())
	if err != nil {
		return err
	}
	warn(warnings)
	return e.save(output, img)
}

func (e *env) runCertificate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("certificate", flag.ExitOnError)
	var (
		albumPath string
		photoRef  string
		output    string
		scale     float64
		c         artifact.Certificate
		orient    string
	)
	fs.StringVar(&albumPath, "album", "", "Album to pick the photo from (optional)")
	fs.StringVar(&photoRef, "photo", "", "Photo id or name in the album, or an image file")
	fs.StringVar(&c.Title, "title", "", "Certificate title (default: generated)")
	fs.StringVar(&c.Caption, "caption", "", "Caption (default: generated)")
	fs.StringVar(&c.Emotion, "emotion", "", "happy, peaceful, nostalgic or excited")
	fs.StringVar(&c.Date, "date", "", "Certified-on date (default: today)")
	fs.StringVar(&orient, "orientation", "portrait", "portrait or landscape")
	fs.StringVar(&c.Theme, "theme", "", "Theme id")
	fs.Int64Var(&c.Seed, "seed", 0, "Wording seed (0 = random)")
	fs.StringVar(&output, "o", "", "Output file (default: suggested name)")
	fs.Float64Var(&scale, "scale", artifact.PrintScale, "Pixels per layout unit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.Orientation = artifact.Orientation(orient)

	photo, albumTheme, cleanup, err := resolvePhoto(albumPath, photoRef)
	if err != nil {
		return err
	}
	defer cleanup()
	c.Photo = photo
	if c.Theme == "" {
		c.Theme = albumTheme
	}

	out, err := e.artifacts(scale).Certificate(ctx, c)
	if err != nil {
		return err
	}
	if output == "" {
		output = out.Filename
	}
	return e.save(output, out.Image)
}

func (e *env) runThread(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("thread", flag.ExitOnError)
	var (
		albumPath string
		output    string
		orient    string
		scale     float64
		t         artifact.Thread
	)
	fs.StringVar(&albumPath, "album", "", "Album directory or bundle")
	fs.StringVar(&t.Title, "title", "", "Heading (default: album title)")
	fs.StringVar(&t.Description, "description", "", "Sub-heading (default: album description)")
	fs.StringVar(&orient, "orientation", "portrait", "portrait or landscape")
	fs.Int64Var(&t.Seed, "seed", 0, "Texture seed (0 = random)")
	fs.StringVar(&output, "o", "", "Output file (default: suggested name)")
	fs.Float64Var(&scale, "scale", artifact.PrintScale, "Pixels per layout unit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t.Orientation = artifact.Orientation(orient)

	a, cleanup, err := loadAlbum(albumPath)
	if err != nil {
		return err
	}
	defer cleanup()

	if t.Title == "" {
		t.Title = a.Title
	}
	if t.Description == "" {
		t.Description = a.Description
	}
	for _, p := range a.Photos {
		t.Cards = append(t.Cards, artifact.ThreadCard{Photo: p.Asset, Caption: p.Caption, Date: p.Date})
	}

	out, err := e.artifacts(scale).Thread(ctx, t)
	if err != nil {
		return err
	}
	warn(out.Warnings)
	if output == "" {
		output = out.Filename
	}
	return e.save(output, out.Image)
}

func (e *env) runWheel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("wheel", flag.ExitOnError)
	var (
		albumPath string
		output    string
		reelPath  string
		frame     int
		selected  int
		fps       int
		w         artifact.Wheel
	)
	fs.StringVar(&albumPath, "album", "", "Album directory or bundle")
	fs.IntVar(&frame, "frame", -1, fmt.Sprintf("Render one frame in [0,%d)", artifact.TotalFrames))
	fs.StringVar(&output, "o", "", "Output file for -frame")
	fs.StringVar(&reelPath, "reel", "", "Output AVI for the full animation")
	fs.IntVar(&selected, "selected", -1, "Winning photo index (default: seeded pick)")
	fs.IntVar(&fps, "fps", artifact.DefaultWheelFPS, "Reel frame rate")
	fs.StringVar(&w.Title, "title", "", "Wheel title")
	fs.StringVar(&w.Caption, "caption", "", "Reveal caption (default: generated)")
	fs.StringVar(&w.Theme, "theme", "", "Theme id (default: the wheel palette)")
	fs.Int64Var(&w.Seed, "seed", 0, "Spin seed (0 = random)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, cleanup, err := loadAlbum(albumPath)
	if err != nil {
		return err
	}
	defer cleanup()

	w.Photos = a.Assets()
	if selected >= 0 {
		w.Selected = &selected
	}
	reel, err := e.artifacts(1).Wheel(ctx, w)
	if err != nil {
		return err
	}
	warn(reel.Warnings)
	fmt.Printf("Selected: %s\n", reel.Selected().Name)

	if frame >= 0 {
		img, err := reel.Frame(frame)
		if err != nil {
			return err
		}
		if output == "" {
			output = reel.Filename(fmt.Sprintf("-frame-%03d.jpg", frame))
		}
		return e.save(output, img)
	}

	if reelPath == "" {
		reelPath = reel.Filename(generator.AVI.Ext())
	}
	fmt.Printf("Rendering %d frames at %d fps\n", artifact.TotalFrames, fps)
	return writeAVIFile(reelPath, func(w io.Writer) error {
		return reel.WriteAVI(ctx, w, fps, e.cfg.Render.JPEGQuality)
	})
}

// writeAVIFile creates path and fills it with write. A failed render leaves
// no partial file behind.
func writeAVIFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create reel: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Done: %s\n", path)
	return nil
}
