package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/xob0t/memoria/pkg/artifact"
	"github.com/xob0t/memoria/pkg/generator"
)

// renderSequence saves one frame of seq when frame >= 0, otherwise encodes
// the whole sequence to reelPath with write.
func (e *env) renderSequence(seq artifact.Sequence, frame int, output, reelPath string, write func(w io.Writer) error) error {
	if frame >= 0 {
		img, err := seq.Frame(frame)
		if err != nil {
			return err
		}
		if output == "" {
			output = seq.Filename(fmt.Sprintf("-frame-%03d.jpg", frame))
		}
		return e.save(output, img)
	}
	if reelPath == "" {
		reelPath = seq.Filename(generator.AVI.Ext())
	}
	fmt.Printf("Rendering %d frames\n", seq.Len())
	return writeAVIFile(reelPath, write)
}

func (e *env) runReel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reel", flag.ExitOnError)
	var (
		albumPath string
		output    string
		reelPath  string
		effect    string
		aspect    string
		frame     int
		a         artifact.Animation
	)
	fs.StringVar(&albumPath, "album", "", "Album directory or bundle")
	fs.StringVar(&effect, "effect", string(artifact.EffectSparkles), "sparkles, blinking, floating, heartbeat or zoom-breath")
	fs.StringVar(&aspect, "aspect", string(artifact.AspectWide), "16:9, 9:16 or 1:1")
	fs.IntVar(&a.Duration, "duration", artifact.DefaultReelSeconds, "Length in seconds")
	fs.IntVar(&a.FPS, "fps", artifact.DefaultReelFPS, "Frame rate")
	fs.StringVar(&a.Title, "title", "", "Bottom banner (default: AI Memory Reel)")
	fs.Int64Var(&a.Seed, "seed", 0, "Effect seed (0 = random)")
	fs.IntVar(&frame, "frame", -1, "Render one frame instead of the reel")
	fs.StringVar(&output, "o", "", "Output file for -frame")
	fs.StringVar(&reelPath, "reel", "", "Output AVI (default: suggested name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a.Effect = artifact.Effect(effect)
	a.Aspect = artifact.Aspect(aspect)

	al, cleanup, err := loadAlbum(albumPath)
	if err != nil {
		return err
	}
	defer cleanup()
	a.Photos = al.Assets()

	reel, err := e.artifacts(1).Animate(ctx, a)
	if err != nil {
		return err
	}
	warn(reel.Warnings)
	return e.renderSequence(reel, frame, output, reelPath, func(w io.Writer) error {
		return reel.WriteAVI(ctx, w, e.cfg.Render.JPEGQuality)
	})
}

func (e *env) runGallery(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gallery", flag.ExitOnError)
	var (
		albumPath string
		output    string
		reelPath  string
		mode      string
		frame     int
		fps       int
		g         artifact.Gallery
	)
	fs.StringVar(&albumPath, "album", "", "Album directory or bundle")
	fs.StringVar(&mode, "mode", string(artifact.ModeCarousel), "carousel, cube or sphere")
	fs.IntVar(&frame, "frame", -1, fmt.Sprintf("Render one frame in [0,%d)", artifact.GalleryFrames))
	fs.StringVar(&output, "o", "", "Output file for -frame")
	fs.StringVar(&reelPath, "reel", "", "Output AVI (default: suggested name)")
	fs.IntVar(&fps, "fps", artifact.DefaultWheelFPS, "Reel frame rate")
	fs.Int64Var(&g.Seed, "seed", 0, "Starfield seed (0 = random)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	g.Mode = artifact.GalleryMode(mode)

	al, cleanup, err := loadAlbum(albumPath)
	if err != nil {
		return err
	}
	defer cleanup()
	g.Photos = al.Assets()

	reel, err := e.artifacts(1).Gallery(ctx, g)
	if err != nil {
		return err
	}
	warn(reel.Warnings)
	return e.renderSequence(reel, frame, output, reelPath, func(w io.Writer) error {
		return reel.WriteAVI(ctx, w, fps, e.cfg.Render.JPEGQuality)
	})
}

func (e *env) runMoment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("moment", flag.ExitOnError)
	var (
		albumPath string
		photoRef  string
		output    string
		kind      string
		m         artifact.Moment
	)
	names := make([]string, len(artifact.MomentTypes))
	for i, t := range artifact.MomentTypes {
		names[i] = string(t)
	}
	fs.StringVar(&albumPath, "album", "", "Album to pick the clip from (optional)")
	fs.StringVar(&photoRef, "photo", "", "Clip or photo id or name in the album, or an image file")
	fs.StringVar(&kind, "type", "", strings.Join(names, ", ")+" (default: random)")
	fs.StringVar(&m.Caption, "caption", "", "Caption (default: generated)")
	fs.StringVar(&m.Emotion, "emotion", "", "Emotion tag (default: mood or generated)")
	fs.Float64Var(&m.Timestamp, "at", 0, "Seconds into the clip")
	fs.Float64Var(&m.Confidence, "confidence", 0, "Score in (0,1] (default: generated)")
	fs.Int64Var(&m.Seed, "seed", 0, "Wording seed (0 = random)")
	fs.StringVar(&output, "o", "", "Output file (default: suggested name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m.Type = artifact.MomentType(kind)

	photo, _, cleanup, err := resolvePhoto(albumPath, photoRef)
	if err != nil {
		return err
	}
	defer cleanup()
	m.Photo = photo

	out, err := e.artifacts(1).Moment(ctx, m)
	if err != nil {
		return err
	}
	if output == "" {
		output = out.Filename
	}
	return e.save(output, out.Image)
}
