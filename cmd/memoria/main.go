// Memoria — Memory albums as collages, certificates, threads and wheels.
//
// Usage:
//
//	memoria [-config <file>] [-loglevel <level>] <command> [options]
//	memoria collage -album <dir> -o collage.jpg
//	memoria serve [-port 8080]
//	memoria init
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/clients/server"
	"github.com/xob0t/memoria/pkg/album"
	"github.com/xob0t/memoria/pkg/artifact"
	"github.com/xob0t/memoria/pkg/canvas"
	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/config"
	"github.com/xob0t/memoria/pkg/theme"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("memoria", flag.ExitOnError)
	var configPath, level string
	fs.StringVar(&configPath, "config", "", "Path to memoria.yaml (optional)")
	fs.StringVar(&level, "loglevel", "info", "Log level: debug, info, warn, error")
	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid -loglevel: %w", err)
	}
	logrus.SetLevel(lvl)
	canvas.RouteBackendLogs()

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage()
		return fmt.Errorf("a command is required")
	}
	cmd, cmdArgs := rest[0], rest[1:]

	switch cmd {
	case "help", "-h", "--help":
		printUsage()
		return nil
	case "init":
		return runInit(cmdArgs)
	}

	e, err := setup(configPath)
	if err != nil {
		return err
	}
	defer e.close()

	switch cmd {
	case "collage":
		return e.runCollage(ctx, cmdArgs)
	case "certificate", "cert":
		return e.runCertificate(ctx, cmdArgs)
	case "thread":
		return e.runThread(ctx, cmdArgs)
	case "wheel":
		return e.runWheel(ctx, cmdArgs)
	case "reel":
		return e.runReel(ctx, cmdArgs)
	case "gallery":
		return e.runGallery(ctx, cmdArgs)
	case "moment":
		return e.runMoment(ctx, cmdArgs)
	case "themes":
		fmt.Print(theme.FormatThemes(e.themes))
		return nil
	case "serve":
		return e.runServe(ctx, cmdArgs)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// env is the configuration shared by every rendering command.
type env struct {
	cfg    config.Config
	fonts  *canvas.FontManager
	themes *theme.Registry
	custom bool // fonts is owned and must be closed
}

func setup(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, fonts: canvas.DefaultFonts(), themes: theme.NewRegistry()}

	if cfg.Render.FontPath != "" {
		fm, err := canvas.NewFontManager(cfg.Render.FontPath)
		if err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
		e.fonts, e.custom = fm, true
	}
	if cfg.Themes.File != "" {
		warnings, err := e.themes.LoadFile(cfg.Themes.File)
		if err != nil {
			return nil, fmt.Errorf("load themes: %w", err)
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
	}
	return e, nil
}

func (e *env) close() {
	if e.custom {
		e.fonts.Close()
	}
}

func (e *env) loader() compositor.Loader {
	return compositor.SourceLoader{Client: http.DefaultClient}
}

func (e *env) renderer(supersample float64) *compositor.Renderer {
	if supersample <= 0 {
		supersample = e.cfg.Render.Supersample
	}
	return compositor.NewRenderer(e.loader(),
		compositor.WithFonts(e.fonts),
		compositor.WithThemes(e.themes),
		compositor.WithSupersample(supersample),
		compositor.WithQuality(e.cfg.Render.JPEGQuality),
	)
}

func (e *env) artifacts(scale float64) *artifact.Generator {
	return artifact.New(e.loader(),
		artifact.WithFonts(e.fonts),
		artifact.WithThemes(e.themes),
		artifact.WithScale(scale),
	)
}

func (e *env) runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", e.cfg.Server.Port, "Listen port")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg := e.cfg
	cfg.Server.Port = *port
	fmt.Printf("Memoria API → http://localhost:%d/api\n", cfg.Server.Port)
	return server.Run(ctx, cfg)
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var dir, configOut, pack string
	fs.StringVar(&dir, "dir", "memoria-sample", "Directory for the sample album")
	fs.StringVar(&configOut, "config", "memoria.yaml", "Output path for the sample config")
	fs.StringVar(&pack, "pack", "", "Also zip the album to this "+album.BundleExt+" file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := album.WriteSample(dir); err != nil {
		return fmt.Errorf("write sample album: %w", err)
	}
	if err := os.WriteFile(configOut, []byte(config.Sample()), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Created: %s, %s\n", filepath.Join(dir, album.ManifestName), configOut)

	if pack != "" {
		if err := album.Pack(dir, pack); err != nil {
			return fmt.Errorf("pack album: %w", err)
		}
		fmt.Printf("Created: %s\n", pack)
	}
	fmt.Printf("Run: memoria collage -album %s -o collage.jpg\n", dir)
	return nil
}

func fatal(err error) {
	if errors.Is(err, compositor.ErrNothingToRender) {
		fmt.Fprintln(os.Stderr, "Error: nothing to render, the composition has no visible items")
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`Memoria — Memory albums rendered in pure Go

USAGE:
    memoria [-config <file>] [-loglevel <level>] <command> [options]

COMMANDS:
    collage       Lay out an album and render it to one image
    certificate   Render a printable memory certificate for one photo
    thread        Hang an album's photos on a rope
    wheel         Spin the memory wheel: one frame or the full AVI reel
    reel          Animate an album's photos with a looping effect
    gallery       Orbit an album's photos as a 3D carousel, cube or sphere
    moment        Set one clip frame on a 9:16 portrait card
    themes        List the available themes
    init          Write a sample album and memoria.yaml
    serve         Start the HTTP API

COLLAGE:
    -album <path>          Album directory or .memalbum bundle
    -template <name>       grid, overlapping, polaroid, heart or freeform
    -theme <id>            Theme gradient instead of the solid background
    -w, -h <px>            Canvas size (default 800 x 600)
    -seed <n>              Layout seed (0 = random)
    -o <file>              Output (.jpg, .png, .bmp or .avi)

CERTIFICATE:
    -album <path> -photo <id|name>   or   -photo <file>
    -title, -caption, -emotion       Override the generated wording
    -orientation portrait|landscape
    -theme <id>  -seed <n>  -o <file>

THREAD:
    -album <path>  -title <text>  -description <text>
    -orientation portrait|landscape  -seed <n>  -o <file>

WHEEL:
    -album <path>  -seed <n>  -selected <i>
    -frame <n> -o <file>     Render a single frame
    -reel <file.avi>         Render the full animation

REEL:
    -album <path>  -effect <name>  -aspect 16:9|9:16|1:1
    -duration <s>  -fps <n>  -title <text>  -seed <n>
    -frame <n> -o <file>  or  -reel <file.avi>

GALLERY:
    -album <path>  -mode carousel|cube|sphere  -seed <n>
    -frame <n> -o <file>  or  -reel <file.avi> -fps <n>

MOMENT:
    -album <path> -photo <id|name>   or   -photo <file>
    -type <moment type>  -at <seconds>  -caption, -emotion, -confidence
    -seed <n>  -o <file>

EXAMPLES:
    memoria init
    memoria collage -album memoria-sample -template heart -o heart.jpg
    memoria certificate -album memoria-sample -photo sunset-beach.png -orientation landscape
    memoria thread -album memoria-sample -o thread.png
    memoria wheel -album memoria-sample -reel wheel.avi
    memoria reel -album memoria-sample -effect heartbeat -aspect 9:16
    memoria gallery -album memoria-sample -mode sphere -frame 0 -o sphere.jpg
    memoria moment -album memoria-sample -type emotional_peak -at 42
    memoria -loglevel debug serve -port 9000
`)
}
