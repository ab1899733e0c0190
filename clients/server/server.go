// Package server exposes the memoria engine over HTTP: asset uploads,
// collage layout and rendering, certificates, threads, wheel reels and
// interactive placement sessions.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/artifact"
	"github.com/xob0t/memoria/pkg/canvas"
	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/config"
	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/session"
	"github.com/xob0t/memoria/pkg/store"
	"github.com/xob0t/memoria/pkg/theme"
)

// Upload limit for multipart asset posts.
const maxUpload = 50 << 20

// Options configures a Server.
type Options struct {
	Store       store.AssetStore
	Fonts       *canvas.FontManager
	Themes      *theme.Registry
	Supersample float64
	Quality     int

	// ArtifactScale overrides artifact.PrintScale for certificates and threads.
	ArtifactScale float64

	// AllowRemoteSources lets request-supplied assets name server file
	// paths and http(s) URLs. Otherwise only stored and data: sources load.
	AllowRemoteSources bool

	Client *http.Client     // remote asset sources, nil for http.DefaultClient
	Now    func() time.Time // nil for time.Now
}

// Server holds the engine and the live placement sessions.
type Server struct {
	store     store.AssetStore
	renderer  *compositor.Renderer
	artifacts *artifact.Generator
	themes    *theme.Registry
	quality   int
	remote    bool

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// New wires a Server from opts. A nil Store uses an in-memory store.
func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	if opts.Themes == nil {
		opts.Themes = theme.Default()
	}
	if opts.Fonts == nil {
		opts.Fonts = canvas.DefaultFonts()
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	loader := compositor.SourceLoader{
		Store:     opts.Store,
		Client:    opts.Client,
		StoreOnly: !opts.AllowRemoteSources,
	}

	ropts := []compositor.Option{
		compositor.WithFonts(opts.Fonts),
		compositor.WithThemes(opts.Themes),
		compositor.WithClock(opts.Now),
	}
	if opts.Supersample > 0 {
		ropts = append(ropts, compositor.WithSupersample(opts.Supersample))
	}
	if opts.Quality > 0 {
		ropts = append(ropts, compositor.WithQuality(opts.Quality))
	}

	gen := artifact.New(loader,
		artifact.WithFonts(opts.Fonts),
		artifact.WithThemes(opts.Themes),
		artifact.WithClock(opts.Now),
		artifact.WithScale(opts.ArtifactScale),
	)

	return &Server{
		store:     opts.Store,
		renderer:  compositor.NewRenderer(loader, ropts...),
		artifacts: gen,
		themes:    opts.Themes,
		quality:   opts.Quality,
		remote:    opts.AllowRemoteSources,
		sessions:  make(map[string]*liveSession),
	}
}

// Router returns the HTTP handler with every API route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return strings.HasPrefix(origin, "http://localhost") ||
				strings.HasPrefix(origin, "http://127.0.0.1")
		},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", headerWarnings},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/assets", func(r chi.Router) {
			r.Post("/", s.handleUpload)
			r.Get("/", s.handleListAssets)
			r.Get("/{id}", s.handleGetAsset)
			r.Delete("/{id}", s.handleDeleteAsset)
		})

		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		r.Post("/certificate", s.handleCertificate)
		r.Post("/thread", s.handleThread)
		r.Post("/wheel/frame", s.handleWheelFrame)
		r.Post("/wheel/reel", s.handleWheelReel)
		r.Post("/animation/frame", s.handleAnimationFrame)
		r.Post("/animation/reel", s.handleAnimationReel)
		r.Post("/gallery/frame", s.handleGalleryFrame)
		r.Post("/gallery/reel", s.handleGalleryReel)
		r.Post("/moment", s.handleMoment)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/pointer", s.handlePointer)
				r.Post("/items/{item}/{action}", s.handleItemAction)
				r.Post("/text", s.handleAddText)
				r.Post("/template", s.handleApplyTemplate)
				r.Post("/export", s.handleExportSession)
			})
		})

		r.Get("/themes", s.handleThemes)
	})
	return r
}

// Run builds the server described by cfg and serves it until ctx is
// cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config) error {
	st, err := store.New(cfg.Storage.Type, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	fonts := canvas.DefaultFonts()
	if cfg.Render.FontPath != "" {
		if fonts, err = canvas.NewFontManager(cfg.Render.FontPath); err != nil {
			return fmt.Errorf("load font: %w", err)
		}
		defer fonts.Close()
	}

	themes := theme.NewRegistry()
	if cfg.Themes.File != "" {
		warnings, err := themes.LoadFile(cfg.Themes.File)
		if err != nil {
			return fmt.Errorf("load themes: %w", err)
		}
		for _, w := range warnings {
			logrus.WithField("file", cfg.Themes.File).Warn(w)
		}
	}

	srv := New(Options{
		Store:       st,
		Fonts:       fonts,
		Themes:      themes,
		Supersample: cfg.Render.Supersample,
		Quality:     cfg.Render.JPEGQuality,

		AllowRemoteSources: cfg.Server.AllowRemoteSources,
	})

	hs := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":    hs.Addr,
			"storage": cfg.Storage.Type,
		}).Info("memoria server listening")
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

// fail logs err and answers with msg and code.
func fail(w http.ResponseWriter, r *http.Request, code int, msg string, err error) {
	entry := logrus.WithFields(logrus.Fields{
		"path":   r.URL.Path,
		"status": code,
	})
	if err != nil {
		entry = entry.WithField("error", err)
		msg = msg + ": " + err.Error()
	}
	if code >= http.StatusInternalServerError {
		entry.Error(msg)
	} else {
		entry.Debug(msg)
	}
	http.Error(w, msg, code)
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, compositor.ErrNothingToRender):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound), errors.Is(err, session.ErrNoSuchItem):
		return http.StatusNotFound
	case errors.Is(err, theme.ErrUnknownTheme),
		errors.Is(err, layout.ErrUnknownTemplate),
		errors.Is(err, artifact.ErrNoPhotos),
		errors.Is(err, artifact.ErrUnknownOrientation),
		errors.Is(err, artifact.ErrBadSelection),
		errors.Is(err, artifact.ErrUnknownEffect),
		errors.Is(err, artifact.ErrUnknownAspect),
		errors.Is(err, artifact.ErrReelTooLong),
		errors.Is(err, artifact.ErrUnknownGalleryMode),
		errors.Is(err, artifact.ErrUnknownMomentType),
		errors.Is(err, compositor.ErrSourceNotAllowed):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.themes.All())
}
