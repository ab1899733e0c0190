// render.go — Layout, collage export and artifact endpoints.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/artifact"
	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/generator"
	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/scene"
)

// headerWarnings carries the number of non-fatal render warnings.
const headerWarnings = "X-Memoria-Warnings"

// parseFormat maps a request format name to a still-image format.
func parseFormat(name string, def generator.Format) (generator.Format, error) {
	if name == "" {
		return def, nil
	}
	f, err := generator.FormatFromExt(name)
	if err != nil {
		return "", err
	}
	if f == generator.AVI {
		return "", fmt.Errorf("format %q is not a still-image format", name)
	}
	return f, nil
}

// withExt swaps the extension of name for f's.
func withExt(name string, f generator.Format) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + f.Ext()
}

// sendFile writes data as a download.
func sendFile(w http.ResponseWriter, data []byte, mimeType, filename string, warnings []string) {
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set(headerWarnings, strconv.Itoa(len(warnings)))
	w.Write(data)
}

// sendImage encodes img in f and writes it as a download.
func (s *Server) sendImage(w http.ResponseWriter, r *http.Request, img image.Image, f generator.Format, filename string, warnings []string) {
	var buf bytes.Buffer
	if err := generator.Encode(&buf, img, f, s.quality); err != nil {
		fail(w, r, http.StatusInternalServerError, "encode image", err)
		return
	}
	sendFile(w, buf.Bytes(), f.MIME(), withExt(filename, f), warnings)
}

func logWarnings(what string, warnings []string) {
	for _, msg := range warnings {
		logrus.WithField("artifact", what).Warn(msg)
	}
}

// ── Layout ──

type layoutRequest struct {
	Assets   []media.Asset `json:"assets,omitempty"`
	AssetIDs []string      `json:"assetIds,omitempty"`
	Template string        `json:"template"`
	Width    int           `json:"width,omitempty"`
	Height   int           `json:"height,omitempty"`
	Spacing  *float64      `json:"spacing,omitempty"`
	Seed     int64         `json:"seed,omitempty"`
}

type layoutResponse struct {
	Template string       `json:"template"`
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Items    []scene.Item `json:"items"`
}

// handleLayout places the requested assets on a canvas with a template.
// Without assets or ids it lays out the whole store.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid layout request", err)
		return
	}
	tmpl, err := layout.ParseTemplate(req.Template)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid template", err)
		return
	}

	assets := req.Assets
	if len(req.AssetIDs) > 0 {
		if assets, err = s.lookupAssets(r.Context(), req.AssetIDs); err != nil {
			fail(w, r, statusFor(err), "lookup assets", err)
			return
		}
	} else if assets, err = s.resolveAssets(r.Context(), assets); err != nil {
		fail(w, r, statusFor(err), "list assets", err)
		return
	}

	def := scene.New()
	width, height := req.Width, req.Height
	if width <= 0 {
		width = def.Width
	}
	if height <= 0 {
		height = def.Height
	}
	spacing := def.Settings.Spacing
	if req.Spacing != nil {
		spacing = *req.Spacing
	}

	items, err := layout.Compute(assets, tmpl, float64(width), float64(height), spacing, layout.NewRand(req.Seed))
	if err != nil {
		fail(w, r, statusFor(err), "layout", err)
		return
	}
	if items == nil {
		items = []scene.Item{}
	}
	render.JSON(w, r, layoutResponse{Template: string(tmpl), Width: width, Height: height, Items: items})
}

// ── Collage ──

type renderRequest struct {
	Composition json.RawMessage `json:"composition"`
	Assets      []media.Asset   `json:"assets,omitempty"`
	Format      string          `json:"format,omitempty"`
}

// handleRender flattens a composition to an image download.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid render request", err)
		return
	}
	if len(req.Composition) == 0 {
		fail(w, r, http.StatusBadRequest, "missing composition", nil)
		return
	}
	comp, err := scene.ParseComposition(req.Composition)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid composition", err)
		return
	}
	f, err := parseFormat(req.Format, generator.JPEG)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid format", err)
		return
	}
	assets, err := s.resolveAssets(r.Context(), req.Assets)
	if err != nil {
		fail(w, r, statusFor(err), "list assets", err)
		return
	}
	s.export(w, r, comp, assets, f)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, comp *scene.Composition, assets []media.Asset, f generator.Format) {
	res, err := s.renderer.Export(r.Context(), comp, assets, f)
	if err != nil {
		fail(w, r, statusFor(err), "export", err)
		return
	}
	logWarnings(string(compositor.Collage), res.Warnings)
	sendFile(w, res.Data, res.MIME, res.Filename, res.Warnings)
}

// ── Artifacts ──

type certificateRequest struct {
	artifact.Certificate
	PhotoID string `json:"photoId,omitempty"`
	Format  string `json:"format,omitempty"`
}

func (s *Server) handleCertificate(w http.ResponseWriter, r *http.Request) {
	var req certificateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid certificate request", err)
		return
	}
	f, err := parseFormat(req.Format, generator.JPEG)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid format", err)
		return
	}
	if req.PhotoID != "" {
		if req.Photo, err = s.store.Get(r.Context(), req.PhotoID); err != nil {
			fail(w, r, statusFor(err), "lookup photo", err)
			return
		}
	} else if err := s.checkSources(req.Photo); err != nil {
		fail(w, r, statusFor(err), "invalid photo", err)
		return
	}

	out, err := s.artifacts.Certificate(r.Context(), req.Certificate)
	if err != nil {
		fail(w, r, statusFor(err), "certificate", err)
		return
	}
	s.sendImage(w, r, out.Image, f, out.Filename, out.Warnings)
}

type threadRequest struct {
	artifact.Thread
	PhotoIDs []string `json:"photoIds,omitempty"`
	Format   string   `json:"format,omitempty"`
}

// handleThread renders a memory thread. Stored photos named by photoIds
// are appended as uncaptioned cards.
func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	var req threadRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid thread request", err)
		return
	}
	f, err := parseFormat(req.Format, generator.PNG)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid format", err)
		return
	}
	for _, c := range req.Cards {
		if err := s.checkSources(c.Photo); err != nil {
			fail(w, r, statusFor(err), "invalid card", err)
			return
		}
	}
	photos, err := s.lookupAssets(r.Context(), req.PhotoIDs)
	if err != nil {
		fail(w, r, statusFor(err), "lookup photos", err)
		return
	}
	for _, p := range photos {
		req.Cards = append(req.Cards, artifact.ThreadCard{Photo: p})
	}

	out, err := s.artifacts.Thread(r.Context(), req.Thread)
	if err != nil {
		fail(w, r, statusFor(err), "thread", err)
		return
	}
	logWarnings(string(compositor.Thread), out.Warnings)
	s.sendImage(w, r, out.Image, f, out.Filename, out.Warnings)
}

type wheelRequest struct {
	artifact.Wheel
	PhotoIDs []string `json:"photoIds,omitempty"`
	Frame    int      `json:"frame,omitempty"`
	FPS      int      `json:"fps,omitempty"`
	Format   string   `json:"format,omitempty"`
}

func (s *Server) decodeWheel(w http.ResponseWriter, r *http.Request) (*artifact.WheelReel, wheelRequest, bool) {
	var req wheelRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid wheel request", err)
		return nil, req, false
	}
	if err := s.checkSources(req.Photos...); err != nil {
		fail(w, r, statusFor(err), "invalid photos", err)
		return nil, req, false
	}
	photos, err := s.lookupAssets(r.Context(), req.PhotoIDs)
	if err != nil {
		fail(w, r, statusFor(err), "lookup photos", err)
		return nil, req, false
	}
	req.Photos = append(req.Photos, photos...)

	reel, err := s.artifacts.Wheel(r.Context(), req.Wheel)
	if err != nil {
		fail(w, r, statusFor(err), "wheel", err)
		return nil, req, false
	}
	logWarnings(string(compositor.Wheel), reel.Warnings)
	return reel, req, true
}

// handleWheelFrame renders one frame of the wheel animation.
func (s *Server) handleWheelFrame(w http.ResponseWriter, r *http.Request) {
	reel, req, ok := s.decodeWheel(w, r)
	if !ok {
		return
	}
	f, err := parseFormat(req.Format, generator.JPEG)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid format", err)
		return
	}
	img, err := reel.Frame(req.Frame)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "frame", err)
		return
	}
	s.sendImage(w, r, img, f, reel.Filename(f.Ext()), reel.Warnings)
}

// handleWheelReel renders the full spin and reveal as an MJPEG AVI.
func (s *Server) handleWheelReel(w http.ResponseWriter, r *http.Request) {
	reel, req, ok := s.decodeWheel(w, r)
	if !ok {
		return
	}
	fps := req.FPS
	if fps <= 0 {
		fps = artifact.DefaultWheelFPS
	}

	var buf bytes.Buffer
	if err := reel.WriteAVI(r.Context(), &buf, fps, s.quality); err != nil {
		fail(w, r, statusFor(err), "encode reel", err)
		return
	}
	logrus.WithFields(logrus.Fields{
		"selected": reel.Selected().Name,
		"bytes":    buf.Len(),
	}).Info("Wheel reel rendered")
	sendFile(w, buf.Bytes(), generator.AVI.MIME(), reel.Filename(generator.AVI.Ext()), reel.Warnings)
}
