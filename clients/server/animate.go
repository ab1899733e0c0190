// animate.go — Animated reel, 3D gallery and unspoken-moment endpoints.
package server

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/artifact"
	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/generator"
	"github.com/xob0t/memoria/pkg/media"
)

// sequenceRequest holds the fields shared by every animated artifact.
type sequenceRequest struct {
	PhotoIDs []string `json:"photoIds,omitempty"`
	Frame    int      `json:"frame,omitempty"`
	Format   string   `json:"format,omitempty"`
}

// gatherPhotos checks inline photos and appends the stored ones named by ids.
func (s *Server) gatherPhotos(r *http.Request, inline []media.Asset, ids []string) ([]media.Asset, error) {
	if err := s.checkSources(inline...); err != nil {
		return nil, err
	}
	stored, err := s.lookupAssets(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	return append(inline, stored...), nil
}

// sendFrame renders frame i of seq as a still download.
func (s *Server) sendFrame(w http.ResponseWriter, r *http.Request, seq artifact.Sequence, req sequenceRequest, warnings []string) {
	f, err := parseFormat(req.Format, generator.JPEG)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid format", err)
		return
	}
	img, err := seq.Frame(req.Frame)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "frame", err)
		return
	}
	s.sendImage(w, r, img, f, seq.Filename(f.Ext()), warnings)
}

// sendReel encodes seq with write and sends it as an AVI download.
func sendReel(w http.ResponseWriter, r *http.Request, seq artifact.Sequence, warnings []string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		fail(w, r, statusFor(err), "encode reel", err)
		return
	}
	logrus.WithFields(logrus.Fields{
		"frames": seq.Len(),
		"bytes":  buf.Len(),
	}).Info("Reel rendered")
	sendFile(w, buf.Bytes(), generator.AVI.MIME(), seq.Filename(generator.AVI.Ext()), warnings)
}

// ── Animated reel ──

type animationRequest struct {
	artifact.Animation
	sequenceRequest
}

func (s *Server) decodeAnimation(w http.ResponseWriter, r *http.Request) (*artifact.AnimatedReel, animationRequest, bool) {
	var req animationRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid reel request", err)
		return nil, req, false
	}
	photos, err := s.gatherPhotos(r, req.Photos, req.PhotoIDs)
	if err != nil {
		fail(w, r, statusFor(err), "invalid photos", err)
		return nil, req, false
	}
	req.Photos = photos

	reel, err := s.artifacts.Animate(r.Context(), req.Animation)
	if err != nil {
		fail(w, r, statusFor(err), "reel", err)
		return nil, req, false
	}
	logWarnings(string(compositor.Reel), reel.Warnings)
	return reel, req, true
}

// handleAnimationFrame renders one frame of an animated reel.
func (s *Server) handleAnimationFrame(w http.ResponseWriter, r *http.Request) {
	reel, req, ok := s.decodeAnimation(w, r)
	if !ok {
		return
	}
	s.sendFrame(w, r, reel, req.sequenceRequest, reel.Warnings)
}

// handleAnimationReel renders the whole animated reel as an MJPEG AVI.
func (s *Server) handleAnimationReel(w http.ResponseWriter, r *http.Request) {
	reel, _, ok := s.decodeAnimation(w, r)
	if !ok {
		return
	}
	sendReel(w, r, reel, reel.Warnings, func(out io.Writer) error {
		return reel.WriteAVI(r.Context(), out, s.quality)
	})
}

// ── 3D gallery ──

type galleryRequest struct {
	artifact.Gallery
	sequenceRequest
	FPS int `json:"fps,omitempty"`
}

func (s *Server) decodeGallery(w http.ResponseWriter, r *http.Request) (*artifact.GalleryReel, galleryRequest, bool) {
	var req galleryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid gallery request", err)
		return nil, req, false
	}
	photos, err := s.gatherPhotos(r, req.Photos, req.PhotoIDs)
	if err != nil {
		fail(w, r, statusFor(err), "invalid photos", err)
		return nil, req, false
	}
	req.Photos = photos

	reel, err := s.artifacts.Gallery(r.Context(), req.Gallery)
	if err != nil {
		fail(w, r, statusFor(err), "gallery", err)
		return nil, req, false
	}
	logWarnings(string(compositor.Gallery), reel.Warnings)
	return reel, req, true
}

// handleGalleryFrame renders one frame of the gallery turn.
func (s *Server) handleGalleryFrame(w http.ResponseWriter, r *http.Request) {
	reel, req, ok := s.decodeGallery(w, r)
	if !ok {
		return
	}
	s.sendFrame(w, r, reel, req.sequenceRequest, reel.Warnings)
}

// handleGalleryReel renders one full gallery turn as an MJPEG AVI.
func (s *Server) handleGalleryReel(w http.ResponseWriter, r *http.Request) {
	reel, req, ok := s.decodeGallery(w, r)
	if !ok {
		return
	}
	sendReel(w, r, reel, reel.Warnings, func(out io.Writer) error {
		return reel.WriteAVI(r.Context(), out, req.FPS, s.quality)
	})
}

// ── Unspoken moments ──

type momentRequest struct {
	artifact.Moment
	PhotoID string `json:"photoId,omitempty"`
	Format  string `json:"format,omitempty"`
}

// handleMoment renders one portrait moment card.
func (s *Server) handleMoment(w http.ResponseWriter, r *http.Request) {
	var req momentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid moment request", err)
		return
	}
	f, err := parseFormat(req.Format, generator.PNG)
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

	out, err := s.artifacts.Moment(r.Context(), req.Moment)
	if err != nil {
		fail(w, r, statusFor(err), "moment", err)
		return
	}
	s.sendImage(w, r, out.Image, f, out.Filename, out.Warnings)
}
