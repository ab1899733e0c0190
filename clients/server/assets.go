// assets.go — Upload, list, fetch and delete stored media.
package server

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/compositor"
	"github.com/xob0t/memoria/pkg/media"
)

// handleUpload stores every "file" part of a multipart form.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid upload", err)
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		fail(w, r, http.StatusBadRequest, "no file uploaded", nil)
		return
	}

	added := make([]media.Asset, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			fail(w, r, http.StatusBadRequest, "read upload", err)
			return
		}
		a, err := s.store.Put(r.Context(), fh.Filename, f)
		f.Close()
		if err != nil {
			fail(w, r, http.StatusInternalServerError, "store upload", err)
			return
		}
		added = append(added, a)
	}

	logrus.WithField("count", len(added)).Info("Assets uploaded")
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, added)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		fail(w, r, statusFor(err), "list assets", err)
		return
	}
	render.JSON(w, r, list)
}

// handleGetAsset streams the stored bytes.
func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.store.Get(r.Context(), id)
	if err != nil {
		fail(w, r, statusFor(err), "asset not found", err)
		return
	}
	rc, err := s.store.Open(r.Context(), id)
	if err != nil {
		fail(w, r, statusFor(err), "open asset", err)
		return
	}
	defer rc.Close()

	ct := mime.TypeByExtension(filepath.Ext(a.Name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	if _, err := io.Copy(w, rc); err != nil {
		logrus.WithFields(logrus.Fields{"id": id, "error": err}).Warn("Asset stream interrupted")
	}
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		fail(w, r, statusFor(err), "delete asset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveAssets returns given when it is non-empty and every stored asset
// otherwise. Given assets must pass checkSources.
func (s *Server) resolveAssets(ctx context.Context, given []media.Asset) ([]media.Asset, error) {
	if len(given) > 0 {
		if err := s.checkSources(given...); err != nil {
			return nil, err
		}
		return given, nil
	}
	return s.store.List(ctx)
}

// checkSources refuses request-supplied assets that point outside the
// store unless remote sources are enabled.
func (s *Server) checkSources(assets ...media.Asset) error {
	if s.remote {
		return nil
	}
	return compositor.CheckStoreOnly(assets...)
}

// lookupAssets fetches ids from the store in order.
func (s *Server) lookupAssets(ctx context.Context, ids []string) ([]media.Asset, error) {
	out := make([]media.Asset, 0, len(ids))
	for _, id := range ids {
		a, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
