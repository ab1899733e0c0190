// sessions.go — Interactive placement sessions held in memory.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/generator"
	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/scene"
	"github.com/xob0t/memoria/pkg/session"
)

// liveSession pairs a session with the assets its photos reference.
type liveSession struct {
	mu     sync.Mutex
	s      *session.Session
	assets []media.Asset
}

type sessionView struct {
	ID          string             `json:"id"`
	Composition *scene.Composition `json:"composition"`
	Drag        session.DragState  `json:"drag"`
	Selected    string             `json:"selected,omitempty"`
	Layers      []scene.Item       `json:"layers"`
	Assets      []media.Asset      `json:"assets"`
	Hit         string             `json:"hit,omitempty"`
}

func (ls *liveSession) view() sessionView {
	return sessionView{
		ID:          ls.s.ID,
		Composition: ls.s.Comp,
		Drag:        ls.s.Drag,
		Selected:    ls.s.Selected(),
		Layers:      ls.s.Layers(),
		Assets:      ls.assets,
	}
}

// lookupSession returns the session named in the URL, locked. The caller
// unlocks it.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*liveSession, bool) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	ls, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		fail(w, r, http.StatusNotFound, fmt.Sprintf("session %q not found", id), nil)
		return nil, false
	}
	ls.mu.Lock()
	return ls, true
}

type createSessionRequest struct {
	Composition json.RawMessage `json:"composition,omitempty"`
	Assets      []media.Asset   `json:"assets,omitempty"`
	AssetIDs    []string        `json:"assetIds,omitempty"`
	Template    string          `json:"template,omitempty"`
	Seed        int64           `json:"seed,omitempty"`
}

// handleCreateSession starts a session on the given composition, or on an
// empty canvas laid out with template when one is named.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid session request", err)
		return
	}

	comp := scene.New()
	if len(req.Composition) > 0 {
		var err error
		if comp, err = scene.ParseComposition(req.Composition); err != nil {
			fail(w, r, http.StatusBadRequest, "invalid composition", err)
			return
		}
	}

	assets := req.Assets
	var err error
	if len(req.AssetIDs) > 0 {
		assets, err = s.lookupAssets(r.Context(), req.AssetIDs)
	} else {
		assets, err = s.resolveAssets(r.Context(), assets)
	}
	if err != nil {
		fail(w, r, statusFor(err), "resolve assets", err)
		return
	}

	ls := &liveSession{s: session.New(comp), assets: assets}
	if req.Template != "" {
		tmpl, err := layout.ParseTemplate(req.Template)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "invalid template", err)
			return
		}
		if err := ls.s.ApplyTemplate(assets, tmpl, layout.NewRand(req.Seed)); err != nil {
			fail(w, r, statusFor(err), "apply template", err)
			return
		}
	}

	s.mu.Lock()
	s.sessions[ls.s.ID] = ls
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"session": ls.s.ID,
		"items":   len(comp.Items),
	}).Info("Session created")
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ls.view())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()
	render.JSON(w, r, ls.view())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		fail(w, r, http.StatusNotFound, fmt.Sprintf("session %q not found", id), nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pointerRequest struct {
	Type string  `json:"type"` // down, move, up or cancel
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// handlePointer feeds one pointer event to the drag state machine. A press
// on empty canvas clears the selection.
func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid pointer event", err)
		return
	}
	ls, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	var hit string
	switch req.Type {
	case "down":
		hit = ls.s.HitTest(req.X, req.Y)
		if hit == "" {
			ls.s.ClearSelection()
		} else {
			ls.s.BeginDrag(hit, req.X, req.Y)
		}
	case "move":
		ls.s.DragTo(req.X, req.Y)
	case "up":
		ls.s.EndDrag()
	case "cancel":
		ls.s.CancelDrag()
	default:
		fail(w, r, http.StatusBadRequest, fmt.Sprintf("unknown pointer event %q", req.Type), nil)
		return
	}

	v := ls.view()
	v.Hit = hit
	render.JSON(w, r, v)
}

type rotateRequest struct {
	Degrees float64 `json:"degrees"`
}

// handleItemAction applies a toolbar action to one item.
func (s *Server) handleItemAction(w http.ResponseWriter, r *http.Request) {
	item := chi.URLParam(r, "item")
	action := chi.URLParam(r, "action")

	var rot rotateRequest
	if action == "rotate" {
		if err := render.DecodeJSON(r.Body, &rot); err != nil {
			fail(w, r, http.StatusBadRequest, "invalid rotation", err)
			return
		}
	}

	ls, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	var err error
	switch action {
	case "select":
		err = ls.s.Select(item)
	case "front":
		err = ls.s.BringToFront(item)
	case "back":
		err = ls.s.SendToBack(item)
	case "forward":
		err = ls.s.BringForward(item)
	case "backward":
		err = ls.s.SendBackward(item)
	case "grow":
		err = ls.s.Resize(item, session.Grow)
	case "shrink":
		err = ls.s.Resize(item, session.Shrink)
	case "visible":
		_, err = ls.s.ToggleVisible(item)
	case "lock":
		_, err = ls.s.ToggleLocked(item)
	case "delete":
		err = ls.s.Delete(item)
	case "rotate":
		err = ls.s.Rotate(item, rot.Degrees)
	default:
		fail(w, r, http.StatusBadRequest, fmt.Sprintf("unknown action %q", action), nil)
		return
	}
	if err != nil {
		fail(w, r, statusFor(err), action, err)
		return
	}
	render.JSON(w, r, ls.view())
}

type textRequest struct {
	ID      string           `json:"id,omitempty"` // edit this item instead of adding one
	Content *string          `json:"content,omitempty"`
	Style   *scene.TextStyle `json:"style,omitempty"`
}

// handleAddText adds a text item, or edits item id when given.
func (s *Server) handleAddText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid text request", err)
		return
	}
	ls, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	id := req.ID
	if id == "" {
		content := ""
		if req.Content != nil {
			content = *req.Content
		}
		id = ls.s.AddText(content)
		req.Content = nil
	}
	err := ls.s.UpdateText(id, func(t *scene.Text) {
		if req.Content != nil {
			t.Content = *req.Content
		}
		if req.Style != nil {
			t.Style = *req.Style
		}
	})
	if err != nil {
		fail(w, r, statusFor(err), "update text", err)
		return
	}

	v := ls.view()
	v.Hit = id
	render.JSON(w, r, v)
}

type templateRequest struct {
	Template string `json:"template"`
	Seed     int64  `json:"seed,omitempty"`
}

// handleApplyTemplate re-lays the session's photos, keeping its text.
func (s *Server) handleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid template request", err)
		return
	}
	tmpl, err := layout.ParseTemplate(req.Template)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid template", err)
		return
	}
	ls, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	if err := ls.s.ApplyTemplate(ls.assets, tmpl, layout.NewRand(req.Seed)); err != nil {
		fail(w, r, statusFor(err), "apply template", err)
		return
	}
	render.JSON(w, r, ls.view())
}

type exportRequest struct {
	Format string `json:"format,omitempty"`
}

// handleExportSession renders the session's composition. The session stays
// locked for the duration of the render.
func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			fail(w, r, http.StatusBadRequest, "invalid export request", err)
			return
		}
	}
	f, err := parseFormat(req.Format, generator.JPEG)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid format", err)
		return
	}
	ls, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()
	s.export(w, r, ls.s.Comp, ls.assets, f)
}
