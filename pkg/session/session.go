// Package session implements interactive placement on a composition:
// pointer dragging with bounds clamping, selection, z-order changes,
// resizing, rotation and text editing.
//
// A Session is not safe for concurrent use; callers serialize access.
package session

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/oklog/ulid/v2"

	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/scene"
)

// ErrNoSuchItem is returned for operations on an id that is not in the
// composition.
var ErrNoSuchItem = errors.New("no such item")

// Resize factors for the grow and shrink controls.
const (
	Grow   = 1.1
	Shrink = 0.9
)

// MaxRotation bounds Rotate in either direction, in degrees.
const MaxRotation = 180

// Point is a pointer position in composition units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DragState records an in-progress pointer drag.
type DragState struct {
	Active   bool       `json:"active"`
	ItemID   string     `json:"itemId,omitempty"`
	Kind     scene.Kind `json:"kind,omitempty"`
	Offset   Point      `json:"offset"`   // pointer minus item origin at BeginDrag
	Original Point      `json:"original"` // item origin at BeginDrag
}

// Session owns a composition and the interaction state around it.
type Session struct {
	ID   string             `json:"id"`
	Comp *scene.Composition `json:"composition"`
	Drag DragState          `json:"drag"`
}

// New starts a session on comp. A nil comp starts from scene.New().
func New(comp *scene.Composition) *Session {
	if comp == nil {
		comp = scene.New()
	}
	return &Session{ID: ulid.Make().String(), Comp: comp}
}

func (s *Session) item(id string) (*scene.Item, error) {
	it := s.Comp.Find(id)
	if it == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchItem, id)
	}
	return it, nil
}

// ── Dragging ──

// BeginDrag starts dragging item id from pointer (px, py). It refuses
// missing, locked and hidden items. The item is raised above all others
// and selected exclusively.
func (s *Session) BeginDrag(id string, px, py float64) bool {
	it := s.Comp.Find(id)
	if it == nil || it.Locked || !it.Visible {
		return false
	}

	it.Z = s.Comp.MaxZ() + 1
	s.selectOnly(id)
	s.Drag = DragState{
		Active:   true,
		ItemID:   id,
		Kind:     it.Kind,
		Offset:   Point{X: px - it.X, Y: py - it.Y},
		Original: Point{X: it.X, Y: it.Y},
	}
	return true
}

// DragTo moves the dragged item so the grab offset follows the pointer,
// clamped so the item box stays on the canvas.
func (s *Session) DragTo(px, py float64) {
	if !s.Drag.Active {
		return
	}
	it := s.Comp.Find(s.Drag.ItemID)
	if it == nil || it.Locked {
		return
	}

	w, h := float64(s.Comp.Width), float64(s.Comp.Height)
	it.X = math.Max(0, math.Min(px-s.Drag.Offset.X, w-it.Width))
	it.Y = math.Max(0, math.Min(py-s.Drag.Offset.Y, h-it.Height))
}

// EndDrag finishes the drag.
func (s *Session) EndDrag() {
	s.Drag = DragState{}
}

// CancelDrag puts the dragged item back where it started and ends the drag.
func (s *Session) CancelDrag() {
	if it := s.Comp.Find(s.Drag.ItemID); s.Drag.Active && it != nil {
		it.X, it.Y = s.Drag.Original.X, s.Drag.Original.Y
	}
	s.EndDrag()
}

// ── Selection ──

// Select makes id the only selected item.
func (s *Session) Select(id string) error {
	if _, err := s.item(id); err != nil {
		return err
	}
	s.selectOnly(id)
	return nil
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.selectOnly("")
}

// Selected returns the selected item id, or "".
func (s *Session) Selected() string {
	for _, it := range s.Comp.Items {
		if it.Selected {
			return it.ID
		}
	}
	return ""
}

func (s *Session) selectOnly(id string) {
	for i := range s.Comp.Items {
		s.Comp.Items[i].Selected = s.Comp.Items[i].ID == id
	}
}

// HitTest returns the id of the topmost visible item whose box contains
// (px, py), or "" if none does. Rotation is ignored.
func (s *Session) HitTest(px, py float64) string {
	ordered := s.Comp.Ordered()
	for i := len(ordered) - 1; i >= 0; i-- {
		if ordered[i].Contains(px, py) {
			return ordered[i].ID
		}
	}
	return ""
}

// ── Z order ──

// BringToFront moves id above every other item.
func (s *Session) BringToFront(id string) error {
	it, err := s.item(id)
	if err != nil {
		return err
	}
	it.Z = s.Comp.MaxZ() + 1
	return nil
}

// SendToBack moves id below every other item.
func (s *Session) SendToBack(id string) error {
	it, err := s.item(id)
	if err != nil {
		return err
	}
	it.Z = s.Comp.MinZ() - 1
	return nil
}

// BringForward swaps id with the next item above it. It is a no-op for the
// topmost item.
func (s *Session) BringForward(id string) error {
	return s.step(id, +1)
}

// SendBackward swaps id with the next item below it.
func (s *Session) SendBackward(id string) error {
	return s.step(id, -1)
}

func (s *Session) step(id string, dir int) error {
	if _, err := s.item(id); err != nil {
		return err
	}
	order := s.zOrder()
	pos := -1
	for i, p := range order {
		if p.ID == id {
			pos = i
		}
	}
	next := pos + dir
	if next < 0 || next >= len(order) {
		return nil
	}

	a, b := order[pos], order[next]
	if a.Z == b.Z {
		// Equal z paints in insertion order; renumber to make the order explicit.
		for i, o := range order {
			o.Z = i
		}
	}
	a.Z, b.Z = b.Z, a.Z
	return nil
}

// zOrder returns pointers to all items in paint order.
func (s *Session) zOrder() []*scene.Item {
	out := make([]*scene.Item, len(s.Comp.Items))
	for i := range s.Comp.Items {
		out[i] = &s.Comp.Items[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// Layers returns the items from top to bottom, as a layer panel lists them.
func (s *Session) Layers() []scene.Item {
	order := s.zOrder()
	out := make([]scene.Item, len(order))
	for i, it := range order {
		out[len(order)-1-i] = *it
	}
	return out
}

// ── Geometry ──

// Resize scales the item's size by factor, keeping its top-left corner
// fixed. Sizes never drop below one unit.
func (s *Session) Resize(id string, factor float64) error {
	it, err := s.item(id)
	if err != nil {
		return err
	}
	if it.Locked || factor <= 0 {
		return nil
	}
	it.Width = math.Max(1, it.Width*factor)
	it.Height = math.Max(1, it.Height*factor)
	return nil
}

// Rotate sets the item's rotation in degrees, clamped to ±MaxRotation.
func (s *Session) Rotate(id string, deg float64) error {
	it, err := s.item(id)
	if err != nil {
		return err
	}
	if it.Locked {
		return nil
	}
	it.Rotation = math.Max(-MaxRotation, math.Min(MaxRotation, deg))
	return nil
}

// ToggleVisible flips visibility and returns the new value.
func (s *Session) ToggleVisible(id string) (bool, error) {
	it, err := s.item(id)
	if err != nil {
		return false, err
	}
	it.Visible = !it.Visible
	if !it.Visible && s.Drag.ItemID == id {
		s.EndDrag()
	}
	return it.Visible, nil
}

// ToggleLocked flips the lock and returns the new value.
func (s *Session) ToggleLocked(id string) (bool, error) {
	it, err := s.item(id)
	if err != nil {
		return false, err
	}
	it.Locked = !it.Locked
	if it.Locked && s.Drag.ItemID == id {
		s.EndDrag()
	}
	return it.Locked, nil
}

// Delete removes the item. Its selection and any drag on it go with it.
func (s *Session) Delete(id string) error {
	if !s.Comp.Remove(id) {
		return fmt.Errorf("%w: %q", ErrNoSuchItem, id)
	}
	if s.Drag.ItemID == id {
		s.EndDrag()
	}
	return nil
}

// ── Text ──

// AddText adds a text item with the default style, selects it and returns
// its id. An empty content uses the placeholder text.
func (s *Session) AddText(content string) string {
	it := s.Comp.NewText(content)
	s.Comp.Add(it)
	s.selectOnly(it.ID)
	return it.ID
}

// UpdateText applies fn to the text of item id and normalizes the result.
func (s *Session) UpdateText(id string, fn func(*scene.Text)) error {
	it, err := s.item(id)
	if err != nil {
		return err
	}
	if it.Kind != scene.KindText || it.Text == nil {
		return fmt.Errorf("item %q is not text", id)
	}
	fn(it.Text)
	it.Normalize()
	return nil
}

// ── Templates ──

// ApplyTemplate replaces every photo item with a fresh layout of assets.
// Text items are kept and restacked above the new photos in their previous
// relative order.
func (s *Session) ApplyTemplate(assets []media.Asset, tmpl layout.Template, rng *rand.Rand) error {
	photos, err := layout.Compute(assets, tmpl, float64(s.Comp.Width), float64(s.Comp.Height), s.Comp.Settings.Spacing, rng)
	if err != nil {
		return err
	}

	var texts []scene.Item
	for _, it := range s.Comp.Items {
		if it.Kind == scene.KindText {
			texts = append(texts, it)
		}
	}
	sort.SliceStable(texts, func(i, j int) bool { return texts[i].Z < texts[j].Z })
	for i := range texts {
		texts[i].Z = len(photos) + i
	}

	s.Comp.Items = append(photos, texts...)
	s.Comp.Template = string(tmpl)
	s.EndDrag()
	return nil
}
