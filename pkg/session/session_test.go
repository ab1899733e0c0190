package session

import (
	"errors"
	"testing"

	"github.com/xob0t/memoria/pkg/layout"
	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/scene"
)

// newSession builds an 800x600 session with three photos and one text item.
func newSession(t *testing.T) (*Session, []string) {
	t.Helper()
	comp := scene.New()
	ids := make([]string, 0, 4)
	for i, p := range [][4]float64{{0, 0, 200, 150}, {300, 200, 200, 150}, {100, 100, 100, 100}} {
		it := scene.NewPhoto("asset", p[0], p[1], p[2], p[3], 0, i)
		comp.Add(it)
		ids = append(ids, it.ID)
	}
	s := New(comp)
	ids = append(ids, s.AddText("Hello"))
	return s, ids
}

// TestDragClampIdempotent checks that dragging far outside the canvas
// clamps the box inside it and that repeating the move changes nothing.
func TestDragClampIdempotent(t *testing.T) {
	s, ids := newSession(t)
	id := ids[1]

	if !s.BeginDrag(id, 310, 210) {
		t.Fatal("BeginDrag refused")
	}
	for _, p := range [][2]float64{{5000, 5000}, {-900, 40}, {420, -3000}} {
		s.DragTo(p[0], p[1])
		it := *s.Comp.Find(id)
		if it.X < 0 || it.Y < 0 || it.X+it.Width > 800 || it.Y+it.Height > 600 {
			t.Fatalf("item out of bounds after drag to %v: %+v", p, it)
		}
		s.DragTo(p[0], p[1])
		if again := *s.Comp.Find(id); again.X != it.X || again.Y != it.Y {
			t.Errorf("repeat drag moved item: %v,%v -> %v,%v", it.X, it.Y, again.X, again.Y)
		}
	}

	s.DragTo(5000, 5000)
	if it := s.Comp.Find(id); it.X != 600 || it.Y != 450 {
		t.Errorf("corner clamp = %v,%v, want 600,450", it.X, it.Y)
	}
	s.EndDrag()
	s.DragTo(0, 0)
	if it := s.Comp.Find(id); it.X != 600 {
		t.Error("DragTo moved item after EndDrag")
	}
}

// TestDragKeepsGrabOffset checks the pointer-minus-offset rule inside bounds.
func TestDragKeepsGrabOffset(t *testing.T) {
	s, ids := newSession(t)
	s.BeginDrag(ids[1], 350, 260) // offset (50, 60)
	s.DragTo(400, 300)
	if it := s.Comp.Find(ids[1]); it.X != 350 || it.Y != 240 {
		t.Errorf("position = %v,%v, want 350,240", it.X, it.Y)
	}
	s.CancelDrag()
	if it := s.Comp.Find(ids[1]); it.X != 300 || it.Y != 200 {
		t.Errorf("cancel did not restore origin: %v,%v", it.X, it.Y)
	}
}

// TestBeginDragRefusals checks locked, hidden and missing items.
func TestBeginDragRefusals(t *testing.T) {
	s, ids := newSession(t)
	if _, err := s.ToggleLocked(ids[0]); err != nil {
		t.Fatal(err)
	}
	if s.BeginDrag(ids[0], 10, 10) {
		t.Error("locked item dragged")
	}
	if _, err := s.ToggleVisible(ids[1]); err != nil {
		t.Fatal(err)
	}
	if s.BeginDrag(ids[1], 310, 210) {
		t.Error("hidden item dragged")
	}
	if s.BeginDrag("nope", 0, 0) {
		t.Error("missing item dragged")
	}
	if s.Drag.Active {
		t.Error("refused drag left state active")
	}
}

// TestBeginDragRaisesAndSelects checks the z bump and exclusive selection.
func TestBeginDragRaisesAndSelects(t *testing.T) {
	s, ids := newSession(t)
	before := s.Comp.MaxZ()
	s.BeginDrag(ids[0], 1, 1)
	if z := s.Comp.Find(ids[0]).Z; z != before+1 {
		t.Errorf("z = %d, want %d", z, before+1)
	}
	if s.Selected() != ids[0] {
		t.Errorf("selected = %q", s.Selected())
	}
	for _, it := range s.Comp.Items {
		if it.ID != ids[0] && it.Selected {
			t.Errorf("item %s still selected", it.ID)
		}
	}
}

// TestBringToFrontStrictlyIncreasing checks that each call lifts the item
// strictly above everything else, photos and text alike.
func TestBringToFrontStrictlyIncreasing(t *testing.T) {
	s, ids := newSession(t)
	last := s.Comp.Find(ids[2]).Z
	for i := 0; i < 5; i++ {
		id := ids[i%len(ids)]
		if err := s.BringToFront(id); err != nil {
			t.Fatal(err)
		}
		z := s.Comp.Find(id).Z
		if z <= last {
			t.Fatalf("z did not increase: %d <= %d", z, last)
		}
		for _, it := range s.Comp.Items {
			if it.ID != id && it.Z >= z {
				t.Fatalf("item %s at z %d not below %d", it.ID, it.Z, z)
			}
		}
		last = z
	}

	if err := s.SendToBack(ids[3]); err != nil {
		t.Fatal(err)
	}
	if s.Comp.Find(ids[3]).Z != s.Comp.MinZ() {
		t.Error("SendToBack did not reach the minimum")
	}
	if err := s.BringToFront("nope"); !errors.Is(err, ErrNoSuchItem) {
		t.Errorf("err = %v", err)
	}
}

// TestForwardBackward checks single-step swaps, including equal-z ties.
func TestForwardBackward(t *testing.T) {
	s, ids := newSession(t)
	s.Comp.Find(ids[0]).Z = 1
	s.Comp.Find(ids[1]).Z = 1 // tie, painted after ids[0]

	if err := s.BringForward(ids[0]); err != nil {
		t.Fatal(err)
	}
	if a, b := s.Comp.Find(ids[0]).Z, s.Comp.Find(ids[1]).Z; a <= b {
		t.Errorf("after BringForward z = %d, %d", a, b)
	}
	if err := s.SendBackward(ids[0]); err != nil {
		t.Fatal(err)
	}
	if a, b := s.Comp.Find(ids[0]).Z, s.Comp.Find(ids[1]).Z; a >= b {
		t.Errorf("after SendBackward z = %d, %d", a, b)
	}

	layers := s.Layers()
	for i := 1; i < len(layers); i++ {
		if layers[i].Z > layers[i-1].Z {
			t.Fatalf("Layers not top to bottom: %d then %d", layers[i-1].Z, layers[i].Z)
		}
	}
}

// TestResizeKeepsTopLeft checks the grow/shrink factors and the minimum size.
func TestResizeKeepsTopLeft(t *testing.T) {
	s, ids := newSession(t)
	id := ids[1]
	if err := s.Resize(id, Grow); err != nil {
		t.Fatal(err)
	}
	it := s.Comp.Find(id)
	if it.X != 300 || it.Y != 200 {
		t.Errorf("origin moved to %v,%v", it.X, it.Y)
	}
	if it.Width < 219.99 || it.Width > 220.01 || it.Height < 164.99 || it.Height > 165.01 {
		t.Errorf("size = %vx%v", it.Width, it.Height)
	}

	for i := 0; i < 200; i++ {
		s.Resize(id, Shrink)
	}
	if it.Width < 1 || it.Height < 1 {
		t.Errorf("size fell below 1: %vx%v", it.Width, it.Height)
	}
}

// TestRotateClamp checks the rotation range and the lock.
func TestRotateClamp(t *testing.T) {
	s, ids := newSession(t)
	s.Rotate(ids[0], 270)
	if r := s.Comp.Find(ids[0]).Rotation; r != 180 {
		t.Errorf("rotation = %v", r)
	}
	s.ToggleLocked(ids[0])
	s.Rotate(ids[0], 10)
	if r := s.Comp.Find(ids[0]).Rotation; r != 180 {
		t.Errorf("locked item rotated to %v", r)
	}
}

// TestHitTestTopmost checks that overlapping items resolve to the highest z
// and hidden items are skipped.
func TestHitTestTopmost(t *testing.T) {
	s, ids := newSession(t)
	if got := s.HitTest(150, 120); got != ids[2] {
		t.Errorf("HitTest = %q, want %q", got, ids[2])
	}
	s.ToggleVisible(ids[2])
	if got := s.HitTest(150, 120); got != ids[0] {
		t.Errorf("HitTest after hide = %q, want %q", got, ids[0])
	}
	if got := s.HitTest(790, 10); got != "" {
		t.Errorf("HitTest on empty area = %q", got)
	}
}

// TestTextEditing checks AddText defaults, UpdateText normalization and Delete.
func TestTextEditing(t *testing.T) {
	s, ids := newSession(t)
	textID := ids[3]
	it := s.Comp.Find(textID)
	if it.Z != 3 || it.X != 300 || it.Y != 275 {
		t.Errorf("text defaults = z %d at %v,%v", it.Z, it.X, it.Y)
	}

	err := s.UpdateText(textID, func(tx *scene.Text) {
		tx.Content = "Updated"
		tx.Style.Opacity = 4
	})
	if err != nil {
		t.Fatal(err)
	}
	if tx := s.Comp.Find(textID).Text; tx.Content != "Updated" || tx.Style.Opacity != 1 {
		t.Errorf("text = %+v", tx)
	}
	if err := s.UpdateText(ids[0], func(*scene.Text) {}); err == nil {
		t.Error("UpdateText on a photo succeeded")
	}

	if err := s.Delete(textID); err != nil {
		t.Fatal(err)
	}
	if s.Selected() != "" {
		t.Error("selection survived Delete")
	}
	if err := s.Delete(textID); !errors.Is(err, ErrNoSuchItem) {
		t.Errorf("second Delete err = %v", err)
	}
}

// TestApplyTemplateKeepsText checks photo replacement and text restacking.
func TestApplyTemplateKeepsText(t *testing.T) {
	s, ids := newSession(t)
	assets := []media.Asset{{ID: "x"}, {ID: "y"}}
	if err := s.ApplyTemplate(assets, layout.Grid, layout.NewRand(1)); err != nil {
		t.Fatal(err)
	}
	if len(s.Comp.Items) != 3 {
		t.Fatalf("items = %d, want 2 photos + 1 text", len(s.Comp.Items))
	}
	txt := s.Comp.Find(ids[3])
	if txt == nil || txt.Z != 2 {
		t.Errorf("text item = %+v", txt)
	}
	if s.Comp.Template != "grid" {
		t.Errorf("template = %q", s.Comp.Template)
	}
}
