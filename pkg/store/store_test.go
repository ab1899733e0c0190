package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/xob0t/memoria/pkg/media"
)

// runStoreContract exercises the AssetStore behaviour shared by every backend.
func runStoreContract(t *testing.T, s AssetStore) {
	t.Helper()
	ctx := context.Background()

	a, err := s.Put(ctx, "photos/beach.jpg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if a.Name != "beach.jpg" || a.Size != 10 || a.Source != SourcePrefix+a.ID || a.Kind != media.KindPhoto {
		t.Errorf("record = %+v", a)
	}
	v, err := s.Put(ctx, "clip.MP4", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Put video: %v", err)
	}
	if v.Kind != media.KindVideo {
		t.Errorf("video kind = %q", v.Kind)
	}

	got, err := s.Get(ctx, a.ID)
	if err != nil || got.ID != a.ID || got.Name != a.Name {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	rc, err := s.Open(ctx, a.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "jpeg-bytes" {
		t.Errorf("Open returned %q", data)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != a.ID {
		t.Errorf("List = %+v", list)
	}

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	if _, err := s.Open(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open after delete err = %v", err)
	}
	if err := s.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v", err)
	}
}

// TestMemoryStore runs the contract on the in-memory backend.
func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemory())
}

// TestFilesystemStore runs the contract on a temporary directory.
func TestFilesystemStore(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runStoreContract(t, s)
}

// TestFilesystemRejectsPaths checks that ids cannot escape the base directory.
func TestFilesystemRejectsPaths(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Open(context.Background(), "../../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("traversal err = %v", err)
	}
}

// TestNewSelectsBackend checks type selection and the memory fallback.
func TestNewSelectsBackend(t *testing.T) {
	s, err := New("", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*memoryStore); !ok {
		t.Errorf("default store is %T", s)
	}
	s, err = New(TypeFilesystem, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*fsStore); !ok {
		t.Errorf("filesystem store is %T", s)
	}
	if _, err := New(TypeFilesystem, ""); err == nil {
		t.Error("filesystem without path accepted")
	}
}
