package blob

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	s := newLocalStore(t.TempDir(), "http://localhost:8080/uploads")
	ctx := context.Background()

	ref, err := s.Store(ctx, []byte("jpeg-bytes"), "chair.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("ref should keep the file extension, got %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(s.root, ref))
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if !bytes.Equal(data, []byte("jpeg-bytes")) {
		t.Errorf("stored data mismatch: %q", data)
	}

	if got := s.URL(ref); got != "http://localhost:8080/uploads/"+ref {
		t.Errorf("unexpected URL: %q", got)
	}

	if err := s.Delete(ctx, ref); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.root, ref)); !os.IsNotExist(err) {
		t.Errorf("blob still present after delete")
	}
}

func TestLocalStoreDeleteAbsentIsNoError(t *testing.T) {
	s := newLocalStore(t.TempDir(), "http://localhost:8080/uploads")

	if err := s.Delete(context.Background(), "never-stored.jpg"); err != nil {
		t.Fatalf("deleting an absent blob must be a no-op, got: %v", err)
	}

	// Twice in a row stays fine.
	if err := s.Delete(context.Background(), "never-stored.jpg"); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
}

func TestLocalStoreRefsAreUnique(t *testing.T) {
	s := newLocalStore(t.TempDir(), "")
	ctx := context.Background()

	a, err := s.Store(ctx, []byte("one"), "img.png", "image/png")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Store(ctx, []byte("two"), "img.png", "image/png")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("two stores of the same filename produced the same ref %q", a)
	}
}
