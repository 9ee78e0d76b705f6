package imagestore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_File(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	store := New(WithBaseDir(dir))
	data, err := store.Open(context.Background(), "a.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "jpeg" {
		t.Errorf("unexpected data %q", data)
	}

	abs, err := store.Open(context.Background(), "file://"+filepath.Join(dir, "a.jpg"))
	if err != nil || string(abs) != "jpeg" {
		t.Errorf("absolute file URL: %q, %v", abs, err)
	}
}

func TestOpen_FileMissing(t *testing.T) {
	_, err := New().Open(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestOpen_FileTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	if err := os.WriteFile(path, make([]byte, 64), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(WithMaxBytes(10)).Open(context.Background(), path); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestOpen_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("png bytes"))
	}))
	defer server.Close()

	store := New()
	data, err := store.Open(context.Background(), server.URL+"/photo.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "png bytes" {
		t.Errorf("unexpected data %q", data)
	}

	if _, err := store.Open(context.Background(), server.URL+"/missing"); err == nil {
		t.Error("expected error for 404")
	}

	if _, err := New(WithMaxBytes(4)).Open(context.Background(), server.URL+"/photo.png"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestOpen_Empty(t *testing.T) {
	if _, err := New().Open(context.Background(), "  "); !errors.Is(err, ErrEmptySource) {
		t.Errorf("expected ErrEmptySource, got %v", err)
	}
}
