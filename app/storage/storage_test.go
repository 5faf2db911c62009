package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorePutDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/media/")

	key := ObjectKey("p1", "Front.PNG")
	if !strings.HasPrefix(key, "products/p1/") || !strings.HasSuffix(key, ".png") {
		t.Fatalf("unexpected key %q", key)
	}

	url, err := store.Put(context.Background(), key, strings.NewReader("img"), "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/media/"+key {
		t.Fatalf("url = %q", url)
	}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	if err != nil || string(data) != "img" {
		t.Fatalf("stored file: %q %v", data, err)
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/media/")
	if _, err := store.Put(context.Background(), "../escape.png", strings.NewReader("x"), ""); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}

func TestAllowedImageExtension(t *testing.T) {
	for name, want := range map[string]bool{"a.jpg": true, "b.WEBP": true, "c.exe": false, "noext": false} {
		if got := AllowedImageExtension(name); got != want {
			t.Fatalf("AllowedImageExtension(%q) = %v", name, got)
		}
	}
}
