package photos

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			img.Set(x, y, color.RGBA{212, 175, 55, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

func TestAllowedExt(t *testing.T) {
	tests := []struct {
		filename string
		expected bool
	}{
		{"ring.png", true},
		{"ring.jpg", true},
		{"ring.jpeg", true},
		{"ring.webp", true},
		{"RING.PNG", true},
		{"ring.gif", false},
		{"ring.png.exe", false},
		{"ring", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := AllowedExt(tt.filename); got != tt.expected {
			t.Errorf("AllowedExt(%q) = %v, want %v", tt.filename, got, tt.expected)
		}
	}
}

func TestSaveOpenDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ref, err := store.Save(bytes.NewReader(testPNG(t)))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("expected .jpg reference, got %q", ref)
	}

	data, err := store.Open(ref)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected photo data")
	}

	if err := store.Delete(ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	data, err = store.Open(ref)
	if err != nil {
		t.Fatalf("Open after delete: %v", err)
	}
	if data != nil {
		t.Error("expected nil data after delete")
	}
}

func TestDeleteMissingFileIsNotAnError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Delete("no-such-file.jpg"); err != nil {
		t.Errorf("expected nil for missing file, got %v", err)
	}
	if err := store.Delete(""); err != nil {
		t.Errorf("expected nil for empty reference, got %v", err)
	}
}

func TestSaveRejectsNonImage(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if _, err := store.Save(strings.NewReader("definitely not an image")); err == nil {
		t.Error("expected error for non-image data")
	}
}

func TestReferencesAreUnique(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ref1, err := store.Save(bytes.NewReader(testPNG(t)))
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	ref2, err := store.Save(bytes.NewReader(testPNG(t)))
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if ref1 == ref2 {
		t.Error("expected distinct references for separate saves")
	}
}
