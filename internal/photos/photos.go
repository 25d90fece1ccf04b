// Package photos stores item photos on disk behind opaque references.
package photos

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/shivam-website/gold-shop/internal/imaging"
)

// MaxUploadBytes is the ceiling for a single photo upload.
const MaxUploadBytes = 5 << 20

// allowedExts is the upload filename extension allow-list.
var allowedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// AllowedExt reports whether filename carries an accepted photo extension.
func AllowedExt(filename string) bool {
	return allowedExts[strings.ToLower(filepath.Ext(filename))]
}

// Store keeps photos as files in a single directory. References handed out
// are bare filenames; path traversal through a stored reference is not
// possible because references are generated, never taken from input.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) a photo store at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating photo directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save processes an uploaded photo and stores it, returning the opaque
// reference to keep on the item. The upload is normalized to JPEG, so the
// reference always carries a .jpg extension regardless of input format.
func (s *Store) Save(r io.Reader) (string, error) {
	result, err := imaging.Process(r)
	if err != nil {
		return "", err
	}

	ref := uuid.NewString() + ".jpg"
	path := filepath.Join(s.dir, ref)
	if err := os.WriteFile(path, result.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing photo file: %w", err)
	}
	return ref, nil
}

// Open returns the photo data for a reference, or nil if the file is gone.
func (s *Store) Open(ref string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(ref)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading photo file: %w", err)
	}
	return data, nil
}

// Delete removes a stored photo. Best-effort: a reference whose file is
// already gone is not an error, and callers never fail an item or account
// deletion because of the photo.
func (s *Store) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing photo file: %w", err)
	}
	return nil
}
