// Package media stores uploaded post images on disk.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidImage is returned for data that is not a base64-encoded image.
var ErrInvalidImage = errors.New("upload a valid image")

// MaxImageBytes caps the decoded size of a single image.
const MaxImageBytes = 5 << 20

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
}

// Store writes images below a root directory. References returned by Save
// are slash-separated paths relative to that root, e.g. "posts/<uuid>.png".
type Store struct {
	root string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the directory files are written to.
func (s *Store) Root() string {
	return s.root
}

// SaveDataURI decodes a "data:image/...;base64,..." URI and stores the image.
func (s *Store) SaveDataURI(ctx context.Context, uri string) (string, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return "", ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidImage
	}
	return s.Save(ctx, data)
}

// Save stores raw image bytes after sniffing their content type.
func (s *Store) Save(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 || len(data) > MaxImageBytes {
		return "", ErrInvalidImage
	}

	ext, ok := extensions[http.DetectContentType(data)]
	if !ok {
		return "", ErrInvalidImage
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := path.Join("posts", uuid.NewString()+"."+ext)
	full := filepath.Join(s.root, filepath.FromSlash(ref))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating media directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}

	return ref, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *Store) Remove(ref string) error {
	full := filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+ref)))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing image: %w", err)
	}
	return nil
}

// Handler serves stored files. Directories are reported as not found so
// stored names cannot be enumerated.
func (s *Store) Handler() http.Handler {
	return http.FileServer(filesOnly{http.Dir(s.root)})
}

// filesOnly is a file system that refuses to open directories.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
