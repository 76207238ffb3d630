package media

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// pngPixel is a 1x1 transparent PNG.
var pngPixel, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

func TestSaveDataURI(t *testing.T) {
	s := NewStore(t.TempDir())

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngPixel)
	ref, err := s.SaveDataURI(context.Background(), uri)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(ref, "posts/") || !strings.HasSuffix(ref, ".png") {
		t.Errorf("ref = %q, want posts/<name>.png", ref)
	}

	data, err := os.ReadFile(filepath.Join(s.Root(), filepath.FromSlash(ref)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != string(pngPixel) {
		t.Error("stored bytes differ from upload")
	}
}

func TestSaveDataURIInvalid(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"not a data uri", "https://example.com/cat.png"},
		{"not an image type", "data:text/plain;base64,aGVsbG8="},
		{"not base64", "data:image/png;base64,@@@"},
		{"text posing as image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
		{"empty payload", "data:image/png;base64,"},
	}

	s := NewStore(t.TempDir())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.SaveDataURI(context.Background(), tt.uri); !errors.Is(err, ErrInvalidImage) {
				t.Errorf("err = %v, want ErrInvalidImage", err)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	s := NewStore(t.TempDir())

	ref, err := s.Save(context.Background(), pngPixel)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Remove(ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), filepath.FromSlash(ref))); !os.IsNotExist(err) {
		t.Error("expected file to be removed")
	}
	if err := s.Remove(ref); err != nil {
		t.Errorf("second remove: %v", err)
	}
}

func TestHandlerServesFilesNotDirectories(t *testing.T) {
	s := NewStore(t.TempDir())

	ref, err := s.Save(context.Background(), pngPixel)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/" + ref, http.StatusOK},
		{"/posts/", http.StatusNotFound},
		{"/posts", http.StatusNotFound},
		{"/", http.StatusNotFound},
		{"/posts/missing.png", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
			}
			if tt.want == http.StatusNotFound && strings.Contains(rec.Body.String(), "href") {
				t.Errorf("GET %s leaked a listing: %q", tt.path, rec.Body.String())
			}
		})
	}
}
