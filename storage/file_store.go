package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path candidate images are served under.
// Only URLs below this prefix are treated as managed files eligible
// for cleanup when a session is deleted.
const URLPrefix = "/uploads/candidates/"

// FileStore keeps candidate images on local disk under a single
// directory and maps them to public URLs.
type FileStore struct {
	basePath string
}

// NewFileStore creates the upload directory if missing.
func NewFileStore(basePath string) (*FileStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the directory files are written to.
func (f *FileStore) BasePath() string {
	return f.basePath
}

// GenerateFilename builds a unique filename preserving the original
// extension, e.g. candidate-5f4d….png.
func (f *FileStore) GenerateFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	return "candidate-" + uuid.NewString() + ext
}

// Save writes the file and returns its public URL.
func (f *FileStore) Save(filename string, r io.Reader) (string, error) {
	target := filepath.Join(f.basePath, safeFilename(filename))

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return URLPrefix + filepath.Base(target), nil
}

// Delete removes a stored file by name.
func (f *FileStore) Delete(filename string) error {
	return os.Remove(filepath.Join(f.basePath, safeFilename(filename)))
}

// FilenameFromURL extracts the managed filename from a photo URL.
// The second result is false for URLs outside the managed prefix,
// which must be left untouched.
func FilenameFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, URLPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(url, URLPrefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

func safeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.TrimSpace(name)
	if name == "" {
		return "file"
	}
	return name
}
