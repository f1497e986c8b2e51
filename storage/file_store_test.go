package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaveAndDelete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	url, err := store.Save("candidate-abc.png", strings.NewReader("png-bytes"))
	assert.NoError(t, err)
	assert.Equal(t, URLPrefix+"candidate-abc.png", url)

	content, err := os.ReadFile(filepath.Join(store.BasePath(), "candidate-abc.png"))
	assert.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	assert.NoError(t, store.Delete("candidate-abc.png"))
	_, err = os.Stat(filepath.Join(store.BasePath(), "candidate-abc.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingFile(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	err = store.Delete("candidate-missing.png")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveStripsPathComponents(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	// A filename carrying path segments must not escape the base dir
	url, err := store.Save("../escape.png", strings.NewReader("x"))
	assert.NoError(t, err)
	assert.Equal(t, URLPrefix+"escape.png", url)

	_, err = os.Stat(filepath.Join(store.BasePath(), "escape.png"))
	assert.NoError(t, err)
}

func TestGenerateFilename(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	name := store.GenerateFilename("My Photo.PNG")
	assert.True(t, strings.HasPrefix(name, "candidate-"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	// Unique per call
	assert.NotEqual(t, name, store.GenerateFilename("My Photo.PNG"))

	// No extension on the original is fine
	bare := store.GenerateFilename("photo")
	assert.True(t, strings.HasPrefix(bare, "candidate-"))
	assert.False(t, strings.Contains(bare, "."))
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		url     string
		name    string
		managed bool
	}{
		{URLPrefix + "candidate-1.png", "candidate-1.png", true},
		{"https://example.com/photo.png", "", false},
		{"/other/path/photo.png", "", false},
		{URLPrefix, "", false},
		{URLPrefix + "nested/photo.png", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		name, managed := FilenameFromURL(tt.url)
		assert.Equal(t, tt.managed, managed, "url %q", tt.url)
		assert.Equal(t, tt.name, name, "url %q", tt.url)
	}
}
