package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagenie/internal/gemini"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	s, err := New(Options{
		UploadDir:    filepath.Join(root, "uploads"),
		GeneratedDir: filepath.Join(root, "generated"),
		PresetDir:    filepath.Join(root, "presets"),
	})
	require.NoError(t, err)
	return s
}

func TestAllowedExtension(t *testing.T) {
	for _, name := range []string{"a.png", "a.JPG", "logo.jpeg", "x.gif", "brand.webp", "archive.tar.png"} {
		assert.True(t, AllowedExtension(name), name)
	}
	for _, name := range []string{"a.bmp", "png", "", "logo.", "a.svg"} {
		assert.False(t, AllowedExtension(name), name)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd.png", SanitizeFilename("../../etc/passwd.png"))
	assert.Equal(t, "my_logo.png", SanitizeFilename("my logo.png"))
	assert.Equal(t, "logo.png", SanitizeFilename(`C:\Users\me\logo.png`))
	assert.Equal(t, "brnd.jpg", SanitizeFilename("bränd.jpg"))
	assert.Equal(t, "", SanitizeFilename("../"))
}

func TestSaveUpload(t *testing.T) {
	s := newStore(t)

	name, err := s.SaveUpload("my logo.png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_my_logo.png"))
	assert.Len(t, name, 36+1+len("my_logo.png"))

	path, err := s.UploadPath(name)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(raw))

	_, err = s.SaveUpload("notes.txt", strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestSaveGenerated(t *testing.T) {
	s := newStore(t)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, img, nil))

	name, err := s.SaveGenerated(gemini.Image{MimeType: "image/jpeg", Data: jpg.Bytes()})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	f, err := os.Open(filepath.Join(s.GeneratedDir(), name))
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err, "jpeg payload is re-encoded as png")

	name, err = s.SaveGenerated(gemini.Image{MimeType: "image/heic", Data: []byte("opaque")})
	require.NoError(t, err)
	raw, err := os.ReadFile(filepath.Join(s.GeneratedDir(), name))
	require.NoError(t, err)
	assert.Equal(t, "opaque", string(raw))

	_, err = s.SaveGenerated(gemini.Image{})
	assert.Error(t, err)
}

func TestResolveLogo(t *testing.T) {
	s := newStore(t)

	require.NoError(t, os.MkdirAll(s.PresetDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.PresetDir(), "cafe-logo.jpeg"), []byte("x"), 0o644))

	uploaded, err := s.SaveUpload("logo.png", strings.NewReader("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)

	path, err := s.ResolveLogo("preset:cafe")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.PresetDir(), "cafe-logo.jpeg"), path)

	path, err = s.ResolveLogo(uploaded)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.UploadDir(), uploaded), path)

	_, err = s.ResolveLogo("missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ResolveLogo("../secret.png")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.ResolveLogo("preset:../../x")
	assert.ErrorIs(t, err, ErrInvalidName)

	logo, err := s.LoadLogo(uploaded)
	require.NoError(t, err)
	assert.Equal(t, "image/png", logo.MimeType)
}
