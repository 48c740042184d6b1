// Package storage keeps uploaded logos and generated images on local disk.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"instagenie/internal/gemini"
)

const presetPrefix = "preset:"

var (
	ErrInvalidName = errors.New("invalid file name")
	ErrNotFound    = errors.New("file not found")
)

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"webp": {},
}

type Options struct {
	UploadDir    string
	GeneratedDir string
	PresetDir    string
	Logger       *slog.Logger
}

type Store struct {
	uploadDir    string
	generatedDir string
	presetDir    string
	logger       *slog.Logger
}

func New(opts Options) (*Store, error) {
	s := &Store{
		uploadDir:    valueOr(opts.UploadDir, "uploads"),
		generatedDir: valueOr(opts.GeneratedDir, "generated"),
		presetDir:    valueOr(opts.PresetDir, filepath.Join("static", "presets")),
		logger:       opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	for _, dir := range []string{s.uploadDir, s.generatedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return s, nil
}

func (s *Store) UploadDir() string    { return s.uploadDir }
func (s *Store) GeneratedDir() string { return s.generatedDir }
func (s *Store) PresetDir() string    { return s.presetDir }

// AllowedExtension reports whether name ends in one of the accepted image
// extensions. A name without a dot is never allowed.
func AllowedExtension(name string) bool {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[idx+1:])]
	return ok
}

// SaveUpload stores r as "<uuid>_<sanitized name>" and returns that file name.
func (s *Store) SaveUpload(name string, r io.Reader) (string, error) {
	clean := SanitizeFilename(name)
	if clean == "" || !AllowedExtension(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	filename := uuid.NewString() + "_" + clean
	path := filepath.Join(s.uploadDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}

	s.logger.Info("logo uploaded", "file", filename, "bytes", n)
	return filename, nil
}

func (s *Store) UploadPath(filename string) (string, error) {
	return safeJoin(s.uploadDir, filename)
}

func (s *Store) GeneratedPath(filename string) (string, error) {
	return safeJoin(s.generatedDir, filename)
}

func (s *Store) PresetPath(filename string) (string, error) {
	return safeJoin(s.presetDir, filename)
}

// SaveGenerated writes img as "<uuid>.png". Payloads that are not PNG are
// re-encoded when they decode; otherwise the bytes are written unchanged.
func (s *Store) SaveGenerated(img gemini.Image) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("empty image data")
	}

	data := img.Data
	if img.MimeType != "image/png" {
		if decoded, _, err := image.Decode(bytes.NewReader(img.Data)); err == nil {
			var buf bytes.Buffer
			if err := png.Encode(&buf, decoded); err == nil {
				data = buf.Bytes()
			}
		}
	}

	filename := uuid.NewString() + ".png"
	if err := os.WriteFile(filepath.Join(s.generatedDir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write generated image: %w", err)
	}

	s.logger.Info("image saved", "file", filename, "bytes", len(data))
	return filename, nil
}

// ResolveLogo maps a logo reference to a path on disk. "preset:<name>" points
// at "<preset dir>/<name>-logo.jpeg"; anything else is an uploaded file name.
func (s *Store) ResolveLogo(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNotFound
	}

	var (
		path string
		err  error
	)
	if strings.HasPrefix(ref, presetPrefix) {
		path, err = safeJoin(s.presetDir, strings.TrimPrefix(ref, presetPrefix)+"-logo.jpeg")
	} else {
		path, err = safeJoin(s.uploadDir, ref)
	}
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return path, nil
}

// LoadLogo reads the referenced logo for sending to the image model.
func (s *Store) LoadLogo(ref string) (*gemini.ImageInput, error) {
	path, err := s.ResolveLogo(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	return &gemini.ImageInput{Data: data, MimeType: detectImageMime(data)}, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename strips directories and anything outside [A-Za-z0-9_.-].
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	return name
}

func safeJoin(dir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(dir, name), nil
}

func detectImageMime(data []byte) string {
	mimeType := http.DetectContentType(data)
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "image/jpeg"
	}
	return mimeType
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
