// Package palette extracts a dominant color and a ranked swatch list from a
// logo image. Extraction never fails from the caller's point of view: any
// problem produces the brand fallback palette together with the reason.
package palette

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/webp"

	"instagenie/internal/brand"
)

type Method string

const (
	MethodDominantColor Method = "dominantcolor"
	MethodKMeans        Method = "kmeans"
)

const DefaultSwatchCount = 5

// DefaultMaxPixels bounds width*height before an image is decoded.
const DefaultMaxPixels = 89_478_485

var (
	ErrNoColors = errors.New("image has no opaque pixels")
	ErrEmpty    = errors.New("image has no pixels")
	ErrTooLarge = errors.New("image dimensions too large")
)

type Options struct {
	Method      Method
	SwatchCount int
	MaxPixels   int64
	Logger      *slog.Logger
}

type Extractor struct {
	method      Method
	swatchCount int
	maxPixels   int64
	logger      *slog.Logger
}

// Extraction is either an extracted palette (Fallback false) or the fallback
// palette plus the error that forced it. Palette is valid in both cases.
type Extraction struct {
	Palette  brand.Palette
	Fallback bool
	Err      error
}

func ParseMethod(value string) Method {
	switch Method(strings.ToLower(strings.TrimSpace(value))) {
	case MethodKMeans:
		return MethodKMeans
	default:
		return MethodDominantColor
	}
}

func New(opts Options) *Extractor {
	count := opts.SwatchCount
	if count <= 0 {
		count = DefaultSwatchCount
	}

	maxPixels := opts.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Extractor{
		method:      ParseMethod(string(opts.Method)),
		swatchCount: count,
		maxPixels:   maxPixels,
		logger:      logger,
	}
}

func (e *Extractor) SwatchCount() int {
	return e.swatchCount
}

func (e *Extractor) Extract(path string) Extraction {
	file, err := os.Open(path)
	if err != nil {
		return e.fallback(fmt.Errorf("open image: %w", err))
	}
	defer file.Close()

	return e.ExtractReader(file)
}

// ExtractReader reads the image header first and refuses images above the
// pixel limit before any pixel data is decoded.
func (e *Extractor) ExtractReader(r io.Reader) Extraction {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		raw, err := io.ReadAll(r)
		if err != nil {
			return e.fallback(fmt.Errorf("read image: %w", err))
		}
		rs = bytes.NewReader(raw)
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return e.fallback(fmt.Errorf("seek image: %w", err))
	}

	cfg, _, err := image.DecodeConfig(rs)
	if err != nil {
		return e.fallback(fmt.Errorf("decode image: %w", err))
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > e.maxPixels {
		return e.fallback(fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height))
	}

	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return e.fallback(fmt.Errorf("seek image: %w", err))
	}
	img, _, err := image.Decode(rs)
	if err != nil {
		return e.fallback(fmt.Errorf("decode image: %w", err))
	}
	return e.ExtractImage(img)
}

func (e *Extractor) ExtractImage(img image.Image) (out Extraction) {
	defer func() {
		if r := recover(); r != nil {
			out = e.fallback(fmt.Errorf("quantize: %v", r))
		}
	}()

	if img == nil || img.Bounds().Empty() {
		return e.fallback(ErrEmpty)
	}
	if !hasOpaquePixel(img) {
		return e.fallback(ErrNoColors)
	}

	var cands []weightedColor
	switch e.method {
	case MethodKMeans:
		cands = kmeansCandidates(img, e.swatchCount)
		if len(cands) == 0 {
			e.logger.Warn("kmeans returned no clusters, falling back to dominantcolor")
			cands = dominantCandidates(img, e.swatchCount)
		}
	default:
		cands = dominantCandidates(img, e.swatchCount)
	}

	p, err := buildPalette(cands, e.swatchCount)
	if err != nil {
		return e.fallback(err)
	}
	return Extraction{Palette: p}
}

func (e *Extractor) fallback(err error) Extraction {
	e.logger.Warn("color extraction failed, using fallback palette", "err", err)
	return Extraction{
		Palette:  brand.FallbackPalette(),
		Fallback: true,
		Err:      err,
	}
}

func toBrandColor(c colorful.Color) brand.Color {
	r, g, b := c.Clamped().RGB255()
	return brand.Color{R: r, G: g, B: b}
}

func hasOpaquePixel(img image.Image) bool {
	b := img.Bounds()
	step := 1
	if n := b.Dx() * b.Dy(); n > 250000 {
		step = 4
	}
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return true
			}
		}
	}
	return false
}
