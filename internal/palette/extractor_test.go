package palette

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagenie/internal/brand"
)

var hexPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// stripes paints vertical bands whose widths follow weights.
func stripes(t *testing.T, cols []color.RGBA, weights []int) *image.RGBA {
	t.Helper()
	total := 0
	for _, w := range weights {
		total += w
	}
	img := image.NewRGBA(image.Rect(0, 0, total, 40))
	x := 0
	for i, w := range weights {
		for dx := 0; dx < w; dx++ {
			for y := 0; y < 40; y++ {
				img.SetRGBA(x+dx, y, cols[i])
			}
		}
		x += w
	}
	return img
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// oneByOneWebP is a 1x1 lossy WebP.
const oneByOneWebP = "UklGRiIAAABXRUJQVlA4IBYAAAAwAQCdASoBAAEADsD+JaQAA3AAAAAA"

// bigHeaderPNG encodes a small PNG and rewrites its IHDR to claim
// width x height, so only the header describes a huge image.
func bigHeaderPNG(t *testing.T, width, height uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	raw := buf.Bytes()

	// signature(8) + length(4) + "IHDR"(4), then width and height.
	binary.BigEndian.PutUint32(raw[16:20], width)
	binary.BigEndian.PutUint32(raw[20:24], height)
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))
	return raw
}

func assertWellFormed(t *testing.T, p brand.Palette, n int) {
	t.Helper()
	assert.Regexp(t, hexPattern, p.Dominant.Hex())
	require.Len(t, p.Swatches, n)
	for _, c := range p.Swatches {
		assert.Regexp(t, hexPattern, c.Hex())
	}
}

func fivecolor(t *testing.T) *image.RGBA {
	return stripes(t, []color.RGBA{
		{R: 220, G: 30, B: 30, A: 255},
		{R: 30, G: 200, B: 60, A: 255},
		{R: 30, G: 60, B: 220, A: 255},
		{R: 240, G: 200, B: 20, A: 255},
		{R: 150, G: 40, B: 180, A: 255},
	}, []int{60, 40, 30, 20, 10})
}

func TestExtract_DecodableImage(t *testing.T) {
	path := writePNG(t, fivecolor(t))

	for _, method := range []Method{MethodDominantColor, MethodKMeans} {
		t.Run(string(method), func(t *testing.T) {
			ex := New(Options{Method: method})
			got := ex.Extract(path)

			require.NoError(t, got.Err)
			assert.False(t, got.Fallback)
			assertWellFormed(t, got.Palette, DefaultSwatchCount)
		})
	}
}

func TestExtract_OtherFormats(t *testing.T) {
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, fivecolor(t), &jpeg.Options{Quality: 95}))

	var gf bytes.Buffer
	require.NoError(t, gif.Encode(&gf, fivecolor(t), nil))

	webp, err := base64.StdEncoding.DecodeString(oneByOneWebP)
	require.NoError(t, err)

	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		{name: "logo.jpg", data: jpg.Bytes(), format: "jpeg"},
		{name: "logo.gif", data: gf.Bytes(), format: "gif"},
		{name: "logo.webp", data: webp, format: "webp"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			_, format, err := image.DecodeConfig(bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)

			got := New(Options{Method: MethodKMeans}).Extract(writeFile(t, tt.name, tt.data))
			require.NoError(t, got.Err)
			assert.False(t, got.Fallback)
			assertWellFormed(t, got.Palette, DefaultSwatchCount)
		})
	}
}

func TestExtract_RejectsOversizedImages(t *testing.T) {
	t.Run("header above default limit", func(t *testing.T) {
		path := writeFile(t, "bomb.png", bigHeaderPNG(t, 12000, 12000))

		got := New(Options{}).Extract(path)
		assert.True(t, got.Fallback)
		assert.ErrorIs(t, got.Err, ErrTooLarge)
		assert.Equal(t, brand.FallbackPalette(), got.Palette)
	})

	t.Run("configured limit", func(t *testing.T) {
		got := New(Options{MaxPixels: 100}).Extract(writePNG(t, fivecolor(t)))
		assert.True(t, got.Fallback)
		assert.ErrorIs(t, got.Err, ErrTooLarge)
	})
}

func TestExtractReader_NonSeekable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, fivecolor(t)))

	got := New(Options{Method: MethodKMeans}).ExtractReader(io.MultiReader(&buf))
	require.NoError(t, got.Err)
	assertWellFormed(t, got.Palette, DefaultSwatchCount)
}

func TestExtract_ConfiguredSwatchCount(t *testing.T) {
	ex := New(Options{SwatchCount: 6})
	got := ex.ExtractImage(fivecolor(t))

	assert.False(t, got.Fallback)
	assertWellFormed(t, got.Palette, 6)
}

func TestExtract_DominantIsMajorityColor(t *testing.T) {
	img := stripes(t, []color.RGBA{
		{R: 230, G: 20, B: 20, A: 255},
		{R: 20, G: 20, B: 230, A: 255},
	}, []int{160, 40})

	got := New(Options{Method: MethodKMeans}).ExtractImage(img)
	require.False(t, got.Fallback)

	d := got.Palette.Dominant
	assert.Greater(t, int(d.R), int(d.B))
	assert.Equal(t, d, got.Palette.Swatches[0])
}

func TestExtract_SolidImagePadsSwatches(t *testing.T) {
	img := stripes(t, []color.RGBA{{R: 52, G: 152, B: 219, A: 255}}, []int{50})

	got := New(Options{Method: MethodKMeans}).ExtractImage(img)
	require.False(t, got.Fallback)
	assertWellFormed(t, got.Palette, DefaultSwatchCount)
	for _, c := range got.Palette.Swatches {
		assert.Equal(t, got.Palette.Swatches[0], c)
	}
}

func TestExtract_FallbackCases(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.png")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	text := filepath.Join(dir, "notes.jpg")
	require.NoError(t, os.WriteFile(text, []byte("not an image at all"), 0o644))

	transparent := writePNG(t, image.NewNRGBA(image.Rect(0, 0, 16, 16)))

	tests := []struct {
		name string
		path string
	}{
		{name: "zero byte file", path: empty},
		{name: "text file", path: text},
		{name: "missing file", path: filepath.Join(dir, "nope.png")},
		{name: "fully transparent", path: transparent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Extraction
			require.NotPanics(t, func() {
				got = New(Options{}).Extract(tt.path)
			})
			assert.True(t, got.Fallback)
			assert.Error(t, got.Err)
			assert.Equal(t, brand.FallbackPalette(), got.Palette)
		})
	}
}

func TestExtractImage_Nil(t *testing.T) {
	got := New(Options{}).ExtractImage(nil)
	assert.True(t, got.Fallback)
	assert.ErrorIs(t, got.Err, ErrEmpty)
}

func TestBuildPalette_RanksByWeight(t *testing.T) {
	cands := []weightedColor{
		{col: colorful.Color{R: 0, G: 0, B: 1}, weight: 1},
		{col: colorful.Color{R: 1, G: 0, B: 0}, weight: 10},
		{col: colorful.Color{R: 0, G: 1, B: 0}, weight: 5},
		{col: colorful.Color{R: 1, G: 0, B: 0}, weight: 3},
	}

	p, err := buildPalette(cands, 4)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", p.Dominant.Hex())
	assert.Equal(t, []string{"#ff0000", "#00ff00", "#0000ff", "#ff0000"}, hexes(p.Swatches))

	_, err = buildPalette(nil, 4)
	assert.ErrorIs(t, err, ErrNoColors)
}

func TestParseMethod(t *testing.T) {
	assert.Equal(t, MethodKMeans, ParseMethod("KMeans"))
	assert.Equal(t, MethodDominantColor, ParseMethod(""))
	assert.Equal(t, MethodDominantColor, ParseMethod("median-cut"))
}

func hexes(cs []brand.Color) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Hex())
	}
	return out
}
