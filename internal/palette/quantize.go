package palette

import (
	"image"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"instagenie/internal/brand"
)

// maxSamples keeps kmeans tractable on large logos.
const maxSamples = 12000

type weightedColor struct {
	col    colorful.Color
	weight float64
}

func dominantCandidates(img image.Image, n int) []weightedColor {
	found := dominantcolor.FindWeight(img, n)

	out := make([]weightedColor, 0, len(found))
	for _, c := range found {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok || !isFinite(col) {
			continue
		}
		w := c.Weight
		if w <= 0 || math.IsNaN(w) {
			w = 1e-6
		}
		out = append(out, weightedColor{col: col.Clamped(), weight: w})
	}
	return out
}

func kmeansCandidates(img image.Image, k int) []weightedColor {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 || k <= 0 {
		return nil
	}

	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	distinct := make(map[[3]uint32]struct{}, k)
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			if len(distinct) < k {
				distinct[[3]uint32{r16, g16, b16}] = struct{}{}
			}
			// RGBA is alpha-premultiplied.
			a := float64(a16)
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / a,
				float64(g16) / a,
				float64(b16) / a,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	// More clusters than distinct colors leaves kmeans with empty clusters.
	workK := min(k, len(distinct), len(dataset))
	cc, err := kmeans.New().Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	out := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}
		if !isFinite(col) {
			continue
		}
		out = append(out, weightedColor{col: col.Clamped(), weight: float64(len(c.Observations))})
	}
	return out
}

// buildPalette ranks candidates by weight, drops colors that collapse to the
// same hex value and pads the swatch list to exactly n by cycling.
func buildPalette(cands []weightedColor, n int) (brand.Palette, error) {
	if len(cands) == 0 {
		return brand.Palette{}, ErrNoColors
	}

	ranked := append([]weightedColor(nil), cands...)
	slices.SortStableFunc(ranked, func(a, b weightedColor) int {
		switch {
		case a.weight > b.weight:
			return -1
		case a.weight < b.weight:
			return 1
		}
		return 0
	})

	seen := make(map[brand.Color]struct{}, len(ranked))
	distinct := make([]brand.Color, 0, len(ranked))
	for _, c := range ranked {
		bc := toBrandColor(c.col)
		if _, ok := seen[bc]; ok {
			continue
		}
		seen[bc] = struct{}{}
		distinct = append(distinct, bc)
	}

	swatches := make([]brand.Color, 0, n)
	for i := 0; len(swatches) < n; i++ {
		swatches = append(swatches, distinct[i%len(distinct)])
	}

	return brand.Palette{
		Dominant: distinct[0],
		Swatches: swatches,
	}, nil
}

func isFinite(c colorful.Color) bool {
	for _, v := range []float64{c.R, c.G, c.B} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
