// Package brand holds the value types shared by the color extractor, the
// prompt assembler and the generation batch.
package brand

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Color is an RGB triple. Its canonical text form is lowercase "#rrggbb".
type Color struct {
	R, G, B uint8
}

var ErrInvalidColor = errors.New("invalid color")

// ParseColor accepts "#rrggbb" or "rrggbb" in any case.
func ParseColor(value string) (Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}
	return Color{R: raw[0], G: raw[1], B: raw[2]}, nil
}

func MustParseColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Palette is a dominant color plus swatches ordered by descending prominence.
// The dominant color is not required to appear among the swatches.
type Palette struct {
	Dominant Color   `json:"dominant"`
	Swatches []Color `json:"palette"`
}

var ErrEmptyPalette = errors.New("palette has no swatches")

func (p Palette) Validate() error {
	if len(p.Swatches) == 0 {
		return ErrEmptyPalette
	}
	return nil
}

// Leading returns at most n swatches from the front of the palette.
func (p Palette) Leading(n int) []Color {
	if n > len(p.Swatches) {
		n = len(p.Swatches)
	}
	if n < 0 {
		n = 0
	}
	return append([]Color(nil), p.Swatches[:n]...)
}

func (p Palette) Clone() Palette {
	p.Swatches = append([]Color(nil), p.Swatches...)
	return p
}

func (p Palette) String() string {
	raw, _ := json.Marshal(p)
	return string(raw)
}

var fallbackPalette = Palette{
	Dominant: MustParseColor("#6366f1"),
	Swatches: []Color{
		MustParseColor("#6366f1"),
		MustParseColor("#8b5cf6"),
		MustParseColor("#a855f7"),
		MustParseColor("#ec4899"),
		MustParseColor("#f43f5e"),
	},
}

// FallbackPalette is returned whenever colors cannot be extracted from a logo,
// and is used when a caller does not send any brand colors.
func FallbackPalette() Palette {
	return fallbackPalette.Clone()
}

// Request is everything needed to assemble one prompt for one variation.
type Request struct {
	CompanyName    string
	Industry       string
	ContentTheme   string
	Tone           Tone
	Palette        Palette
	VariationIndex int
	// Logo reports whether a logo image is sent alongside the prompt.
	Logo bool
}
