package prompt

import (
	"fmt"
	"strings"

	"instagenie/internal/brand"
)

const (
	AspectRatio    = "4:5"
	ResolutionHint = "1080x1350 pixels - Instagram optimal"
)

var variationHints = []string{
	"Focus on the main subject with a clean background.",
	"Include lifestyle context showing the product/service in use.",
	"Use an abstract or artistic interpretation.",
	"Emphasize the emotional appeal and human connection.",
	"Highlight the key benefit or value proposition visually.",
}

// SelectHint picks hints[(variation-1) mod len(hints)] so hints cycle
// instead of running out. The modulo is always non-negative.
func SelectHint(hints []string, variation int) string {
	n := len(hints)
	if n == 0 {
		return ""
	}
	i := (variation - 1) % n
	if i < 0 {
		i += n
	}
	return hints[i]
}

// Assemble builds the generation prompt for one variation. It is a pure
// function of req; fields are substituted literally, empty ones included.
func Assemble(req brand.Request) string {
	toneDesc := req.Tone.Description()
	hint := SelectHint(variationHints, req.VariationIndex)

	secondary := make([]string, 0, 3)
	for _, c := range req.Palette.Leading(3) {
		secondary = append(secondary, c.Hex())
	}

	var b strings.Builder
	b.Grow(1536)

	b.WriteString(fmt.Sprintf("Create a professional Instagram post image for %s, a company in the %s industry.\n\n", req.CompanyName, req.Industry))

	if req.Logo {
		b.WriteString("IMPORTANT: Include the provided company logo prominently in the image design. The logo should be visible and well-integrated into the composition.\n\n")
	}

	b.WriteString(fmt.Sprintf("Topic/Theme: %s\n\n", req.ContentTheme))

	b.WriteString("Tone & Style:\n")
	b.WriteString("- " + toneDesc + "\n")
	b.WriteString("- " + hint + "\n\n")

	b.WriteString("MANDATORY Color Palette (USE THESE EXACT COLORS):\n")
	b.WriteString(fmt.Sprintf("- Primary Color: %s - use this as the dominant color\n", req.Palette.Dominant.Hex()))
	b.WriteString(fmt.Sprintf("- Secondary Colors: %s\n", strings.Join(secondary, ", ")))
	b.WriteString("- The entire image should be designed using ONLY these brand colors\n\n")

	b.WriteString("Requirements:\n")
	requirements := []string{
		"Use the specified brand color palette throughout",
		"Modern, high-resolution quality suitable for Instagram",
		fmt.Sprintf("Aspect ratio: %s (%s)", AspectRatio, ResolutionHint),
		"No text overlays unless requested",
		"Professional and polished look",
		"Eye-catching composition that stops the scroll",
	}
	if req.Logo {
		requirements = append([]string{"Feature the company logo prominently in the design"}, requirements...)
	}
	for _, line := range requirements {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\n")

	b.WriteString("Create a compelling, brand-consistent image for social media marketing.")

	return b.String()
}
