package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"instagenie/internal/brand"
	"instagenie/internal/prompt"
)

type promptFlags struct {
	company   string
	industry  string
	theme     string
	tone      string
	variation int
	colors    []string
	logo      bool
}

func newPromptCmd() *cobra.Command {
	var flags promptFlags

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the generation prompt for one variation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrompt(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.company, "company", "Your Brand", "Company name")
	f.StringVar(&flags.industry, "industry", "General", "Industry")
	f.StringVar(&flags.theme, "theme", "Product showcase", "Content theme")
	f.StringVarP(&flags.tone, "tone", "t", string(brand.ToneCreative), "Tone")
	f.IntVarP(&flags.variation, "variation", "v", 1, "Variation index (1-based)")
	f.StringSliceVarP(&flags.colors, "colors", "c", nil, "Hex colors, dominant first (default palette when empty)")
	f.BoolVar(&flags.logo, "logo", false, "Include logo instructions")
	return cmd
}

func runPrompt(cmd *cobra.Command, flags promptFlags) error {
	pal, err := paletteFromFlags(flags.colors)
	if err != nil {
		return err
	}

	out := prompt.Assemble(brand.Request{
		CompanyName:    flags.company,
		Industry:       flags.industry,
		ContentTheme:   flags.theme,
		Tone:           brand.ParseTone(flags.tone),
		Palette:        pal,
		VariationIndex: flags.variation,
		Logo:           flags.logo,
	})
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

// paletteFromFlags treats the first color as dominant and every color as a
// swatch.
func paletteFromFlags(values []string) (brand.Palette, error) {
	if len(values) == 0 {
		return brand.FallbackPalette(), nil
	}

	var p brand.Palette
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		c, err := brand.ParseColor(v)
		if err != nil {
			return brand.Palette{}, fmt.Errorf("--colors: %w", err)
		}
		p.Swatches = append(p.Swatches, c)
	}
	if err := p.Validate(); err != nil {
		return brand.Palette{}, fmt.Errorf("--colors: %w", err)
	}
	p.Dominant = p.Swatches[0]
	return p, nil
}
