// Package prompt turns a brand request into the text prompt sent to the
// image model.
package prompt

import "instagenie/internal/brand"

type NamedOption struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var toneNames = map[brand.Tone]string{
	brand.ToneCreative:     "Creative",
	brand.ToneProfessional: "Professional",
	brand.TonePlayful:      "Playful",
	brand.ToneMinimal:      "Minimal",
	brand.ToneBold:         "Bold",
}

func Tones() []NamedOption {
	tones := brand.Tones()
	out := make([]NamedOption, 0, len(tones))
	for _, t := range tones {
		out = append(out, NamedOption{
			Key:         string(t),
			Name:        toneNames[t],
			Description: t.Description(),
		})
	}
	return out
}

func ToneName(t brand.Tone) string {
	if name, ok := toneNames[t]; ok {
		return name
	}
	return toneNames[brand.ToneCreative]
}

func VariationHints() []string {
	return append([]string(nil), variationHints...)
}
