package brand

import "strings"

type Tone string

const (
	ToneCreative     Tone = "creative"
	ToneProfessional Tone = "professional"
	TonePlayful      Tone = "playful"
	ToneMinimal      Tone = "minimal"
	ToneBold         Tone = "bold"
)

var toneOrder = []Tone{
	ToneCreative,
	ToneProfessional,
	TonePlayful,
	ToneMinimal,
	ToneBold,
}

var toneDescriptions = map[Tone]string{
	ToneCreative:     "Creative and artistic, with unique visual elements, unexpected compositions, and imaginative design",
	ToneProfessional: "Professional and corporate, clean lines, sophisticated look, business-appropriate aesthetics",
	TonePlayful:      "Fun and playful, bright colors, dynamic shapes, energetic and youthful vibe",
	ToneMinimal:      "Minimalist and clean, lots of white space, simple geometric shapes, elegant simplicity",
	ToneBold:         "Bold and impactful, strong colors, dramatic contrasts, attention-grabbing visuals",
}

// ParseTone never fails: anything it does not recognize becomes ToneCreative.
func ParseTone(value string) Tone {
	t := Tone(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := toneDescriptions[t]; ok {
		return t
	}
	return ToneCreative
}

func (t Tone) Known() bool {
	_, ok := toneDescriptions[t]
	return ok
}

// Description resolves the tone to its fixed phrase, falling back to creative.
func (t Tone) Description() string {
	if d, ok := toneDescriptions[t]; ok {
		return d
	}
	return toneDescriptions[ToneCreative]
}

func Tones() []Tone {
	return append([]Tone(nil), toneOrder...)
}
