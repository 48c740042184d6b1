package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagenie/internal/brand"
	"instagenie/internal/gemini"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	logos   []*gemini.ImageInput
	respond func(call int, prompt string) (gemini.Response, error)
}

func (f *fakeGenerator) GenerateImage(_ context.Context, prompt string, logo *gemini.ImageInput) (gemini.Response, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.logos = append(f.logos, logo)
	call := len(f.prompts)
	f.mu.Unlock()

	if f.respond == nil {
		return imageResponse(), nil
	}
	return f.respond(call, prompt)
}

func imageResponse() gemini.Response {
	return gemini.Response{Images: []gemini.Image{{MimeType: "image/png", Data: []byte("png")}}}
}

type fakeStore struct {
	mu    sync.Mutex
	saved int
	err   error
}

func (s *fakeStore) SaveGenerated(gemini.Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.saved++
	return fmt.Sprintf("img-%d.png", s.saved), nil
}

func job(count int) Job {
	return Job{
		CompanyName:  "Acme",
		Industry:     "Coffee",
		ContentTheme: "New seasonal blend",
		Tone:         brand.ToneBold,
		Palette:      brand.FallbackPalette(),
		Count:        count,
	}
}

// failOnHint fails whichever call carries the third variation's prompt, so it
// works regardless of scheduling order.
func failOnHint(hint string) func(int, string) (gemini.Response, error) {
	return func(_ int, prompt string) (gemini.Response, error) {
		if strings.Contains(prompt, hint) {
			return gemini.Response{}, errors.New("upstream exploded")
		}
		return imageResponse(), nil
	}
}

func TestGenerate_ThirdOfFiveFails(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			gen := &fakeGenerator{respond: failOnHint("Use an abstract or artistic interpretation.")}
			svc := New(Options{Generator: gen, Store: &fakeStore{}, Concurrency: concurrency})

			out := svc.Generate(context.Background(), job(5))
			require.Len(t, out, 5)

			for i, o := range out {
				assert.Equal(t, i+1, o.VariationIndex)
				assert.Equal(t, brand.ToneBold, o.Tone)
				if i == 2 {
					assert.False(t, o.OK())
					require.NotNil(t, o.Failure)
					assert.Equal(t, "upstream exploded", o.Failure.Reason)
					assert.Nil(t, o.Success)
					continue
				}
				require.True(t, o.OK())
				assert.True(t, strings.HasPrefix(o.Success.URL, "/generated/img-"))
				assert.Nil(t, o.Failure)
			}

			ok, failed := Count(out)
			assert.Equal(t, 4, ok)
			assert.Equal(t, 1, failed)
		})
	}
}

func TestGenerate_AllFail(t *testing.T) {
	gen := &fakeGenerator{respond: func(int, string) (gemini.Response, error) {
		return gemini.Response{}, errors.New("down")
	}}
	out := New(Options{Generator: gen, Store: &fakeStore{}}).Generate(context.Background(), job(3))

	ok, failed := Count(out)
	assert.Equal(t, 0, ok)
	assert.Equal(t, 3, failed)
}

func TestGenerate_TextOnlyResponses(t *testing.T) {
	gen := &fakeGenerator{respond: func(call int, _ string) (gemini.Response, error) {
		if call == 1 {
			return gemini.Response{Text: strings.Repeat("x", 300)}, nil
		}
		return gemini.Response{}, nil
	}}
	out := New(Options{Generator: gen, Store: &fakeStore{}}).Generate(context.Background(), job(2))

	require.Len(t, out, 2)
	assert.Equal(t, "No image generated. Response: "+strings.Repeat("x", 200), out[0].Failure.Reason)
	assert.Equal(t, "No image in response", out[1].Failure.Reason)
}

func TestGenerate_StoreFailure(t *testing.T) {
	gen := &fakeGenerator{}
	out := New(Options{Generator: gen, Store: &fakeStore{err: errors.New("disk full")}}).Generate(context.Background(), job(1))

	require.Len(t, out, 1)
	assert.Equal(t, "disk full", out[0].Failure.Reason)
}

func TestGenerate_PanicIsIsolated(t *testing.T) {
	gen := &fakeGenerator{respond: func(_ int, prompt string) (gemini.Response, error) {
		if strings.Contains(prompt, "Include lifestyle context") {
			panic("boom")
		}
		return imageResponse(), nil
	}}
	out := New(Options{Generator: gen, Store: &fakeStore{}}).Generate(context.Background(), job(3))

	require.Len(t, out, 3)
	assert.True(t, out[0].OK())
	assert.False(t, out[1].OK())
	assert.Contains(t, out[1].Failure.Reason, "boom")
	assert.True(t, out[2].OK())
}

func TestGenerate_PromptsCarryVariationAndLogo(t *testing.T) {
	gen := &fakeGenerator{}
	j := job(2)
	j.Logo = &gemini.ImageInput{Data: []byte("logo"), MimeType: "image/png"}

	New(Options{Generator: gen, Store: &fakeStore{}}).Generate(context.Background(), j)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "Focus on the main subject")
	assert.Contains(t, gen.prompts[1], "Include lifestyle context")
	for i := range gen.prompts {
		assert.Contains(t, gen.prompts[i], "company logo")
		assert.Same(t, j.Logo, gen.logos[i])
	}
}

func TestGenerate_ZeroCount(t *testing.T) {
	gen := &fakeGenerator{}
	assert.Empty(t, New(Options{Generator: gen, Store: &fakeStore{}}).Generate(context.Background(), job(0)))
	assert.Empty(t, gen.prompts)
}
