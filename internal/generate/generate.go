// Package generate runs one image-generation call per requested variation
// and reports a tagged outcome for each, so a failed variation never
// affects its siblings.
package generate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"instagenie/internal/brand"
	"instagenie/internal/gemini"
	"instagenie/internal/prompt"
)

const maxLoggedPrompt = 200

type ImageStore interface {
	SaveGenerated(img gemini.Image) (string, error)
}

type Options struct {
	Generator   gemini.ImageGenerator
	Store       ImageStore
	URLPrefix   string
	Concurrency int
	Logger      *slog.Logger
}

type Service struct {
	gen         gemini.ImageGenerator
	store       ImageStore
	urlPrefix   string
	concurrency int
	logger      *slog.Logger
}

type Job struct {
	CompanyName  string
	Industry     string
	ContentTheme string
	Tone         brand.Tone
	Palette      brand.Palette
	Count        int
	Logo         *gemini.ImageInput
}

// Outcome is exactly one of Success or Failure.
type Outcome struct {
	VariationIndex int
	Tone           brand.Tone
	Success        *Success
	Failure        *Failure
}

type Success struct {
	Filename string
	URL      string
}

type Failure struct {
	Reason string
}

func (o Outcome) OK() bool {
	return o.Success != nil
}

func New(opts Options) *Service {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	prefix := opts.URLPrefix
	if prefix == "" {
		prefix = "/generated/"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Service{
		gen:         opts.Generator,
		store:       opts.Store,
		urlPrefix:   prefix,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Generate always returns job.Count outcomes ordered by variation index.
func (s *Service) Generate(ctx context.Context, job Job) []Outcome {
	if job.Count < 1 {
		return nil
	}

	outcomes := make([]Outcome, job.Count)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range outcomes {
		variation := i + 1
		g.Go(func() error {
			outcomes[variation-1] = s.variation(ctx, job, variation)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *Service) variation(ctx context.Context, job Job, variation int) (out Outcome) {
	out = Outcome{VariationIndex: variation, Tone: job.Tone}
	logger := s.logger.With("variation", variation, "count", job.Count, "tone", job.Tone)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("generation panicked", "panic", r)
			out.Success = nil
			out.Failure = &Failure{Reason: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	text := prompt.Assemble(brand.Request{
		CompanyName:    job.CompanyName,
		Industry:       job.Industry,
		ContentTheme:   job.ContentTheme,
		Tone:           job.Tone,
		Palette:        job.Palette,
		VariationIndex: variation,
		Logo:           job.Logo != nil,
	})
	logger.Info("generating image", "prompt", truncate(text, maxLoggedPrompt), "with_logo", job.Logo != nil)

	resp, err := s.gen.GenerateImage(ctx, text, job.Logo)
	if err != nil {
		logger.Error("generation failed", "err", err)
		out.Failure = &Failure{Reason: err.Error()}
		return out
	}

	img, ok := resp.FirstImage()
	if !ok {
		reason := "No image in response"
		if t := strings.TrimSpace(resp.Text); t != "" {
			reason = "No image generated. Response: " + truncate(t, maxLoggedPrompt)
		}
		logger.Warn("no image in response", "text", truncate(resp.Text, maxLoggedPrompt))
		out.Failure = &Failure{Reason: reason}
		return out
	}

	filename, err := s.store.SaveGenerated(img)
	if err != nil {
		logger.Error("save generated image failed", "err", err)
		out.Failure = &Failure{Reason: err.Error()}
		return out
	}

	out.Success = &Success{
		Filename: filename,
		URL:      path.Join(s.urlPrefix, filename),
	}
	return out
}

// Count returns how many outcomes succeeded and failed.
func Count(outcomes []Outcome) (succeeded, failed int) {
	for _, o := range outcomes {
		if o.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
