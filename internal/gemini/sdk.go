package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type SDKOptions struct {
	APIKey string
	Model  string
	Logger *slog.Logger
}

// SDKClient implements ImageGenerator on top of the official Go SDK.
type SDKClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewSDK(ctx context.Context, opts SDKOptions) (*SDKClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &SDKClient{client: client, model: model, logger: logger}, nil
}

func (c *SDKClient) GenerateImage(ctx context.Context, prompt string, logo *ImageInput) (Response, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Response{}, errors.New("prompt is empty")
	}

	parts := []genai.Part{genai.Text(prompt)}
	if logo != nil && len(logo.Data) > 0 {
		mimeType := logo.MimeType
		if mimeType == "" {
			mimeType = http.DetectContentType(logo.Data)
		}
		parts = append(parts, genai.Blob{MIMEType: mimeType, Data: logo.Data})
	}

	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return Response{}, fmt.Errorf("failed to generate content: %w", err)
	}

	return responseFromSDK(resp), nil
}

func (c *SDKClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func responseFromSDK(resp *genai.GenerateContentResponse) Response {
	if resp == nil || len(resp.Candidates) == 0 {
		return Response{}
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return Response{}
	}

	var text strings.Builder
	var out Response
	for _, p := range cand.Content.Parts {
		switch v := p.(type) {
		case genai.Text:
			text.WriteString(string(v))
		case genai.Blob:
			if len(v.Data) > 0 {
				out.Images = append(out.Images, Image{MimeType: v.MIMEType, Data: v.Data})
			}
		}
	}
	out.Text = text.String()
	return out
}
