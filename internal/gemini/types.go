package gemini

import (
	"context"
	"strings"
)

// ImageGenerator turns a prompt, optionally accompanied by a logo, into
// model output. Implementations make exactly one attempt per call.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, logo *ImageInput) (Response, error)
}

type ImageInput struct {
	Data     []byte
	MimeType string
}

type Image struct {
	MimeType string
	Data     []byte
}

type Response struct {
	Text   string
	Images []Image
}

func (r Response) FirstImage() (Image, bool) {
	for _, img := range r.Images {
		if len(img.Data) > 0 && strings.HasPrefix(img.MimeType, "image/") {
			return img, true
		}
	}
	return Image{}, false
}
