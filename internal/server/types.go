package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"instagenie/internal/brand"
)

const (
	defaultCompanyName  = "Your Brand"
	defaultIndustry     = "General"
	defaultContentTheme = "Product showcase"
)

type apiError struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	Success  bool          `json:"success"`
	Filename string        `json:"filename"`
	Colors   brand.Palette `json:"colors"`
	Message  string        `json:"message"`
	Fallback bool          `json:"fallback,omitempty"`
}

// generateRequest mirrors the JSON the web UI posts. Pointer fields
// distinguish "absent" (use the default) from "sent empty".
type generateRequest struct {
	CompanyName  *string      `json:"company_name" validate:"omitempty,max=200"`
	Industry     *string      `json:"industry" validate:"omitempty,max=200"`
	ContentTheme *string      `json:"content_theme" validate:"omitempty,max=2000"`
	NumPosts     *postCount   `json:"num_posts"`
	Tone         string       `json:"tone" validate:"max=32"`
	LogoFilename string       `json:"logo_filename" validate:"max=255"`
	BrandColors  *brandColors `json:"brand_colors"`
}

// brandColors is the wire form of a palette. Unlike brand.Palette it tells
// a missing dominant color apart from black.
type brandColors struct {
	Dominant *brand.Color  `json:"dominant" validate:"required"`
	Swatches []brand.Color `json:"palette" validate:"required,min=1"`
}

func (b *brandColors) palette() brand.Palette {
	p := brand.Palette{Swatches: append([]brand.Color(nil), b.Swatches...)}
	if b.Dominant != nil {
		p.Dominant = *b.Dominant
	}
	return p
}

// postCount accepts num_posts as a JSON number or a numeric string.
// Fractions are truncated.
type postCount int

func (c *postCount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("num_posts: %q is not a whole number", s)
		}
		*c = postCount(n)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("num_posts: %s is not a number", data)
	}
	f = math.Max(math.Min(f, math.MaxInt32), math.MinInt32)
	*c = postCount(int(f))
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (r *generateRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	if fe.Tag() == "required" {
		return fmt.Errorf("%s is required", field)
	}
	return fmt.Errorf("%s failed the %s=%s check", field, fe.Tag(), fe.Param())
}

type imageResult struct {
	VariationIndex int     `json:"variation_index"`
	Tone           string  `json:"tone"`
	Filename       *string `json:"filename"`
	URL            string  `json:"url,omitempty"`
	Error          string  `json:"error,omitempty"`
}

type generateResponse struct {
	Success bool          `json:"success"`
	Images  []imageResult `json:"images"`
	Message string        `json:"message"`
}

type tonesResponse struct {
	Tones []toneOption `json:"tones"`
	Hints []string     `json:"variation_hints"`
}

type toneOption struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
