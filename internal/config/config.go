package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiProvider   string `env:"GEMINI_PROVIDER" envDefault:"rest"`
	GeminiBaseURL    string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiAPIVersion string `env:"GEMINI_API_VERSION" envDefault:"v1beta"`
	GeminiImageModel string `env:"GEMINI_IMAGE_MODEL" envDefault:"gemini-2.5-flash-image"`

	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`

	WebAddr      string `env:"WEB_ADDR" envDefault:":8080"`
	UploadDir    string `env:"UPLOAD_DIR" envDefault:"uploads"`
	GeneratedDir string `env:"GENERATED_DIR" envDefault:"generated"`
	PresetDir    string `env:"PRESET_DIR" envDefault:"static/presets"`

	MaxPosts            int    `env:"MAX_POSTS" envDefault:"5"`
	SwatchCount         int    `env:"SWATCH_COUNT" envDefault:"5"`
	PaletteMethod       string `env:"PALETTE_METHOD" envDefault:"dominantcolor"`
	MaxImagePixels      int64  `env:"MAX_IMAGE_PIXELS" envDefault:"89478485"`
	GenerateConcurrency int    `env:"GENERATE_CONCURRENCY" envDefault:"1"`
	MaxConcurrent       int    `env:"MAX_CONCURRENT" envDefault:"4"`

	HTTPTimeoutSeconds    int  `env:"HTTP_TIMEOUT_SECONDS" envDefault:"180"`
	RequestTimeoutSeconds int  `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"600"`
	PreferIPv4            bool `env:"PREFER_IPV4" envDefault:"true"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"DEBUG" envDefault:"false"`
}

// Load parses the environment. Call godotenv.Load first to pick up a .env file.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.GeminiProvider = strings.ToLower(strings.TrimSpace(cfg.GeminiProvider))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if cfg.GeminiAPIKey == "" {
		return Config{}, errors.New("GEMINI_API_KEY is required")
	}

	switch cfg.GeminiProvider {
	case "rest", "sdk":
	default:
		cfg.GeminiProvider = "rest"
	}
	if cfg.MaxPosts < 1 {
		cfg.MaxPosts = 5
	}
	if cfg.SwatchCount < 1 {
		cfg.SwatchCount = 5
	}
	if cfg.MaxImagePixels <= 0 {
		cfg.MaxImagePixels = 89478485
	}
	if cfg.GenerateConcurrency < 1 {
		cfg.GenerateConcurrency = 1
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 180
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = 600
	}

	return cfg, nil
}

func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
