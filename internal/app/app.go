// Package app builds the shared services both entry points run on.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"instagenie/internal/config"
	"instagenie/internal/gemini"
	"instagenie/internal/generate"
	"instagenie/internal/httpclient"
	"instagenie/internal/palette"
	"instagenie/internal/storage"
)

type closer interface {
	Close() error
}

type App struct {
	Config     config.Config
	Logger     *slog.Logger
	HTTPClient *http.Client
	Extractor  *palette.Extractor
	Store      *storage.Store
	Generator  gemini.ImageGenerator
	Batch      *generate.Service

	closers []closer
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = config.NewLogger(cfg)
	}

	a := &App{Config: cfg, Logger: logger}

	a.HTTPClient = httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout(),
	})

	a.Extractor = palette.New(palette.Options{
		Method:      palette.ParseMethod(cfg.PaletteMethod),
		SwatchCount: cfg.SwatchCount,
		MaxPixels:   cfg.MaxImagePixels,
		Logger:      logger,
	})

	store, err := storage.New(storage.Options{
		UploadDir:    cfg.UploadDir,
		GeneratedDir: cfg.GeneratedDir,
		PresetDir:    cfg.PresetDir,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	a.Store = store

	gen, err := a.newGenerator(ctx)
	if err != nil {
		return nil, err
	}
	a.Generator = gen

	a.Batch = generate.New(generate.Options{
		Generator:   gen,
		Store:       store,
		Concurrency: cfg.GenerateConcurrency,
		Logger:      logger,
	})

	return a, nil
}

func (a *App) newGenerator(ctx context.Context) (gemini.ImageGenerator, error) {
	cfg := a.Config
	if cfg.GeminiProvider == "sdk" {
		sdk, err := gemini.NewSDK(ctx, gemini.SDKOptions{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiImageModel,
			Logger: a.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini sdk: %w", err)
		}
		a.closers = append(a.closers, sdk)
		return sdk, nil
	}

	return gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		Model:      cfg.GeminiImageModel,
		HTTPClient: a.HTTPClient,
		Logger:     a.Logger,
	}), nil
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
