package main

import (
	"fmt"
	"log/slog"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/internal/music"
	"reelforge/internal/notifications"
	"reelforge/internal/reeljob"
	"reelforge/internal/services/cloudinary"
	"reelforge/internal/services/fishaudio"
	"reelforge/internal/services/flux"
	"reelforge/internal/services/llm"
	"reelforge/internal/services/openaiimage"
	"reelforge/internal/services/openaitts"
	"reelforge/internal/services/vision"
)

// buildPipeline constructs the vendor adapters enabled in cfg and the asset
// service over store.
func buildPipeline(cfg *config.Config, store reeljob.Store, logger *slog.Logger) (*assets.Service, error) {
	deps := assets.Deps{
		Store:    store,
		Notifier: notifications.NewService(cfg),
		Logger:   logger,
		Synthesizer: fishaudio.New(fishaudio.Config{
			APIKey:          cfg.TTS.APIKey,
			BaseURL:         cfg.TTS.BaseURL,
			VoiceID:         cfg.TTS.VoiceID,
			Format:          cfg.TTS.Format,
			SpeakingRateWPS: cfg.Reel.SpeakingRateWPS,
			TimeoutSeconds:  cfg.TTS.TimeoutSeconds,
		}),
	}

	if cfg.TTSFallback.Enabled {
		deps.FallbackSynthesizer = openaitts.New(openaitts.Config{
			APIKey:          cfg.TTSFallback.APIKey,
			BaseURL:         cfg.TTSFallback.BaseURL,
			Model:           cfg.TTSFallback.Model,
			Voice:           cfg.TTSFallback.Voice,
			SpeakingRateWPS: cfg.Reel.SpeakingRateWPS,
			TimeoutSeconds:  cfg.TTSFallback.TimeoutSeconds,
		})
	}
	if cfg.Images.Enabled {
		deps.Images = flux.New(flux.Config{
			EndpointURL:    cfg.Images.EndpointURL,
			APIKey:         cfg.Images.APIKey,
			Width:          cfg.Images.Width,
			Height:         cfg.Images.Height,
			TimeoutSeconds: cfg.Images.TimeoutSeconds,
		})
	}
	if cfg.ImagesFallback.Enabled {
		deps.FallbackImages = openaiimage.New(openaiimage.Config{
			APIKey:         cfg.ImagesFallback.APIKey,
			BaseURL:        cfg.ImagesFallback.BaseURL,
			Model:          cfg.ImagesFallback.Model,
			Size:           cfg.ImagesFallback.Size,
			TimeoutSeconds: cfg.ImagesFallback.TimeoutSeconds,
		})
	}
	if cfg.Vision.Enabled {
		deps.Verifier = vision.New(llm.NewClient(llm.Config{
			APIKey:         cfg.Vision.APIKey,
			BaseURL:        cfg.Vision.BaseURL,
			Model:          cfg.Vision.Model,
			Referer:        cfg.Vision.Referer,
			Title:          cfg.Vision.Title,
			TimeoutSeconds: cfg.Vision.TimeoutSeconds,
		}))
	}
	if cfg.StorageConfigured() {
		storage, err := cloudinary.New(cloudinary.Config{
			CloudName:      cfg.Storage.CloudName,
			APIKey:         cfg.Storage.APIKey,
			APISecret:      cfg.Storage.APISecret,
			TimeoutSeconds: cfg.Storage.TimeoutSeconds,
		})
		if err != nil {
			return nil, err
		}
		deps.Storage = storage
	}
	if cfg.Music.CatalogPath != "" {
		catalog, err := music.LoadCatalog(cfg.Music.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load music catalog: %w", err)
		}
		deps.Music = catalog
	}

	return assets.NewService(deps, assets.SettingsFromConfig(cfg))
}
