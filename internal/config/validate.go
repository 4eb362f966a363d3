package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateStore,
		c.validateReel,
		c.validateVoiceover,
		c.validateStorage,
		c.validateVendors,
		c.validateLogging,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "file":
		if c.Store.FilePath == "" {
			return errors.New("store.file_path must be set for the file backend")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path must be set for the sqlite backend")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return errors.New("store.redis_url must be set for the redis backend (or set REDIS_URL)")
		}
		if !strings.HasPrefix(c.Store.RedisURL, "redis://") && !strings.HasPrefix(c.Store.RedisURL, "rediss://") {
			return fmt.Errorf("store.redis_url must use redis:// or rediss://, got %q", c.Store.RedisURL)
		}
	default:
		return fmt.Errorf("store.backend must be file, redis, or sqlite; got %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateReel() error {
	if c.Reel.SpeakingRateWPS <= 0 {
		return errors.New("reel.speaking_rate_wps must be positive")
	}
	if c.Reel.MinSpeed <= 0 || c.Reel.MinSpeed > 1 {
		return errors.New("reel.min_speed must be in (0, 1]")
	}
	if c.Reel.MaxSpeed < 1 {
		return errors.New("reel.max_speed must be at least 1")
	}
	if c.Reel.TolerancePercent < 0 || c.Reel.TolerancePercent >= 1 {
		return errors.New("reel.tolerance_percent must be in [0, 1)")
	}
	if c.Reel.MinSeconds < 0 || (c.Reel.MaxSeconds > 0 && c.Reel.MaxSeconds < c.Reel.MinSeconds) {
		return errors.New("reel.min_seconds and reel.max_seconds must form a valid range")
	}
	return nil
}

func (c *Config) validateVoiceover() error {
	if c.Voiceover.ShortTolerance < 0 || c.Voiceover.ShortTolerance >= 1 {
		return errors.New("voiceover.short_tolerance must be in [0, 1)")
	}
	if c.Voiceover.MaxGapSeconds < 0 {
		return errors.New("voiceover.max_gap_seconds must not be negative")
	}
	if c.Voiceover.AdjustmentPitch <= 0 {
		return errors.New("voiceover.adjustment_pitch must be positive")
	}
	return nil
}

func (c *Config) validateStorage() error {
	set := 0
	for _, v := range []string{c.Storage.CloudName, c.Storage.APIKey, c.Storage.APISecret} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return errors.New("storage.cloud_name, storage.api_key, and storage.api_secret must be set together")
	}
	return nil
}

func (c *Config) validateVendors() error {
	endpoints := map[string]string{
		"tts.base_url":             c.TTS.BaseURL,
		"tts_fallback.base_url":    c.TTSFallback.BaseURL,
		"images.endpoint_url":      c.Images.EndpointURL,
		"images_fallback.base_url": c.ImagesFallback.BaseURL,
		"vision.base_url":          c.Vision.BaseURL,
	}
	for key, value := range endpoints {
		if value == "" {
			continue
		}
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", key, value)
		}
	}
	if c.Vision.Enabled && c.Vision.Model == "" {
		return errors.New("vision.model must be set when vision.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}
}
