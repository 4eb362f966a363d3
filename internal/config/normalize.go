package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeReel()
	c.normalizeVendors()
	if err := c.normalizeMusic(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Store.RedisURL = strings.TrimSpace(envFallback(c.Store.RedisURL, "REDIS_URL"))
	if c.Store.Backend == "" {
		// A configured Redis URL selects the Redis backend.
		if c.Store.RedisURL != "" {
			c.Store.Backend = "redis"
		} else {
			c.Store.Backend = defaultStoreBackend
		}
	}

	var err error
	if strings.TrimSpace(c.Store.FilePath) == "" {
		c.Store.FilePath = filepath.Join(c.Paths.DataDir, defaultJobsFile)
	}
	if c.Store.FilePath, err = expandPath(c.Store.FilePath); err != nil {
		return fmt.Errorf("store.file_path: %w", err)
	}
	if strings.TrimSpace(c.Store.SQLitePath) == "" {
		c.Store.SQLitePath = filepath.Join(c.Paths.DataDir, defaultSQLiteFile)
	}
	if c.Store.SQLitePath, err = expandPath(c.Store.SQLitePath); err != nil {
		return fmt.Errorf("store.sqlite_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeReel() {
	if c.Reel.SpeakingRateWPS == 0 {
		if value, ok := os.LookupEnv("SPEAKING_RATE_WPS"); ok {
			if rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				c.Reel.SpeakingRateWPS = rate
			}
		}
	}
	if c.Reel.SpeakingRateWPS == 0 {
		c.Reel.SpeakingRateWPS = defaultSpeakingRateWPS
	}
	if c.Reel.MinSpeed == 0 {
		c.Reel.MinSpeed = defaultMinSpeed
	}
	if c.Reel.MaxSpeed == 0 {
		c.Reel.MaxSpeed = defaultMaxSpeed
	}
	if c.Reel.TolerancePercent == 0 {
		c.Reel.TolerancePercent = defaultTolerancePercent
	}
	if c.Voiceover.AdjustmentPitch == 0 {
		c.Voiceover.AdjustmentPitch = defaultAdjustmentPitch
	}
}

func (c *Config) normalizeVendors() {
	c.TTS.APIKey = strings.TrimSpace(envFallback(c.TTS.APIKey, "FISH_AUDIO_API_KEY"))
	c.TTS.VoiceID = strings.TrimSpace(envFallback(c.TTS.VoiceID, "FISH_AUDIO_VOICE_ID"))
	c.TTS.BaseURL = strings.TrimRight(strings.TrimSpace(envFallback(c.TTS.BaseURL, "FISH_AUDIO_BASE_URL")), "/")
	c.TTS.Format = strings.ToLower(strings.TrimSpace(c.TTS.Format))
	if c.TTS.Format == "" {
		c.TTS.Format = defaultTTSFormat
	}

	c.TTSFallback.APIKey = strings.TrimSpace(envFallback(c.TTSFallback.APIKey, "OPENAI_API_KEY"))
	c.TTSFallback.BaseURL = strings.TrimRight(strings.TrimSpace(c.TTSFallback.BaseURL), "/")
	c.ImagesFallback.APIKey = strings.TrimSpace(envFallback(c.ImagesFallback.APIKey, "OPENAI_API_KEY"))
	c.ImagesFallback.BaseURL = strings.TrimRight(strings.TrimSpace(c.ImagesFallback.BaseURL), "/")

	c.Images.APIKey = strings.TrimSpace(envFallback(c.Images.APIKey, "BEAMCLOUD_API_KEY"))
	c.Images.EndpointURL = strings.TrimSpace(envFallback(c.Images.EndpointURL, "BEAMCLOUD_ENDPOINT_URL"))

	c.Vision.APIKey = strings.TrimSpace(envFallback(c.Vision.APIKey, "OPENROUTER_API_KEY"))
	c.Vision.BaseURL = strings.TrimSpace(c.Vision.BaseURL)
	c.Vision.Model = strings.TrimSpace(c.Vision.Model)

	c.Storage.CloudName = strings.TrimSpace(envFallback(c.Storage.CloudName, "CLOUDINARY_CLOUD_NAME"))
	c.Storage.APIKey = strings.TrimSpace(envFallback(c.Storage.APIKey, "CLOUDINARY_API_KEY"))
	c.Storage.APISecret = strings.TrimSpace(envFallback(c.Storage.APISecret, "CLOUDINARY_API_SECRET"))
	c.Storage.FolderPrefix = strings.Trim(strings.TrimSpace(c.Storage.FolderPrefix), "/")
	if c.Storage.FolderPrefix == "" {
		c.Storage.FolderPrefix = defaultFolderPrefix
	}
	if c.Storage.PropagationDelaySeconds < 0 {
		c.Storage.PropagationDelaySeconds = 0
	}

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeoutSeconds
	}
}

func (c *Config) normalizeMusic() error {
	path := strings.TrimSpace(envFallback(c.Music.CatalogPath, "INTERNAL_MUSIC_CATALOG_PATH"))
	if path == "" {
		c.Music.CatalogPath = ""
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("music.catalog_path: %w", err)
	}
	c.Music.CatalogPath = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envFallback(current, key string) string {
	if strings.TrimSpace(current) != "" {
		return current
	}
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return current
}
