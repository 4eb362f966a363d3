package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"reelforge/internal/duration"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Store selects and configures the job store backend.
type Store struct {
	Backend    string `toml:"backend"` // file, redis, or sqlite
	FilePath   string `toml:"file_path"`
	SQLitePath string `toml:"sqlite_path"`
	RedisURL   string `toml:"redis_url"`
}

// Reel contains duration fitting parameters.
type Reel struct {
	SpeakingRateWPS  float64 `toml:"speaking_rate_wps"`
	MinSpeed         float64 `toml:"min_speed"`
	MaxSpeed         float64 `toml:"max_speed"`
	TolerancePercent float64 `toml:"tolerance_percent"`
	MinSeconds       float64 `toml:"min_seconds"`
	MaxSeconds       float64 `toml:"max_seconds"`
}

// Voiceover contains the second-pass correction thresholds.
type Voiceover struct {
	ShortTolerance  float64 `toml:"short_tolerance"`
	MaxGapSeconds   float64 `toml:"max_gap_seconds"`
	AdjustmentPitch float64 `toml:"adjustment_pitch"`
}

// TTS configures the primary voice-cloning synthesizer.
type TTS struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	VoiceID        string `toml:"voice_id"`
	Format         string `toml:"format"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TTSFallback configures the OpenAI-compatible fallback synthesizer.
type TTSFallback struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	Voice          string `toml:"voice"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Images configures the primary (Flux endpoint) image generator.
type Images struct {
	Enabled        bool   `toml:"enabled"`
	EndpointURL    string `toml:"endpoint_url"`
	APIKey         string `toml:"api_key"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ImagesFallback configures the OpenAI-compatible image generator.
type ImagesFallback struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	Size           string `toml:"size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Vision configures the optional text-free image verifier.
type Vision struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Storage configures durable media storage.
type Storage struct {
	CloudName               string `toml:"cloud_name"`
	APIKey                  string `toml:"api_key"`
	APISecret               string `toml:"api_secret"`
	FolderPrefix            string `toml:"folder_prefix"`
	PropagationDelaySeconds int    `toml:"propagation_delay_seconds"`
	TimeoutSeconds          int    `toml:"timeout_seconds"`
}

// Music configures the background track catalog.
type Music struct {
	CatalogPath string `toml:"catalog_path"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	JobCompleted   bool   `toml:"job_completed"`
	JobFailed      bool   `toml:"job_failed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelforge.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Store: job store backend selection
//   - Reel, Voiceover: duration fitting and second-pass thresholds
//   - TTS, TTSFallback: speech synthesis vendors
//   - Images, ImagesFallback, Vision: image generation and verification
//   - Storage: Cloudinary uploads
//   - Music: background track catalog
//   - Notifications, Logging
type Config struct {
	Paths          Paths          `toml:"paths"`
	Store          Store          `toml:"store"`
	Reel           Reel           `toml:"reel"`
	Voiceover      Voiceover      `toml:"voiceover"`
	TTS            TTS            `toml:"tts"`
	TTSFallback    TTSFallback    `toml:"tts_fallback"`
	Images         Images         `toml:"images"`
	ImagesFallback ImagesFallback `toml:"images_fallback"`
	Vision         Vision         `toml:"vision"`
	Storage        Storage        `toml:"storage"`
	Music          Music          `toml:"music"`
	Notifications  Notifications  `toml:"notifications"`
	Logging        Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads ./.env without overriding variables already set.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("reelforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FittingConfig returns the duration fitting parameters.
func (c *Config) FittingConfig() duration.Config {
	return duration.Config{
		SpeakingRateWPS:  c.Reel.SpeakingRateWPS,
		MinSpeed:         c.Reel.MinSpeed,
		MaxSpeed:         c.Reel.MaxSpeed,
		TolerancePercent: c.Reel.TolerancePercent,
	}
}

// StorageConfigured reports whether all Cloudinary credentials are present.
func (c *Config) StorageConfigured() bool {
	return c.Storage.CloudName != "" && c.Storage.APIKey != "" && c.Storage.APISecret != ""
}

// PropagationDelay returns the post-upload settle time.
func (c *Config) PropagationDelay() time.Duration {
	return time.Duration(c.Storage.PropagationDelaySeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
