package config

const (
	defaultConfigPath              = "~/.config/reelforge/config.toml"
	defaultDataDir                 = "~/.local/share/reelforge"
	defaultLogDir                  = "~/.local/share/reelforge/logs"
	defaultStoreBackend            = "file"
	defaultJobsFile                = "jobs.json"
	defaultSQLiteFile              = "reelforge.db"
	defaultSpeakingRateWPS         = 2.3
	defaultMinSpeed                = 0.85
	defaultMaxSpeed                = 1.25
	defaultTolerancePercent        = 0.05
	defaultMinReelSeconds          = 10
	defaultMaxReelSeconds          = 90
	defaultShortTolerance          = 0.04
	defaultMaxGapSeconds           = 0.5
	defaultAdjustmentPitch         = 0.9
	defaultTTSBaseURL              = "https://api.fish.audio"
	defaultTTSFormat               = "mp3"
	defaultTTSFallbackBaseURL      = "https://api.openai.com/v1"
	defaultTTSFallbackModel        = "tts-1"
	defaultTTSFallbackVoice        = "alloy"
	defaultFluxEndpointURL         = "https://app.beam.cloud/endpoint/flux1-image"
	defaultImageWidth              = 768
	defaultImageHeight             = 1344
	defaultImagesFallbackBaseURL   = "https://api.openai.com/v1"
	defaultImagesFallbackModel     = "dall-e-3"
	defaultImagesFallbackSize      = "1024x1792"
	defaultVisionBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultVisionModel             = "google/gemini-2.0-flash-001"
	defaultVisionReferer           = "https://github.com/reelforge/reelforge"
	defaultVisionTitle             = "reelforge image verifier"
	defaultFolderPrefix            = "instagram-reels"
	defaultPropagationDelaySeconds = 2
	defaultHTTPTimeoutSeconds      = 120
	defaultNotifyTimeoutSeconds    = 10
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Reel: Reel{
			SpeakingRateWPS:  defaultSpeakingRateWPS,
			MinSpeed:         defaultMinSpeed,
			MaxSpeed:         defaultMaxSpeed,
			TolerancePercent: defaultTolerancePercent,
			MinSeconds:       defaultMinReelSeconds,
			MaxSeconds:       defaultMaxReelSeconds,
		},
		Voiceover: Voiceover{
			ShortTolerance:  defaultShortTolerance,
			MaxGapSeconds:   defaultMaxGapSeconds,
			AdjustmentPitch: defaultAdjustmentPitch,
		},
		TTS: TTS{
			BaseURL:        defaultTTSBaseURL,
			Format:         defaultTTSFormat,
			TimeoutSeconds: defaultHTTPTimeoutSeconds,
		},
		TTSFallback: TTSFallback{
			BaseURL:        defaultTTSFallbackBaseURL,
			Model:          defaultTTSFallbackModel,
			Voice:          defaultTTSFallbackVoice,
			TimeoutSeconds: defaultHTTPTimeoutSeconds,
		},
		Images: Images{
			EndpointURL:    defaultFluxEndpointURL,
			Width:          defaultImageWidth,
			Height:         defaultImageHeight,
			TimeoutSeconds: defaultHTTPTimeoutSeconds,
		},
		ImagesFallback: ImagesFallback{
			Enabled:        true,
			BaseURL:        defaultImagesFallbackBaseURL,
			Model:          defaultImagesFallbackModel,
			Size:           defaultImagesFallbackSize,
			TimeoutSeconds: defaultHTTPTimeoutSeconds,
		},
		Vision: Vision{
			BaseURL:        defaultVisionBaseURL,
			Model:          defaultVisionModel,
			Referer:        defaultVisionReferer,
			Title:          defaultVisionTitle,
			TimeoutSeconds: defaultHTTPTimeoutSeconds,
		},
		Storage: Storage{
			FolderPrefix:            defaultFolderPrefix,
			PropagationDelaySeconds: defaultPropagationDelaySeconds,
			TimeoutSeconds:          defaultHTTPTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeoutSeconds,
			JobCompleted:   true,
			JobFailed:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
