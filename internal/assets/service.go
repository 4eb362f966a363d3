package assets

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/duration"
	"reelforge/internal/logging"
	"reelforge/internal/notifications"
	"reelforge/internal/reeljob"
)

// Deps are the collaborators of a Service. Store and Synthesizer are
// required; every other port is optional.
type Deps struct {
	Store               reeljob.Store
	Synthesizer         Synthesizer
	FallbackSynthesizer Synthesizer
	Images              ImageGenerator
	FallbackImages      ImageGenerator
	Verifier            ImageVerifier
	Storage             Storage
	Music               MusicSelector
	Notifier            notifications.Service
	Logger              *slog.Logger
}

// Settings are the tunables of the pipeline.
type Settings struct {
	Fitting duration.Config
	// ShortTolerance is how far below target (as a fraction) a voiceover may
	// land before it is re-synthesized.
	ShortTolerance   float64
	MaxGapSeconds    float64
	AdjustmentPitch  float64
	FolderPrefix     string
	PropagationDelay time.Duration
}

// SettingsFromConfig maps configuration onto Settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Fitting:          cfg.FittingConfig(),
		ShortTolerance:   cfg.Voiceover.ShortTolerance,
		MaxGapSeconds:    cfg.Voiceover.MaxGapSeconds,
		AdjustmentPitch:  cfg.Voiceover.AdjustmentPitch,
		FolderPrefix:     cfg.Storage.FolderPrefix,
		PropagationDelay: cfg.PropagationDelay(),
	}
}

// Service runs the asset pipeline.
type Service struct {
	store         reeljob.Store
	synth         Synthesizer
	fallbackSynth Synthesizer
	images        ImageGenerator
	fallbackImage ImageGenerator
	verifier      ImageVerifier
	storage       Storage
	music         MusicSelector
	notifier      notifications.Service
	logger        *slog.Logger
	settings      Settings
	now           func() time.Time
	sleep         func(context.Context, time.Duration) error
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the clock used for upload public ids.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSleeper overrides how the propagation delay is waited out.
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(s *Service) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// NewService validates deps and builds a Service.
func NewService(deps Deps, settings Settings, opts ...Option) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("assets: job store is required")
	}
	if deps.Synthesizer == nil {
		return nil, errors.New("assets: synthesizer is required")
	}
	if deps.Images == nil && deps.FallbackImages == nil {
		return nil, errors.New("assets: at least one image generator is required")
	}
	if settings.ShortTolerance <= 0 {
		settings.ShortTolerance = 0.04
	}
	if settings.MaxGapSeconds <= 0 {
		settings.MaxGapSeconds = 0.5
	}
	if settings.AdjustmentPitch <= 0 {
		settings.AdjustmentPitch = 0.9
	}
	settings.FolderPrefix = strings.Trim(strings.TrimSpace(settings.FolderPrefix), "/")
	if settings.FolderPrefix == "" {
		settings.FolderPrefix = "instagram-reels"
	}
	s := &Service{
		store:         deps.Store,
		synth:         deps.Synthesizer,
		fallbackSynth: deps.FallbackSynthesizer,
		images:        deps.Images,
		fallbackImage: deps.FallbackImages,
		verifier:      deps.Verifier,
		storage:       deps.Storage,
		music:         deps.Music,
		notifier:      deps.Notifier,
		logger:        logging.NewComponentLogger(deps.Logger, "assets"),
		settings:      settings,
		now:           time.Now,
		sleep:         sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) folder(parts ...string) string {
	return strings.Join(append([]string{s.settings.FolderPrefix}, parts...), "/")
}

// durable reports whether url needs no upload.
func (s *Service) durable(url string) bool {
	return s.storage != nil && s.storage.Owns(url)
}
