package assets

import (
	"context"
	"fmt"
	"strings"

	"reelforge/internal/duration"
	"reelforge/internal/logging"
	"reelforge/internal/media"
	"reelforge/internal/reeljob"
	"reelforge/internal/services"
)

const (
	stepVoiceover = "Creating voiceover..."
	stepMusic     = "Selecting background music..."
	stepVisuals   = "Resolving visuals..."
	stepCompleted = "Assets ready"
)

// SegmentContent is the narration and visual brief for one segment.
type SegmentContent struct {
	Commentary  string
	ImagePrompt string
	Caption     string
	VisualStyle string
}

// PrepareOptions describes one pipeline run against an existing job.
type PrepareOptions struct {
	JobID    string
	Segments []SegmentContent
	// FullCommentary is the narration to synthesize. When empty the segment
	// commentaries are joined.
	FullCommentary        string
	TargetDurationSeconds float64
	Category              string
	BusinessName          string
	MusicTone             string
	// Scenes carry per-segment roles such as "hook" or "cta". When empty every
	// segment is treated as a role-less scene.
	Scenes  []media.Scene
	VoiceID string
}

// Result summarizes a prepared job.
type Result struct {
	JobID                    string
	VoiceoverURL             string
	VoiceoverDurationSeconds float64
	Speed                    float64
	MusicURL                 string
	MusicDurationSeconds     float64
	Segments                 []reeljob.Segment
	Resolution               media.Resolution
}

func (o PrepareOptions) validate() error {
	switch {
	case strings.TrimSpace(o.JobID) == "":
		return services.Wrap(services.ErrValidation, "prepare", "validate options", "job id is required", nil)
	case len(o.Segments) == 0:
		return services.Wrap(services.ErrValidation, "prepare", "validate options", "at least one segment is required", nil)
	case o.TargetDurationSeconds <= 0:
		return services.Wrap(services.ErrValidation, "prepare", "validate options", "target duration must be positive", nil)
	case len(o.Scenes) > 0 && len(o.Scenes) != len(o.Segments):
		return services.Wrap(services.ErrValidation, "prepare", "validate options",
			fmt.Sprintf("scene count %d does not match segment count %d", len(o.Scenes), len(o.Segments)), nil)
	}
	return nil
}

func (o PrepareOptions) commentary() string {
	if text := strings.TrimSpace(o.FullCommentary); text != "" {
		return text
	}
	parts := make([]string, 0, len(o.Segments))
	for _, seg := range o.Segments {
		if text := strings.TrimSpace(seg.Commentary); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func (o PrepareOptions) scenes() []media.Scene {
	if len(o.Scenes) > 0 {
		return o.Scenes
	}
	return make([]media.Scene, len(o.Segments))
}

// musicContext is the free-text hint handed to the music selector.
func (o PrepareOptions) musicContext() string {
	if name := strings.TrimSpace(o.BusinessName); name != "" {
		return fmt.Sprintf("Business: %s, Category: %s, Tone: %s", name, o.Category, o.MusicTone)
	}
	return strings.TrimSpace(o.Category + " promo")
}

// Prepare runs the voiceover, music and visuals stages for an existing job.
// It does not mark the job completed or failed; Run does.
func (s *Service) Prepare(ctx context.Context, opts PrepareOptions) (Result, error) {
	result := Result{JobID: opts.JobID}
	if err := opts.validate(); err != nil {
		return result, err
	}
	ctx = services.WithJobID(ctx, opts.JobID)
	logger := logging.WithContext(ctx, s.logger)

	job, err := s.store.Get(ctx, opts.JobID)
	if err != nil {
		return result, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return result, services.Wrap(services.ErrNotFound, "prepare", "load job", fmt.Sprintf("job %s does not exist", opts.JobID), nil)
	}
	voiceID := strings.TrimSpace(opts.VoiceID)
	if voiceID == "" {
		voiceID = job.VoiceID
	}

	// Voiceover.
	if err := s.transition(ctx, opts.JobID, reeljob.StatusSynthesizingVoiceover, stepVoiceover); err != nil {
		return result, err
	}
	commentary := opts.commentary()
	voice, err := s.synthesizeVoiceover(services.WithStage(ctx, "voiceover"), commentary, opts.TargetDurationSeconds, voiceID)
	if err != nil {
		return result, err
	}
	result.VoiceoverURL = voice.URL
	result.VoiceoverDurationSeconds = voice.DurationSeconds
	result.Speed = voice.Speed
	if _, err := s.store.Update(ctx, opts.JobID, reeljob.Patch{
		VoiceoverURL:             reeljob.Ptr(voice.URL),
		VoiceoverDurationSeconds: reeljob.Ptr(voice.DurationSeconds),
		FullCommentary:           reeljob.Ptr(commentary),
	}); err != nil {
		return result, fmt.Errorf("persist voiceover: %w", err)
	}

	// Music.
	if err := s.transition(ctx, opts.JobID, reeljob.StatusSelectingMusic, stepMusic); err != nil {
		return result, err
	}
	if err := s.selectMusic(services.WithStage(ctx, "music"), opts, voice.DurationSeconds, &result); err != nil {
		return result, err
	}

	segments := buildSegments(opts.Segments, voice.DurationSeconds)

	// Logo and media resolution.
	job, err = s.store.Get(ctx, opts.JobID)
	if err != nil {
		return result, fmt.Errorf("reload job: %w", err)
	}
	if job == nil {
		return result, services.Wrap(services.ErrNotFound, "prepare", "reload job", fmt.Sprintf("job %s disappeared", opts.JobID), nil)
	}
	analysis := job.WebsiteAnalysis
	originalLogo := ""
	if analysis != nil {
		originalLogo = strings.TrimSpace(analysis.LogoURL)
	}
	logoURL := s.uploadLogo(ctx, opts.JobID, originalLogo, analysis)
	if logoURL != originalLogo && analysis != nil {
		analysis = analysis.Clone()
		analysis.LogoURL = logoURL
	}

	resolution := media.Resolve(opts.scenes(), job.ProvidedMedia, scrapedCandidates(analysis), originalLogo)
	resolution.Log(logger)
	result.Resolution = resolution

	// Visuals.
	if err := s.transition(ctx, opts.JobID, reeljob.StatusGeneratingImages, stepVisuals); err != nil {
		return result, err
	}
	withImages, err := s.resolveVisuals(services.WithStage(ctx, "images"), opts.JobID, segments, resolution)
	if err != nil {
		return result, err
	}
	if _, err := s.store.Update(ctx, opts.JobID, reeljob.Patch{Segments: withImages}); err != nil {
		return result, fmt.Errorf("persist segments: %w", err)
	}
	result.Segments = withImages

	if s.storage != nil && s.settings.PropagationDelay > 0 {
		logger.Debug("waiting for asset propagation", logging.Duration("delay", s.settings.PropagationDelay))
		if err := s.sleep(ctx, s.settings.PropagationDelay); err != nil {
			return result, err
		}
	}

	logger.Info("assets prepared",
		logging.String(logging.FieldEventType, "assets_prepared"),
		logging.Int("segments", len(withImages)),
		logging.Float64("voiceover_seconds", voice.DurationSeconds),
		logging.String("media_summary", resolution.Summary()),
	)
	return result, nil
}

func (s *Service) transition(ctx context.Context, jobID string, status reeljob.Status, step string) error {
	logging.WithContext(ctx, s.logger).Info("job stage",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("status", string(status)),
		logging.String("step", step),
	)
	if _, err := s.store.UpdateStatus(ctx, jobID, status, step); err != nil {
		return fmt.Errorf("persist %s transition: %w", status, err)
	}
	return nil
}

func (s *Service) setStep(ctx context.Context, jobID, step string) {
	if _, err := s.store.UpdateStatus(ctx, jobID, reeljob.StatusGeneratingImages, step); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "failed to persist step", "step_persist_failed",
			logging.String("step", step),
			logging.Error(err),
			logging.String(logging.FieldImpact, "progress text is stale"),
		)
	}
}

func (s *Service) selectMusic(ctx context.Context, opts PrepareOptions, seconds float64, result *Result) error {
	logger := logging.WithContext(ctx, s.logger)
	if s.music == nil {
		logger.Info("no music selector configured; skipping background music")
		return nil
	}
	style := musicStyleFor(opts.Category)
	selection, err := s.music.SelectMusic(ctx, []string{style}, seconds, opts.musicContext())
	if err != nil {
		return services.Wrap(services.ErrExternalService, "music", "select music", "music selection failed", err)
	}
	if selection == nil || strings.TrimSpace(selection.Track.AudioURL) == "" {
		logger.Info("no background track selected", logging.String("style", style))
		return nil
	}
	if _, err := s.store.Update(ctx, opts.JobID, reeljob.Patch{
		MusicURL:             reeljob.Ptr(selection.Track.AudioURL),
		MusicDurationSeconds: reeljob.Ptr(selection.Track.DurationSeconds),
		MusicSource:          reeljob.Ptr(selection.Source),
	}); err != nil {
		return fmt.Errorf("persist music: %w", err)
	}
	result.MusicURL = selection.Track.AudioURL
	result.MusicDurationSeconds = selection.Track.DurationSeconds
	logger.Info("background music selected",
		logging.String("style", style),
		logging.String("track", selection.Track.Title),
		logging.String("source", selection.Source),
	)
	return nil
}

// buildSegments lays the content out over equal windows of the voiceover.
func buildSegments(content []SegmentContent, total float64) []reeljob.Segment {
	windows := duration.DistributeAndTime(total, len(content))
	segments := make([]reeljob.Segment, len(content))
	for i, c := range content {
		segments[i] = reeljob.Segment{
			Index:        i,
			StartSeconds: windows[i].Start,
			EndSeconds:   windows[i].End,
			Commentary:   c.Commentary,
			ImagePrompt:  c.ImagePrompt,
			Caption:      c.Caption,
			VisualStyle:  c.VisualStyle,
		}
	}
	return segments
}

func scrapedCandidates(analysis *reeljob.WebsiteAnalysis) []media.Candidate {
	if analysis == nil {
		return nil
	}
	out := make([]media.Candidate, 0, len(analysis.ScrapedMedia))
	for _, item := range analysis.ScrapedMedia {
		out = append(out, media.Candidate{URL: item.URL, SourcePage: item.SourcePage, Provenance: media.ProvenanceScraped})
	}
	return out
}

// uploadLogo copies the logo to durable storage and persists the new URL.
// It returns the logo URL to use from here on.
func (s *Service) uploadLogo(ctx context.Context, jobID, logoURL string, analysis *reeljob.WebsiteAnalysis) string {
	if s.storage == nil || logoURL == "" || s.durable(logoURL) || strings.HasPrefix(logoURL, "data:") {
		return logoURL
	}
	logger := logging.WithContext(ctx, s.logger)
	upload, err := s.storage.UploadImage(ctx, logoURL, UploadOptions{
		Folder:   s.folder("branding", jobID),
		PublicID: fmt.Sprintf("logo_%d", s.now().Unix()),
	})
	if err != nil {
		logging.WarnWithContext(logger, "logo upload failed; using original url", "logo_upload_failed",
			logging.String("logo_url", logoURL),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check storage credentials and that the logo url is reachable"),
			logging.String(logging.FieldImpact, "branding uses the original logo url"),
		)
		return logoURL
	}
	if analysis != nil {
		updated := analysis.Clone()
		updated.LogoURL = upload.URL
		if _, err := s.store.Update(ctx, jobID, reeljob.Patch{WebsiteAnalysis: updated}); err != nil {
			logging.WarnWithContext(logger, "failed to persist uploaded logo", "logo_persist_failed", logging.Error(err))
		}
	}
	return upload.URL
}

func musicStyleFor(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "restaurant", "cafe", "bakery", "food", "bar":
		return "upbeat"
	case "fitness", "gym", "sports":
		return "energetic"
	case "spa", "beauty", "salon", "wellness", "health":
		return "calm"
	case "tech", "saas", "software", "finance", "professional", "legal":
		return "corporate"
	case "retail", "fashion", "ecommerce":
		return "pop"
	case "real_estate", "realestate", "hotel", "travel":
		return "inspirational"
	default:
		return "upbeat"
	}
}
