package assets

import (
	"context"
	"fmt"
	"math"
	"strings"

	"reelforge/internal/duration"
	"reelforge/internal/logging"
	"reelforge/internal/services"
)

type voiceover struct {
	URL             string
	DurationSeconds float64
	Speed           float64
}

// synthesizeVoiceover fits commentary to target seconds. The text is
// truncated to the word budget, synthesized, and re-synthesized once at an
// adjusted speed when the measured length misses the target.
func (s *Service) synthesizeVoiceover(ctx context.Context, commentary string, target float64, voiceID string) (voiceover, error) {
	logger := logging.WithContext(ctx, s.logger)
	if strings.TrimSpace(commentary) == "" {
		return voiceover{}, services.Wrap(services.ErrValidation, "voiceover", "synthesize", "commentary is empty", nil)
	}
	rate := s.settings.Fitting.Rate()
	text := duration.TruncateToFit(commentary, target, rate)
	if text != strings.TrimSpace(commentary) {
		logger.Info("commentary truncated to fit target",
			logging.Float64("target_seconds", target),
			logging.Int("original_words", duration.EstimateDuration(commentary, rate).WordCount),
			logging.Int("kept_words", duration.EstimateDuration(text, rate).WordCount),
		)
	}

	speech, err := s.synth.Synthesize(ctx, text, SynthesisOptions{VoiceID: voiceID})
	if err != nil {
		if s.fallbackSynth == nil {
			return voiceover{}, services.Wrap(services.ErrExternalService, "voiceover", "synthesize", "speech synthesis failed", err)
		}
		logging.WarnWithContext(logger, "primary synthesis failed; using fallback", "tts_fallback",
			logging.Error(err),
			logging.String(logging.FieldImpact, "voiceover uses the fallback voice"),
		)
		speech, err = s.fallbackSynth.Synthesize(ctx, commentary, SynthesisOptions{VoiceID: voiceID})
		if err != nil {
			return voiceover{}, services.Wrap(services.ErrExternalService, "voiceover", "synthesize", "primary and fallback synthesis failed", err)
		}
	}
	result := voiceover{URL: speech.AudioURL, DurationSeconds: speech.DurationSeconds, Speed: 1}

	if s.needsRefit(speech.DurationSeconds, target) {
		speed := s.settings.Fitting.SpeedAdjustment(speech.DurationSeconds, target)
		logger.Info("voiceover off target; re-synthesizing",
			logging.Float64("actual_seconds", speech.DurationSeconds),
			logging.Float64("target_seconds", target),
			logging.Float64("speed", speed),
		)
		// The adjusted take reuses the truncated text, not the full commentary.
		adjusted, err := s.resynthesize(ctx, text, voiceID, speed)
		switch {
		case err == nil:
			result = voiceover{URL: adjusted.AudioURL, DurationSeconds: adjusted.DurationSeconds, Speed: speed}
		case s.fallbackSynth == nil:
			logging.WarnWithContext(logger, "speed-adjusted synthesis failed; keeping first take", "tts_adjust_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "voiceover length misses the target"),
			)
		default:
			return voiceover{}, services.Wrap(services.ErrExternalService, "voiceover", "adjust speed", "speed-adjusted synthesis failed", err)
		}
	}

	if s.storage != nil && strings.HasPrefix(result.URL, "data:") {
		upload, err := s.storage.UploadAudio(ctx, result.URL, UploadOptions{
			Folder:   s.folder("voiceovers"),
			PublicID: fmt.Sprintf("voiceover_%d", s.now().Unix()),
		})
		if err != nil {
			logging.WarnWithContext(logger, "voiceover upload failed; keeping inline audio", "voiceover_upload_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "voiceover is stored as a data URL"),
			)
		} else {
			result.URL = upload.URL
		}
	}
	logger.Info("voiceover ready",
		logging.Float64("duration_seconds", result.DurationSeconds),
		logging.Float64("speed", result.Speed),
	)
	return result, nil
}

func (s *Service) needsRefit(actual, target float64) bool {
	if target <= 0 || actual <= 0 {
		return false
	}
	deviation := (actual - target) / target
	return deviation > 0 || deviation < -s.settings.ShortTolerance || math.Abs(actual-target) > s.settings.MaxGapSeconds
}

// resynthesize falls back without a voice id.
func (s *Service) resynthesize(ctx context.Context, text, voiceID string, speed float64) (Speech, error) {
	opts := SynthesisOptions{VoiceID: voiceID, Speed: speed, Pitch: s.settings.AdjustmentPitch}
	speech, err := s.synth.Synthesize(ctx, text, opts)
	if err == nil || s.fallbackSynth == nil {
		return speech, err
	}
	opts.VoiceID = ""
	return s.fallbackSynth.Synthesize(ctx, text, opts)
}
