package reeljob

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"reelforge/internal/services"
)

// reservedIDPrefix is the redis user pointer namespace under reel_job:.
const reservedIDPrefix = "user_last:"

// NewID returns a short job identifier of the form job_<8 hex>.
func NewID() string {
	return "job_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func newJob(input Input, durations DurationRange, now time.Time) (*Job, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = NewID()
	}
	if strings.HasPrefix(id, reservedIDPrefix) {
		return nil, services.Wrap(services.ErrValidation, "store", "create job",
			"job id must not start with "+reservedIDPrefix, nil)
	}
	job := &Job{
		ID:                    id,
		Status:                StatusPending,
		CurrentStep:           "Queued",
		UserID:                strings.TrimSpace(input.UserID),
		CreatedAt:             now,
		UpdatedAt:             now,
		TargetDurationSeconds: durations.clamp(input.TargetDurationSeconds),
		VoiceID:               strings.TrimSpace(input.VoiceID),
		WebsiteAnalysis:       input.WebsiteAnalysis.clone(),
	}
	if len(input.ProvidedMedia) > 0 {
		job.ProvidedMedia = append([]string(nil), input.ProvidedMedia...)
	}
	return job, nil
}

func applyStatus(job *Job, status Status, step string, now time.Time) {
	job.Status = status
	if step = strings.TrimSpace(step); step != "" {
		job.CurrentStep = step
	}
	if status == StatusCompleted {
		completed := now
		job.CompletedAt = &completed
	}
	job.UpdatedAt = now
}

func applyPatch(job *Job, patch Patch, now time.Time) {
	if patch.CurrentStep != nil {
		job.CurrentStep = *patch.CurrentStep
	}
	if patch.FullCommentary != nil {
		job.FullCommentary = *patch.FullCommentary
	}
	if patch.VoiceoverURL != nil {
		job.VoiceoverURL = *patch.VoiceoverURL
	}
	if patch.VoiceoverDurationSeconds != nil {
		job.VoiceoverDurationSeconds = *patch.VoiceoverDurationSeconds
	}
	if patch.MusicURL != nil {
		job.MusicURL = *patch.MusicURL
	}
	if patch.MusicDurationSeconds != nil {
		job.MusicDurationSeconds = *patch.MusicDurationSeconds
	}
	if patch.MusicSource != nil {
		job.MusicSource = *patch.MusicSource
	}
	if patch.Segments != nil {
		job.Segments = append([]Segment(nil), patch.Segments...)
	}
	if patch.WebsiteAnalysis != nil {
		job.WebsiteAnalysis = patch.WebsiteAnalysis.clone()
	}
	job.UpdatedAt = now
}

func applyFailure(job *Job, message string, now time.Time) {
	job.Status = StatusFailed
	job.Error = strings.TrimSpace(message)
	if job.Error == "" {
		job.Error = "job failed"
	}
	job.UpdatedAt = now
}
