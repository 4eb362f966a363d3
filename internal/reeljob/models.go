package reeljob

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a reel job.
type Status string

const (
	StatusPending               Status = "pending"
	StatusSynthesizingVoiceover Status = "synthesizing_voiceover"
	StatusSelectingMusic        Status = "selecting_music"
	StatusGeneratingImages      Status = "generating_images"
	StatusCompleted             Status = "completed"
	StatusFailed                Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusSynthesizingVoiceover,
	StatusSelectingMusic,
	StatusGeneratingImages,
	StatusCompleted,
	StatusFailed,
}

// AllStatuses returns every known status in pipeline order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus converts a string into a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further pipeline work happens in this status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsProcessing reports whether a pipeline stage is running in this status.
func (s Status) IsProcessing() bool {
	switch s {
	case StatusSynthesizingVoiceover, StatusSelectingMusic, StatusGeneratingImages:
		return true
	default:
		return false
	}
}

// Segment is one timed narration and visual unit of a reel.
type Segment struct {
	Index        int     `json:"index"`
	StartSeconds float64 `json:"startSeconds"`
	EndSeconds   float64 `json:"endSeconds"`
	Commentary   string  `json:"commentary"`
	ImagePrompt  string  `json:"imagePrompt"`
	Caption      string  `json:"caption"`
	VisualStyle  string  `json:"visualStyle,omitempty"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	// ImageSource records where ImageURL came from: user, scraped, generated
	// or regenerated.
	ImageSource  string  `json:"imageSource,omitempty"`
}

// Duration returns the segment's playback span.
func (s Segment) Duration() float64 {
	return s.EndSeconds - s.StartSeconds
}

// ScrapedMedia is an image found on the promoted website.
type ScrapedMedia struct {
	URL        string `json:"url"`
	SourcePage string `json:"sourcePage,omitempty"`
}

// WebsiteAnalysis captures what was learned about the promoted business.
type WebsiteAnalysis struct {
	BusinessName string         `json:"businessName,omitempty"`
	Category     string         `json:"category,omitempty"`
	LogoURL      string         `json:"logoUrl,omitempty"`
	ScrapedMedia []ScrapedMedia `json:"scrapedMedia,omitempty"`
}

// Clone returns a deep copy of the analysis.
func (w *WebsiteAnalysis) Clone() *WebsiteAnalysis {
	return w.clone()
}

func (w *WebsiteAnalysis) clone() *WebsiteAnalysis {
	if w == nil {
		return nil
	}
	out := *w
	if w.ScrapedMedia != nil {
		out.ScrapedMedia = append([]ScrapedMedia(nil), w.ScrapedMedia...)
	}
	return &out
}

// Job is the persisted state of one reel-generation request.
type Job struct {
	ID          string     `json:"id"`
	Status      Status     `json:"status"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       string     `json:"error,omitempty"`
	UserID      string     `json:"userId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	TargetDurationSeconds float64  `json:"targetDurationSeconds,omitempty"`
	VoiceID               string   `json:"voiceId,omitempty"`
	ProvidedMedia         []string `json:"providedMedia,omitempty"`

	FullCommentary           string           `json:"fullCommentary,omitempty"`
	VoiceoverURL             string           `json:"voiceoverUrl,omitempty"`
	VoiceoverDurationSeconds float64          `json:"voiceoverDurationSeconds,omitempty"`
	MusicURL                 string           `json:"musicUrl,omitempty"`
	MusicDurationSeconds     float64          `json:"musicDurationSeconds,omitempty"`
	MusicSource              string           `json:"musicSource,omitempty"`
	Segments                 []Segment        `json:"segments,omitempty"`
	WebsiteAnalysis          *WebsiteAnalysis `json:"websiteAnalysis,omitempty"`
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	if j.CompletedAt != nil {
		completed := *j.CompletedAt
		out.CompletedAt = &completed
	}
	if j.ProvidedMedia != nil {
		out.ProvidedMedia = append([]string(nil), j.ProvidedMedia...)
	}
	if j.Segments != nil {
		out.Segments = append([]Segment(nil), j.Segments...)
	}
	out.WebsiteAnalysis = j.WebsiteAnalysis.clone()
	return &out
}

// Input describes a job to create.
type Input struct {
	// ID is optional; a job_<8 hex> identifier is generated when empty.
	ID                    string
	UserID                string
	TargetDurationSeconds float64
	VoiceID               string
	ProvidedMedia         []string
	WebsiteAnalysis       *WebsiteAnalysis
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	CurrentStep              *string
	FullCommentary           *string
	VoiceoverURL             *string
	VoiceoverDurationSeconds *float64
	MusicURL                 *string
	MusicDurationSeconds     *float64
	MusicSource              *string
	Segments                 []Segment
	WebsiteAnalysis          *WebsiteAnalysis
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.CurrentStep == nil && p.FullCommentary == nil && p.VoiceoverURL == nil &&
		p.VoiceoverDurationSeconds == nil && p.MusicURL == nil && p.MusicDurationSeconds == nil &&
		p.MusicSource == nil && p.Segments == nil && p.WebsiteAnalysis == nil
}

// DurationRange bounds the target duration accepted at creation.
type DurationRange struct {
	Min float64
	Max float64
}

func (r DurationRange) clamp(seconds float64) float64 {
	if seconds <= 0 {
		return seconds
	}
	if r.Min > 0 && seconds < r.Min {
		return r.Min
	}
	if r.Max > 0 && seconds > r.Max {
		return r.Max
	}
	return seconds
}
