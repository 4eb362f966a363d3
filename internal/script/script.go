// Package script loads reel scripts from JSON or YAML files and maps them to
// job store input and pipeline options.
package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"reelforge/internal/assets"
	"reelforge/internal/media"
	"reelforge/internal/reeljob"
	"reelforge/internal/services"
)

// Segment is one narration unit of a script.
type Segment struct {
	Commentary  string `json:"commentary" yaml:"commentary"`
	ImagePrompt string `json:"imagePrompt" yaml:"imagePrompt"`
	Caption     string `json:"caption,omitempty" yaml:"caption,omitempty"`
	VisualStyle string `json:"visualStyle,omitempty" yaml:"visualStyle,omitempty"`
	// Role marks the scene purpose, e.g. hook, feature or cta.
	Role string `json:"role,omitempty" yaml:"role,omitempty"`
}

// ScrapedImage is an image found on the business website.
type ScrapedImage struct {
	URL        string `json:"url" yaml:"url"`
	SourcePage string `json:"sourcePage,omitempty" yaml:"sourcePage,omitempty"`
}

// Website is what is known about the promoted business.
type Website struct {
	BusinessName string         `json:"businessName,omitempty" yaml:"businessName,omitempty"`
	Category     string         `json:"category,omitempty" yaml:"category,omitempty"`
	LogoURL      string         `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
	ScrapedMedia []ScrapedImage `json:"scrapedMedia,omitempty" yaml:"scrapedMedia,omitempty"`
}

// Script is a reel script file.
type Script struct {
	ID                    string    `json:"id,omitempty" yaml:"id,omitempty"`
	UserID                string    `json:"userId,omitempty" yaml:"userId,omitempty"`
	TargetDurationSeconds float64   `json:"targetDurationSeconds" yaml:"targetDurationSeconds"`
	VoiceID               string    `json:"voiceId,omitempty" yaml:"voiceId,omitempty"`
	MusicTone             string    `json:"musicTone,omitempty" yaml:"musicTone,omitempty"`
	FullCommentary        string    `json:"fullCommentary,omitempty" yaml:"fullCommentary,omitempty"`
	ProvidedMedia         []string  `json:"providedMedia,omitempty" yaml:"providedMedia,omitempty"`
	Website               *Website  `json:"website,omitempty" yaml:"website,omitempty"`
	Segments              []Segment `json:"segments" yaml:"segments"`

	// Path is the file the script was loaded from.
	Path string `json:"-" yaml:"-"`
}

// Load reads a script file. The format follows the extension; .json is
// decoded strictly, anything else as YAML.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// Parse decodes and validates a script in the given format (json or yaml).
func Parse(data []byte, format string) (*Script, error) {
	var s Script
	switch strings.ToLower(format) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, services.Wrap(services.ErrValidation, "script", "decode json", "malformed script", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, services.Wrap(services.ErrValidation, "script", "decode yaml", "malformed script", err)
		}
	default:
		return nil, services.Wrap(services.ErrValidation, "script", "decode", fmt.Sprintf("unsupported format %q", format), nil)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the fields a pipeline run needs.
func (s *Script) Validate() error {
	if s.TargetDurationSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "script", "validate", "targetDurationSeconds must be positive", nil)
	}
	if len(s.Segments) == 0 {
		return services.Wrap(services.ErrValidation, "script", "validate", "at least one segment is required", nil)
	}
	for i, seg := range s.Segments {
		if strings.TrimSpace(seg.Commentary) == "" && strings.TrimSpace(s.FullCommentary) == "" {
			return services.Wrap(services.ErrValidation, "script", "validate", fmt.Sprintf("segment %d has no commentary", i+1), nil)
		}
		if strings.TrimSpace(seg.ImagePrompt) == "" {
			return services.Wrap(services.ErrValidation, "script", "validate", fmt.Sprintf("segment %d has no imagePrompt", i+1), nil)
		}
	}
	return nil
}

// Input maps the script to job store input. A non-empty userID overrides
// the script's own.
func (s *Script) Input(userID string) reeljob.Input {
	input := reeljob.Input{
		ID:                    s.ID,
		UserID:                s.UserID,
		TargetDurationSeconds: s.TargetDurationSeconds,
		VoiceID:               s.VoiceID,
		ProvidedMedia:         s.ProvidedMedia,
	}
	if strings.TrimSpace(userID) != "" {
		input.UserID = userID
	}
	if w := s.Website; w != nil {
		analysis := &reeljob.WebsiteAnalysis{
			BusinessName: w.BusinessName,
			Category:     w.Category,
			LogoURL:      w.LogoURL,
		}
		for _, img := range w.ScrapedMedia {
			analysis.ScrapedMedia = append(analysis.ScrapedMedia, reeljob.ScrapedMedia{URL: img.URL, SourcePage: img.SourcePage})
		}
		input.WebsiteAnalysis = analysis
	}
	return input
}

// PrepareOptions maps the script to pipeline options for a created job.
// targetSeconds is the job's stored (clamped) target.
func (s *Script) PrepareOptions(jobID string, targetSeconds float64) assets.PrepareOptions {
	opts := assets.PrepareOptions{
		JobID:                 jobID,
		FullCommentary:        s.FullCommentary,
		TargetDurationSeconds: targetSeconds,
		MusicTone:             s.MusicTone,
		VoiceID:               s.VoiceID,
	}
	if s.Website != nil {
		opts.BusinessName = s.Website.BusinessName
		opts.Category = s.Website.Category
	}
	hasRoles := false
	for _, seg := range s.Segments {
		opts.Segments = append(opts.Segments, assets.SegmentContent{
			Commentary:  seg.Commentary,
			ImagePrompt: seg.ImagePrompt,
			Caption:     seg.Caption,
			VisualStyle: seg.VisualStyle,
		})
		if seg.Role != "" {
			hasRoles = true
		}
	}
	if hasRoles {
		for _, seg := range s.Segments {
			opts.Scenes = append(opts.Scenes, media.Scene{Role: strings.ToLower(strings.TrimSpace(seg.Role))})
		}
	}
	return opts
}
