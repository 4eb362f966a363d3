package music

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"reelforge/internal/assets"
	"reelforge/internal/textutil"
)

// Source is reported on every selection made from a catalog.
const Source = "catalog"

// Track is one catalog entry.
type Track struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	AudioURL        string   `json:"audioUrl"`
	DurationSeconds float64  `json:"durationSeconds"`
	Tags            []string `json:"tags"`
}

// Catalog is an in-memory track list.
type Catalog struct {
	tracks []Track
}

// NewCatalog builds a catalog from tracks, dropping entries without audio.
func NewCatalog(tracks []Track) *Catalog {
	kept := make([]Track, 0, len(tracks))
	for _, track := range tracks {
		if strings.TrimSpace(track.AudioURL) == "" {
			continue
		}
		kept = append(kept, track)
	}
	return &Catalog{tracks: kept}
}

// LoadCatalog reads a catalog file. A missing file yields an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewCatalog(nil), nil
		}
		return nil, fmt.Errorf("read music catalog: %w", err)
	}
	var tracks []Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("parse music catalog %s: %w", path, err)
	}
	return NewCatalog(tracks), nil
}

// Len returns the number of usable tracks.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tracks)
}

type ranked struct {
	track      Track
	overlap    int
	covers     bool
	similarity float64
	distance   float64
}

// SelectMusic implements assets.MusicSelector. An empty catalog returns nil.
func (c *Catalog) SelectMusic(ctx context.Context, styleTags []string, durationSeconds float64, contextText string) (*assets.MusicSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, nil
	}
	wanted := make(map[string]struct{}, len(styleTags))
	for _, tag := range styleTags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			wanted[tag] = struct{}{}
		}
	}
	contextPrint := textutil.NewFingerprint(contextText)

	candidates := make([]ranked, 0, len(c.tracks))
	for _, track := range c.tracks {
		r := ranked{
			track:    track,
			covers:   durationSeconds <= 0 || track.DurationSeconds >= durationSeconds,
			distance: math.Abs(track.DurationSeconds - durationSeconds),
		}
		for _, tag := range track.Tags {
			if _, ok := wanted[strings.ToLower(strings.TrimSpace(tag))]; ok {
				r.overlap++
			}
		}
		trackPrint := textutil.NewFingerprint(track.Title + " " + strings.Join(track.Tags, " "))
		r.similarity = textutil.CosineSimilarity(contextPrint, trackPrint)
		candidates = append(candidates, r)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.overlap != b.overlap {
			return a.overlap > b.overlap
		}
		if a.covers != b.covers {
			return a.covers
		}
		if a.similarity != b.similarity {
			return a.similarity > b.similarity
		}
		return a.distance < b.distance
	})

	best := candidates[0].track
	return &assets.MusicSelection{
		Track: assets.Track{
			ID:              best.ID,
			Title:           best.Title,
			AudioURL:        best.AudioURL,
			DurationSeconds: best.DurationSeconds,
		},
		Source: Source,
	}, nil
}
