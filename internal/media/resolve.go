package media

import (
	"fmt"
	"log/slog"
	"strings"

	"reelforge/internal/logging"
)

// Provenance records where a resolved visual came from.
type Provenance string

const (
	ProvenanceUser      Provenance = "user"
	ProvenanceScraped   Provenance = "scraped"
	ProvenanceGenerated Provenance = "generated"
)

// Scene is the part of a script scene the resolver cares about.
type Scene struct {
	Role string
}

// Candidate is a media URL offered to the resolver.
type Candidate struct {
	URL        string
	Provenance Provenance
	SourcePage string
}

// Assignment is the resolved source for one scene. An empty URL means the
// scene must be generated.
type Assignment struct {
	Scene      Scene
	URL        string
	Provenance Provenance
	SourcePage string
}

// Generate reports whether the scene is left for AI generation.
func (a Assignment) Generate() bool {
	return a.URL == ""
}

// Resolution is the outcome of Resolve, one assignment per scene in order.
type Resolution struct {
	Assignments []Assignment
	User        int
	Scraped     int
	Generated   int
}

// URLs returns the resolved URL per scene; "" marks a scene to generate.
func (r Resolution) URLs() []string {
	urls := make([]string, len(r.Assignments))
	for i, a := range r.Assignments {
		urls[i] = a.URL
	}
	return urls
}

// At returns the assignment for scene i, or a generate assignment when i is
// out of range.
func (r Resolution) At(i int) Assignment {
	if i < 0 || i >= len(r.Assignments) {
		return Assignment{Provenance: ProvenanceGenerated}
	}
	return r.Assignments[i]
}

// Summary renders the per-tier counts.
func (r Resolution) Summary() string {
	return fmt.Sprintf("%d user, %d scraped, %d AI-generated", r.User, r.Scraped, r.Generated)
}

// Log writes one line per scene and a summary line.
func (r Resolution) Log(logger *slog.Logger) {
	if logger == nil {
		return
	}
	for i, a := range r.Assignments {
		attrs := []logging.Attr{
			logging.Int("scene", i+1),
			logging.String("role", a.Scene.Role),
			logging.String("source", string(a.Provenance)),
		}
		if a.SourcePage != "" {
			attrs = append(attrs, logging.String("source_page", a.SourcePage))
		}
		logger.Debug("scene media resolved", logging.Args(attrs...)...)
	}
	logger.Info("media resolution summary",
		logging.Int("scenes", len(r.Assignments)),
		logging.Int("user", r.User),
		logging.Int("scraped", r.Scraped),
		logging.Int("generated", r.Generated),
	)
}

// Resolve assigns a source to every scene. User URLs are taken first, then
// scraped candidates, then generation. Blank URLs are skipped, and scraped
// candidates pointing at the logo are skipped because the logo is reserved
// for branding.
func Resolve(scenes []Scene, user []string, scraped []Candidate, logoURL string) Resolution {
	userPool := make([]Candidate, 0, len(user))
	for _, url := range user {
		if url = strings.TrimSpace(url); url != "" {
			userPool = append(userPool, Candidate{URL: url, Provenance: ProvenanceUser})
		}
	}
	logoURL = strings.TrimSpace(logoURL)
	scrapedPool := make([]Candidate, 0, len(scraped))
	for _, c := range scraped {
		c.URL = strings.TrimSpace(c.URL)
		if c.URL == "" || (logoURL != "" && c.URL == logoURL) {
			continue
		}
		c.Provenance = ProvenanceScraped
		scrapedPool = append(scrapedPool, c)
	}

	res := Resolution{Assignments: make([]Assignment, 0, len(scenes))}
	userCursor, scrapedCursor := 0, 0
	for _, scene := range scenes {
		switch {
		case userCursor < len(userPool):
			c := userPool[userCursor]
			userCursor++
			res.User++
			res.Assignments = append(res.Assignments, Assignment{Scene: scene, URL: c.URL, Provenance: c.Provenance})
		case scrapedCursor < len(scrapedPool):
			c := scrapedPool[scrapedCursor]
			scrapedCursor++
			res.Scraped++
			res.Assignments = append(res.Assignments, Assignment{Scene: scene, URL: c.URL, Provenance: c.Provenance, SourcePage: c.SourcePage})
		default:
			res.Generated++
			res.Assignments = append(res.Assignments, Assignment{Scene: scene, Provenance: ProvenanceGenerated})
		}
	}
	return res
}
