package script

import (
	"errors"
	"path/filepath"
	"testing"

	"reelforge/internal/services"
	"reelforge/internal/testsupport"
)

const yamlScript = `
id: job_cafe01
targetDurationSeconds: 30
voiceId: voice-a
musicTone: warm
providedMedia:
  - https://user.test/a.jpg
website:
  businessName: Crumb
  category: bakery
  logoUrl: https://crumb.test/logo.png
  scrapedMedia:
    - url: https://crumb.test/hero.jpg
      sourcePage: /
segments:
  - commentary: Fresh bread every morning.
    imagePrompt: warm bakery counter
    role: hook
  - commentary: Visit us today.
    imagePrompt: storefront at dusk
    role: CTA
`

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crumb.yaml")
	testsupport.WriteFile(t, path, []byte(yamlScript))

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Path != path || len(s.Segments) != 2 {
		t.Fatalf("unexpected script: %+v", s)
	}

	input := s.Input("")
	if input.ID != "job_cafe01" || input.WebsiteAnalysis == nil || len(input.WebsiteAnalysis.ScrapedMedia) != 1 {
		t.Fatalf("unexpected input: %+v", input)
	}
	if got := s.Input("override").UserID; got != "override" {
		t.Fatalf("user override ignored: %q", got)
	}

	opts := s.PrepareOptions("job_cafe01", 30)
	if opts.BusinessName != "Crumb" || opts.Category != "bakery" || opts.MusicTone != "warm" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if len(opts.Scenes) != 2 || opts.Scenes[1].Role != "cta" {
		t.Fatalf("expected normalized scene roles, got %+v", opts.Scenes)
	}
}

func TestLoadJSONWithoutRoles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.json")
	testsupport.WriteJSON(t, path, map[string]any{
		"targetDurationSeconds": 20,
		"segments": []map[string]any{
			{"commentary": "One.", "imagePrompt": "a"},
			{"commentary": "Two.", "imagePrompt": "b"},
		},
	})

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts := s.PrepareOptions("job_x", 20)
	if len(opts.Scenes) != 0 || len(opts.Segments) != 2 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if s.Input("").WebsiteAnalysis != nil {
		t.Fatal("expected no website analysis")
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"targetDurationSeconds": 20, "segmnts": []}`), "json")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = Parse([]byte("targetDurationSeconds: 20\nsegmnts: []\n"), "yaml")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"no target":   "segments:\n  - commentary: a\n    imagePrompt: b\n",
		"no segments": "targetDurationSeconds: 30\n",
		"no prompt":   "targetDurationSeconds: 30\nsegments:\n  - commentary: a\n",
		"no text":     "targetDurationSeconds: 30\nsegments:\n  - imagePrompt: b\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(body), "yaml"); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	ok := "targetDurationSeconds: 30\nfullCommentary: Whole narration.\nsegments:\n  - imagePrompt: b\n"
	if _, err := Parse([]byte(ok), "yaml"); err != nil {
		t.Fatalf("full commentary should cover segments without text: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
