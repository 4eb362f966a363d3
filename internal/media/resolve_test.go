package media_test

import (
	"fmt"
	"testing"

	"reelforge/internal/media"
)

func scenes(n int) []media.Scene {
	out := make([]media.Scene, n)
	for i := range out {
		out[i] = media.Scene{Role: fmt.Sprintf("role-%d", i)}
	}
	return out
}

func urls(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://%s.example/%d.jpg", prefix, i)
	}
	return out
}

func scraped(n int) []media.Candidate {
	out := make([]media.Candidate, n)
	for i := range out {
		out[i] = media.Candidate{URL: fmt.Sprintf("https://site.example/%d.jpg", i), SourcePage: "https://site.example"}
	}
	return out
}

func TestResolveTierCounts(t *testing.T) {
	cases := []struct {
		name                  string
		n, u, s               int
		wantU, wantS, wantGen int
	}{
		{"all generated", 4, 0, 0, 0, 0, 4},
		{"user then scraped then generate", 5, 2, 2, 2, 2, 1},
		{"user fills everything", 3, 5, 2, 3, 0, 0},
		{"scraped overflow", 4, 1, 6, 1, 3, 0},
		{"no scenes", 0, 2, 2, 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := media.Resolve(scenes(tc.n), urls("user", tc.u), scraped(tc.s), "")
			if len(res.Assignments) != tc.n {
				t.Fatalf("got %d assignments, want %d", len(res.Assignments), tc.n)
			}
			if res.User != tc.wantU || res.Scraped != tc.wantS || res.Generated != tc.wantGen {
				t.Fatalf("counts = %d/%d/%d, want %d/%d/%d", res.User, res.Scraped, res.Generated, tc.wantU, tc.wantS, tc.wantGen)
			}
		})
	}
}

func TestResolveKeepsPriorityOrderAndNeverReuses(t *testing.T) {
	user := urls("user", 2)
	res := media.Resolve(scenes(5), user, scraped(2), "")

	want := []string{user[0], user[1], "https://site.example/0.jpg", "https://site.example/1.jpg", ""}
	got := res.URLs()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scene %d = %q, want %q", i, got[i], want[i])
		}
	}

	seen := map[string]bool{}
	for _, url := range got {
		if url == "" {
			continue
		}
		if seen[url] {
			t.Fatalf("candidate %q assigned twice", url)
		}
		seen[url] = true
	}

	if a := res.At(2); a.Provenance != media.ProvenanceScraped || a.SourcePage != "https://site.example" {
		t.Fatalf("unexpected scraped assignment %+v", a)
	}
	if a := res.At(4); !a.Generate() || a.Provenance != media.ProvenanceGenerated {
		t.Fatalf("expected generate assignment, got %+v", a)
	}
	if a := res.At(1); a.Scene.Role != "role-1" {
		t.Fatalf("scene role not carried: %+v", a)
	}
}

func TestResolveNeverAssignsLogo(t *testing.T) {
	logo := "https://site.example/logo.png"
	candidates := []media.Candidate{{URL: logo}, {URL: "https://site.example/hero.jpg"}}

	res := media.Resolve(scenes(3), nil, candidates, logo)
	for i, url := range res.URLs() {
		if url == logo {
			t.Fatalf("scene %d was assigned the logo", i)
		}
	}
	if res.Scraped != 1 || res.Generated != 2 {
		t.Fatalf("unexpected counts %s", res.Summary())
	}
}

func TestResolveSkipsBlankCandidates(t *testing.T) {
	res := media.Resolve(scenes(2), []string{"  ", "https://user.example/a.jpg"}, []media.Candidate{{URL: ""}}, "")
	if got := res.URLs(); got[0] != "https://user.example/a.jpg" || got[1] != "" {
		t.Fatalf("unexpected urls %v", got)
	}
}

func TestAtOutOfRangeGenerates(t *testing.T) {
	res := media.Resolve(nil, urls("user", 1), nil, "")
	if !res.At(3).Generate() {
		t.Fatal("out of range scene should resolve to generation")
	}
}
