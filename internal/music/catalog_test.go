package music_test

import (
	"context"
	"path/filepath"
	"testing"

	"reelforge/internal/music"
	"reelforge/internal/testsupport"
)

func sampleTracks() []music.Track {
	return []music.Track{
		{ID: "short-upbeat", Title: "Morning Rush", AudioURL: "https://music.example/1.mp3", DurationSeconds: 20, Tags: []string{"upbeat", "acoustic"}},
		{ID: "long-upbeat", Title: "Sunny Streets", AudioURL: "https://music.example/2.mp3", DurationSeconds: 60, Tags: []string{"upbeat", "pop"}},
		{ID: "calm", Title: "Quiet Hours", AudioURL: "https://music.example/3.mp3", DurationSeconds: 31, Tags: []string{"calm", "piano"}},
		{ID: "no-audio", Title: "Broken", DurationSeconds: 30, Tags: []string{"upbeat"}},
	}
}

func TestSelectMusicPrefersTagOverlapThenCoverage(t *testing.T) {
	catalog := music.NewCatalog(sampleTracks())
	if catalog.Len() != 3 {
		t.Fatalf("tracks without audio should be dropped, got %d", catalog.Len())
	}

	selection, err := catalog.SelectMusic(context.Background(), []string{"Upbeat"}, 30, "restaurant promo")
	if err != nil {
		t.Fatalf("SelectMusic returned error: %v", err)
	}
	if selection == nil || selection.Track.AudioURL != "https://music.example/2.mp3" {
		t.Fatalf("expected the upbeat track covering 30s, got %+v", selection)
	}
	if selection.Source != music.Source {
		t.Fatalf("source = %q, want %q", selection.Source, music.Source)
	}
}

func TestSelectMusicUsesContextThenDuration(t *testing.T) {
	catalog := music.NewCatalog([]music.Track{
		{ID: "a", Title: "Generic Bed", AudioURL: "https://music.example/a.mp3", DurationSeconds: 40, Tags: []string{"corporate"}},
		{ID: "b", Title: "Bakery Morning", AudioURL: "https://music.example/b.mp3", DurationSeconds: 90, Tags: []string{"corporate", "warm"}},
		{ID: "c", Title: "Generic Bed Two", AudioURL: "https://music.example/c.mp3", DurationSeconds: 35, Tags: []string{"corporate"}},
	})

	selection, err := catalog.SelectMusic(context.Background(), []string{"corporate"}, 30, "Business: Corner Bakery, Category: restaurant, Tone: warm")
	if err != nil {
		t.Fatalf("SelectMusic returned error: %v", err)
	}
	if selection.Track.ID != "b" {
		t.Fatalf("expected context match b, got %s", selection.Track.ID)
	}

	selection, err = catalog.SelectMusic(context.Background(), []string{"corporate"}, 30, "")
	if err != nil {
		t.Fatalf("SelectMusic returned error: %v", err)
	}
	if selection.Track.ID != "c" {
		t.Fatalf("expected closest covering duration c, got %s", selection.Track.ID)
	}
}

func TestSelectMusicEmptyCatalog(t *testing.T) {
	catalog, err := music.LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	selection, err := catalog.SelectMusic(context.Background(), []string{"upbeat"}, 30, "")
	if err != nil || selection != nil {
		t.Fatalf("expected no selection, got %+v, %v", selection, err)
	}
}

func TestLoadCatalogParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	testsupport.WriteJSON(t, path, sampleTracks())
	catalog, err := music.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	if catalog.Len() != 3 {
		t.Fatalf("unexpected track count %d", catalog.Len())
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	testsupport.WriteFile(t, bad, []byte("{"))
	if _, err := music.LoadCatalog(bad); err == nil {
		t.Fatal("expected parse error")
	}
}
