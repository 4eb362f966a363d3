package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"reelforge/internal/preflight"
)

func TestStatusCommandReportsReady(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Preflight ==")
	requireContains(t, out, "[OK] Ready to run")
	requireContains(t, out, "Voice synthesis")
	if strings.Contains(out, ansiReset) {
		t.Fatalf("expected no colour when writing to a buffer")
	}
}

func TestFitCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"fit", "--seconds", "2", "one two three four five six seven"}, env.configPath)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	requireContains(t, out, "Verdict:    Shorter")
	requireContains(t, out, "Truncated:  4 words")
	requireContains(t, out, "Text:       one two three four")

	if _, _, err := runCLI(t, []string{"fit", "hello"}, env.configPath); err == nil {
		t.Fatal("expected error without --seconds")
	}
}

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Job store", statusError, "in use", false)
	want := fmt.Sprintf("  %-*s %s", statusLabelWidth, "Job store:", "[ERROR] in use")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Job store", statusOK, "ok", true)
	if !strings.HasPrefix(got, statusStyles[statusOK].color) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestCheckLines(t *testing.T) {
	results := []preflight.Result{
		{Name: "Voice synthesis", Detail: "Missing API key"},
		{Name: "Image verification", Passed: true, Optional: true, Detail: "Disabled"},
		{Name: "Image fallback", Optional: true, Detail: "Missing API key"},
		{Name: "Data directory", Passed: true, Detail: "/tmp (read/write ok)"},
	}
	lines := checkLines(results, false)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[ERROR] 1 blocking problem") {
		t.Fatalf("unexpected summary: %q", lines[0])
	}
	for i, want := range []string{"[ERROR]", "[INFO]", "[WARN]", "[OK]"} {
		if !strings.Contains(lines[i+1], want) {
			t.Fatalf("line %d: expected %s in %q", i+1, want, lines[i+1])
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestFormatStatusLabel(t *testing.T) {
	if got := formatStatusLabel("synthesizing_voiceover"); got != "Synthesizing Voiceover" {
		t.Fatalf("formatStatusLabel = %q", got)
	}
	if got := formatStatusLabel(""); got != "" {
		t.Fatalf("expected empty label, got %q", got)
	}
}
