package duration_test

import (
	"math"
	"strings"
	"testing"

	"reelforge/internal/duration"
)

func TestEstimateDuration(t *testing.T) {
	est := duration.EstimateDuration("  one two   three four\nfive six ", 2)
	if est.WordCount != 6 || est.Seconds != 3 || est.Rate != 2 {
		t.Fatalf("unexpected estimate: %+v", est)
	}
	if got := duration.EstimateDuration("a b c", 0).Rate; got != duration.DefaultSpeakingRateWPS {
		t.Fatalf("expected default rate for zero override, got %v", got)
	}
	if got := duration.EstimateDuration("", 2.3).Seconds; got != 0 {
		t.Fatalf("expected zero seconds for empty text, got %v", got)
	}
}

func TestTargetWordCountAndTolerance(t *testing.T) {
	if got := duration.TargetWordCount(30, 2.3); got != 68 {
		t.Fatalf("TargetWordCount(30, 2.3) = %d, want 68", got)
	}
	if !duration.WithinTolerance(29.6, 30, 0.5) || duration.WithinTolerance(29.4, 30, 0.5) {
		t.Fatal("unexpected tolerance result")
	}
}

func TestTruncateToFit(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		maxSeconds float64
		rate       float64
		want       string
	}{
		{"fits unchanged", "  Short text here.  ", 10, 1, "Short text here."},
		{"blank", "   ", 10, 1, ""},
		{"cuts at late boundary", "One two three. Four five six seven eight nine.", 5, 1, "One two three."},
		{"keeps raw slice when boundary is early", "Hi. two three four five six seven eight", 6, 1, "Hi. two three four five six"},
		{"question mark boundary", "Is this working? Yes it is very much so", 4, 1, "Is this working?"},
		{"zero budget", "anything at all", 0, 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := duration.TruncateToFit(tt.text, tt.maxSeconds, tt.rate); got != tt.want {
				t.Fatalf("TruncateToFit() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateToFitRespectsBudget(t *testing.T) {
	words := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		w := "word"
		if i%7 == 6 {
			w = "end."
		}
		words = append(words, w)
	}
	text := strings.Join(words, " ")
	for _, seconds := range []float64{1, 3.3, 10, 29.9, 45, 100} {
		budget := int(math.Floor(seconds * 2.3))
		got := duration.TruncateToFit(text, seconds, 2.3)
		if n := len(strings.Fields(got)); n > budget {
			t.Fatalf("seconds=%v: %d words exceeds budget %d", seconds, n, budget)
		}
		if budget >= 7 && budget < 200 && !strings.HasSuffix(got, ".") {
			t.Fatalf("seconds=%v: expected sentence boundary, got %q", seconds, got)
		}
	}
}

func TestSpeedAdjustment(t *testing.T) {
	tests := []struct {
		actual, target, want float64
	}{
		{33, 30, 1.1},
		{60, 30, 1.25},
		{10, 30, 0.85},
		{0, 30, 1.0},
		{30, 0, 1.0},
		{-1, 30, 1.0},
	}
	for _, tt := range tests {
		got := duration.SpeedAdjustment(tt.actual, tt.target, 0.85, 1.25)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("SpeedAdjustment(%v, %v) = %v, want %v", tt.actual, tt.target, got, tt.want)
		}
		if got < 0.85 || got > 1.25 {
			t.Fatalf("SpeedAdjustment out of bounds: %v", got)
		}
	}
	cfg := duration.Config{}
	if got := cfg.SpeedAdjustment(100, 10); got != duration.DefaultMaxSpeed {
		t.Fatalf("expected default max speed from zero config, got %v", got)
	}
}

func TestNeedsAdjustment(t *testing.T) {
	tests := []struct {
		est, target float64
		want        duration.Adjustment
	}{
		{30.01, 30, duration.AdjustShorter},
		{30, 30, duration.AdjustOK},
		{28.5, 30, duration.AdjustOK},
		{28.49, 30, duration.AdjustLonger},
		{10, 30, duration.AdjustLonger},
	}
	for _, tt := range tests {
		if got := duration.NeedsAdjustment(tt.est, tt.target, 0.05); got != tt.want {
			t.Fatalf("NeedsAdjustment(%v, %v) = %s, want %s", tt.est, tt.target, got, tt.want)
		}
	}
}

func TestDistributeAndTime(t *testing.T) {
	for _, tc := range []struct {
		total float64
		n     int
	}{{30, 3}, {29.7, 7}, {61.3, 100}, {12, 1}} {
		windows := duration.DistributeAndTime(tc.total, tc.n)
		if len(windows) != tc.n {
			t.Fatalf("expected %d windows, got %d", tc.n, len(windows))
		}
		if windows[0].Start != 0 {
			t.Fatalf("first window must start at 0, got %v", windows[0].Start)
		}
		sum := 0.0
		for i, w := range windows {
			if i > 0 && w.Start != windows[i-1].End {
				t.Fatalf("window %d not contiguous: %v after %v", i, w.Start, windows[i-1].End)
			}
			sum += w.Span()
		}
		if math.Abs(sum-tc.total) > 1e-9 {
			t.Fatalf("spans sum to %v, want %v", sum, tc.total)
		}
		if windows[len(windows)-1].End != tc.total {
			t.Fatalf("last window must end at total, got %v", windows[len(windows)-1].End)
		}
	}
	if got := duration.DistributeAndTime(30, 0); len(got) != 0 {
		t.Fatalf("expected no windows for n=0, got %v", got)
	}
}
