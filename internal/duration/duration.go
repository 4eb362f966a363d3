package duration

import (
	"math"
	"strings"
)

const (
	// DefaultSpeakingRateWPS is the narration pace used when no rate is given.
	DefaultSpeakingRateWPS = 2.3
	DefaultMinSpeed        = 0.85
	DefaultMaxSpeed        = 1.25
	// DefaultTolerancePercent bounds how far below target a voiceover may land.
	DefaultTolerancePercent = 0.05

	// targetFill leaves room for natural pauses when budgeting words.
	targetFill = 0.99
)

// Config carries duration fitting tunables.
type Config struct {
	SpeakingRateWPS  float64
	MinSpeed         float64
	MaxSpeed         float64
	TolerancePercent float64
}

// DefaultConfig returns the package defaults.
func DefaultConfig() Config {
	return Config{
		SpeakingRateWPS:  DefaultSpeakingRateWPS,
		MinSpeed:         DefaultMinSpeed,
		MaxSpeed:         DefaultMaxSpeed,
		TolerancePercent: DefaultTolerancePercent,
	}
}

// Rate returns the configured speaking rate, or the default when unset.
func (c Config) Rate() float64 {
	return rateOrDefault(c.SpeakingRateWPS)
}

// SpeedBounds returns the configured clamp range with defaults for unset ends.
func (c Config) SpeedBounds() (float64, float64) {
	lo, hi := c.MinSpeed, c.MaxSpeed
	if lo <= 0 {
		lo = DefaultMinSpeed
	}
	if hi <= 0 {
		hi = DefaultMaxSpeed
	}
	return lo, hi
}

// Estimate is a spoken-length estimate for a piece of text.
type Estimate struct {
	Seconds   float64
	WordCount int
	Rate      float64
}

// Adjustment says which way narration must move to fit its target.
type Adjustment string

const (
	AdjustShorter Adjustment = "shorter"
	AdjustLonger  Adjustment = "longer"
	AdjustOK      Adjustment = "ok"
)

// Window is a segment's playback span in seconds.
type Window struct {
	Start float64
	End   float64
}

// Span returns the window length.
func (w Window) Span() float64 { return w.End - w.Start }

// EstimateDuration returns word count divided by rate.
func EstimateDuration(text string, rate float64) Estimate {
	rate = rateOrDefault(rate)
	words := len(strings.Fields(text))
	return Estimate{
		Seconds:   float64(words) / rate,
		WordCount: words,
		Rate:      rate,
	}
}

// TargetWordCount is the word budget that fills 99% of seconds at rate.
func TargetWordCount(seconds, rate float64) int {
	return int(math.Floor(seconds * targetFill * rateOrDefault(rate)))
}

// WithinTolerance reports whether estimated is within toleranceSeconds of target.
func WithinTolerance(estimated, target, toleranceSeconds float64) bool {
	return math.Abs(estimated-target) <= toleranceSeconds
}

// TruncateToFit trims text to floor(maxSeconds*rate) words. When trimming is
// needed and the sliced text has a sentence end past its midpoint, the cut
// moves back to that boundary.
func TruncateToFit(text string, maxSeconds, rate float64) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	budget := int(math.Floor(maxSeconds * rateOrDefault(rate)))
	if budget < 0 {
		budget = 0
	}

	words := strings.Fields(trimmed)
	if len(words) <= budget {
		return trimmed
	}

	truncated := strings.Join(words[:budget], " ")
	boundary := strings.LastIndexAny(truncated, ".?!")
	if boundary >= 0 && float64(boundary) > float64(len(truncated))*0.5 {
		truncated = truncated[:boundary+1]
	}
	return strings.TrimSpace(truncated)
}

// SpeedAdjustment returns actual/target clamped to [minSpeed, maxSpeed], or
// 1.0 when either duration is not positive.
func SpeedAdjustment(actual, target, minSpeed, maxSpeed float64) float64 {
	if actual <= 0 || target <= 0 {
		return 1.0
	}
	return math.Max(minSpeed, math.Min(maxSpeed, actual/target))
}

// SpeedAdjustment applies the package-level function with c's bounds.
func (c Config) SpeedAdjustment(actual, target float64) float64 {
	lo, hi := c.SpeedBounds()
	return SpeedAdjustment(actual, target, lo, hi)
}

// NeedsAdjustment classifies estimated against target. The ok band is
// [target*(1-tolerancePercent), target]; anything over target is too long.
func NeedsAdjustment(estimated, target, tolerancePercent float64) Adjustment {
	if target <= 0 {
		if estimated > 0 {
			return AdjustShorter
		}
		return AdjustOK
	}
	deviation := (estimated - target) / target
	switch {
	case deviation > 0:
		return AdjustShorter
	case deviation < -tolerancePercent:
		return AdjustLonger
	default:
		return AdjustOK
	}
}

// DistributeDurations splits total evenly across n segments.
func DistributeDurations(total float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	each := total / float64(n)
	for i := range out {
		out[i] = each
	}
	return out
}

// SegmentTimings lays durations end to end starting at zero.
func SegmentTimings(durations []float64) []Window {
	windows := make([]Window, 0, len(durations))
	current := 0.0
	for _, d := range durations {
		windows = append(windows, Window{Start: current, End: current + d})
		current += d
	}
	return windows
}

// DistributeAndTime returns n contiguous equal windows covering [0, total].
func DistributeAndTime(total float64, n int) []Window {
	windows := SegmentTimings(DistributeDurations(total, n))
	if len(windows) > 0 {
		// Pin the final edge so accumulated rounding never leaves a gap.
		windows[len(windows)-1].End = total
	}
	return windows
}

func rateOrDefault(rate float64) float64 {
	if rate <= 0 {
		return DefaultSpeakingRateWPS
	}
	return rate
}
