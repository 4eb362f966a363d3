// Package duration estimates narration length from word counts and fits
// voiceovers to a target reel duration.
//
// Every function is pure. Tunables travel in an explicit Config value so tests
// (and callers with per-job overrides) never depend on process state.
package duration
