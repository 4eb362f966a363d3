// Package music selects background tracks from a local JSON catalog.
//
// The catalog is a JSON array of {id, title, audioUrl, durationSeconds, tags}.
// Tracks are ranked by how many requested style tags they carry, then by
// whether they cover the whole voiceover, then by how well their title and
// tags match the reel's context string, and finally by closeness of duration.
package music
