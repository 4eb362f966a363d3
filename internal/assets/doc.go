// Package assets prepares everything a reel needs before rendering: a
// voiceover fitted to the target duration, background music and one visual
// per narration segment.
//
// Service.Prepare walks a fixed sequence of stages and checkpoints the job
// after each one:
//
//	pending -> synthesizing_voiceover -> selecting_music -> generating_images -> completed
//
// Any stage may end in failed. Every vendor sits behind a small interface in
// ports.go with at most one fallback. Post-processing failures (uploads, logo
// handling, image verification) are logged and never fail the job.
//
// Service.Run wraps Prepare with the terminal transition and notifications,
// and RunAll runs independent jobs side by side.
package assets
