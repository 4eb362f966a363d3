// Package preflight provides readiness checks for the filesystem paths, job
// store and vendor credentials that reelforge depends on.
//
// The CLI "reelforge status" command renders RunAll's results, and "run"
// refuses to start when a required check fails. Optional vendors that are
// disabled report as passed with a "disabled" detail.
package preflight
