// Package fileutil holds small filesystem helpers shared by the job store and
// the CLI.
package fileutil
