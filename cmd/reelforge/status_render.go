package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"reelforge/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const statusLabelWidth = 24

// renderStatusLine formats "  Label:   [KIND] message", coloured when asked.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}
	status := "[" + style.label + "]"
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", status)
	if !colorize {
		return line
	}
	return style.color + line + ansiReset
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	underline := strings.Repeat("-", len(heading))
	if colorize {
		blue := statusStyles[statusInfo].color
		return []string{blue + heading + ansiReset, blue + underline + ansiReset}
	}
	return []string{heading, underline}
}

// checkKind maps a preflight result to a status kind. Failed optional
// checks are warnings.
func checkKind(r preflight.Result) statusKind {
	switch {
	case r.Passed && strings.EqualFold(r.Detail, "disabled"):
		return statusInfo
	case r.Passed:
		return statusOK
	case r.Optional:
		return statusWarn
	default:
		return statusError
	}
}

// checkLines renders results with a summary line first.
func checkLines(results []preflight.Result, colorize bool) []string {
	blocking := preflight.Blocking(results)
	lines := make([]string, 0, len(results)+1)
	if len(blocking) == 0 {
		lines = append(lines, renderStatusLine("Summary", statusOK, "Ready to run", colorize))
	} else {
		lines = append(lines, renderStatusLine("Summary", statusError, pluralize(len(blocking), "blocking problem", "blocking problems"), colorize))
	}
	for _, r := range results {
		lines = append(lines, renderStatusLine(r.Name, checkKind(r), r.Detail, colorize))
	}
	return lines
}

// shouldColorize reports whether w is an interactive terminal.
func shouldColorize(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
