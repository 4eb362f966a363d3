package main

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelforge/internal/reeljob"
)

var titleCaser = cases.Title(language.English)

func buildJobRows(jobs []*reeljob.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		user := job.UserID
		if user == "" {
			user = "-"
		}
		step := job.CurrentStep
		if job.Status == reeljob.StatusFailed && job.Error != "" {
			step = truncate(job.Error, 40)
		}
		rows = append(rows, []string{
			job.ID,
			formatStatusLabel(string(job.Status)),
			step,
			user,
			fmt.Sprintf("%.0fs", job.TargetDurationSeconds),
			formatDisplayTime(job.CreatedAt),
		})
	}
	return rows
}

// formatStatusLabel turns snake_case statuses into title-cased labels.
func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	return titleCaser.String(strings.ReplaceAll(status, "_", " "))
}

func formatDisplayTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
