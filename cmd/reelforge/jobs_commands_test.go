package main

import (
	"testing"
)

func TestJobsClearRequiresConfirmation(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeScript(t, "cafe.yaml", cafeScript)
	if _, _, err := runCLI(t, []string{"run", path}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	_, _, err := runCLI(t, []string{"jobs", "clear"}, env.configPath)
	if err == nil {
		t.Fatal("expected clear without --yes to fail")
	}
	requireContains(t, err.Error(), "--yes")

	out, _, err := runCLI(t, []string{"jobs", "clear", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 job")
}

func TestJobsShowMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"jobs", "show", "job_nope"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing job")
	}
	requireContains(t, err.Error(), "not found")
}

func TestJobsListRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"jobs", "list", "--status", "rendering"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	requireContains(t, err.Error(), "synthesizing_voiceover")
}

func TestJobsLastRequiresUser(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"jobs", "last"}, env.configPath); err == nil {
		t.Fatal("expected error without --user")
	}
}
