package main

import (
	"encoding/json"
	"strings"
	"testing"
)

const cafeScript = `
id: job_cli0001
userId: owner-1
targetDurationSeconds: 20
website:
  businessName: Crumb
  category: bakery
segments:
  - commentary: Fresh bread every morning.
    imagePrompt: warm bakery counter
  - commentary: Visit us today.
    imagePrompt: storefront at dusk
    role: cta
`

func TestRunPreparesJobFromScript(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeScript(t, "cafe.yaml", cafeScript)

	out, _, err := runCLI(t, []string{"run", path}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "Created job_cli0001")
	requireContains(t, out, "Ready")
	requireContains(t, out, "20.0s")
	if env.imageCalls.Load() != 2 {
		t.Fatalf("expected two generated visuals, got %d", env.imageCalls.Load())
	}

	out, _, err = runCLI(t, []string{"jobs", "show", "job_cli0001"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs show: %v", err)
	}
	var job struct {
		Status       string `json:"status"`
		CurrentStep  string `json:"currentStep"`
		UserID       string `json:"userId"`
		VoiceoverURL string `json:"voiceoverUrl"`
		Segments     []struct {
			ImageURL    string `json:"imageUrl"`
			ImageSource string `json:"imageSource"`
		} `json:"segments"`
	}
	if err := json.Unmarshal([]byte(out), &job); err != nil {
		t.Fatalf("decode job: %v\n%s", err, out)
	}
	if job.Status != "completed" || job.CurrentStep != "Assets ready" || job.UserID != "owner-1" {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.VoiceoverURL != "https://tts.test/voice.mp3" || len(job.Segments) != 2 || job.Segments[1].ImageSource != "generated" {
		t.Fatalf("assets not persisted: %+v", job)
	}

	out, _, err = runCLI(t, []string{"jobs", "last", "--user", "owner-1"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs last: %v", err)
	}
	requireContains(t, out, `"id": "job_cli0001"`)
}

func TestRunReportsFailedJobs(t *testing.T) {
	env := setupCLITestEnv(t)
	env.ttsFail.Store(true)
	path := env.writeScript(t, "cafe.yaml", cafeScript)

	out, _, err := runCLI(t, []string{"run", "--user", "override", path}, env.configPath)
	if err == nil {
		t.Fatalf("expected run to fail\n%s", out)
	}
	requireContains(t, err.Error(), "1 job failed")
	requireContains(t, out, "Failed")

	out, _, err = runCLI(t, []string{"jobs", "list", "--status", "failed"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "job_cli0001")
	requireContains(t, out, "Failed")

	out, _, err = runCLI(t, []string{"jobs", "last", "--user", "override"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs last: %v", err)
	}
	requireContains(t, out, "voice model offline")
}

func TestRunRejectsBadArguments(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeScript(t, "cafe.yaml", cafeScript)

	if _, _, err := runCLI(t, []string{"run", "--parallel", "0", path}, env.configPath); err == nil {
		t.Fatal("expected error for --parallel 0")
	}
	bad := env.writeScript(t, "bad.json", `{"targetDurationSeconds": 20}`)
	if _, _, err := runCLI(t, []string{"run", bad}, env.configPath); err == nil {
		t.Fatal("expected error for script without segments")
	}
	out, _, err := runCLI(t, []string{"jobs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "No jobs")
}

func TestRunFailsCreatedJobsWhenLaterCreateFails(t *testing.T) {
	env := setupCLITestEnv(t)
	first := env.writeScript(t, "cafe.yaml", cafeScript)
	second := env.writeScript(t, "reserved.json", `{
  "id": "user_last:bob",
  "targetDurationSeconds": 20,
  "segments": [{"commentary": "Hello there.", "imagePrompt": "sunny patio"}]
}`)

	out, _, err := runCLI(t, []string{"run", first, second}, env.configPath)
	if err == nil {
		t.Fatalf("expected run to fail\n%s", out)
	}
	requireContains(t, err.Error(), "reserved.json")

	out, _, err = runCLI(t, []string{"jobs", "show", "job_cli0001"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs show: %v", err)
	}
	var job struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal([]byte(out), &job); err != nil {
		t.Fatalf("decode job: %v\n%s", err, out)
	}
	if job.Status != "failed" || !strings.Contains(job.Error, "not started") {
		t.Fatalf("expected earlier job to be failed, got %+v", job)
	}
	if env.imageCalls.Load() != 0 {
		t.Fatalf("no pipeline should run, got %d image calls", env.imageCalls.Load())
	}
}
