package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

type cliTestEnv struct {
	configPath string
	dataDir    string
	scriptDir  string
	ttsFail    atomic.Bool
	ttsCalls   atomic.Int32
	imageCalls atomic.Int32
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{
		"FISH_AUDIO_API_KEY", "FISH_AUDIO_VOICE_ID", "FISH_AUDIO_BASE_URL", "OPENAI_API_KEY",
		"OPENROUTER_API_KEY", "BEAMCLOUD_API_KEY", "BEAMCLOUD_ENDPOINT_URL", "REDIS_URL",
		"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET",
		"INTERNAL_MUSIC_CATALOG_PATH", "SPEAKING_RATE_WPS",
	} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		configPath: filepath.Join(base, "reelforge.toml"),
		dataDir:    filepath.Join(base, "data"),
		scriptDir:  filepath.Join(base, "scripts"),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/tts":
			env.ttsCalls.Add(1)
			if env.ttsFail.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"voice model offline"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"audio_url": "https://tts.test/voice.mp3", "duration_seconds": 20})
		case "/flux":
			n := env.imageCalls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{"image_url": fmt.Sprintf("https://flux.test/%d.png", n)})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[store]
backend = "file"

[tts]
base_url = %q
api_key = "fish-key"
voice_id = "voice-a"

[images]
enabled = true
endpoint_url = %q
api_key = "beam-key"

[images_fallback]
enabled = false

[storage]
propagation_delay_seconds = 0

[logging]
level = "error"
`, env.dataDir, filepath.Join(base, "logs"), srv.URL, srv.URL+"/flux")
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(e.scriptDir, 0o755); err != nil {
		t.Fatalf("mkdir scripts: %v", err)
	}
	path := filepath.Join(e.scriptDir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestRootHelp(t *testing.T) {
	out, _, err := runCLI(t, []string{"--help"}, "")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"run", "jobs", "status", "fit", "config"} {
		requireContains(t, out, name)
	}
}
