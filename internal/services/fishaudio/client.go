// Package fishaudio synthesizes voiceovers with the Fish Audio TTS API.
package fishaudio

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelforge/internal/assets"
	"reelforge/internal/duration"
	"reelforge/internal/services"
)

const (
	defaultBaseURL = "https://api.fish.audio"
	defaultFormat  = "mp3"
	defaultTimeout = 120 * time.Second
)

// Config captures the Fish Audio settings.
type Config struct {
	APIKey          string
	BaseURL         string
	VoiceID         string
	Format          string
	SpeakingRateWPS float64
	TimeoutSeconds  int
}

// Client calls POST {base}/v1/tts.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New constructs a client. The API key is checked per request so a
// misconfigured primary fails over to the fallback instead of aborting startup.
func New(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.Format) == "" {
		cfg.Format = defaultFormat
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type ttsRequest struct {
	Text        string  `json:"text"`
	ReferenceID string  `json:"reference_id,omitempty"`
	Format      string  `json:"format"`
	Speed       float64 `json:"speed"`
	Pitch       float64 `json:"pitch"`
}

type ttsResponse struct {
	AudioURL        string  `json:"audio_url"`
	URL             string  `json:"url"`
	DurationSeconds float64 `json:"duration_seconds"`
	Duration        float64 `json:"duration"`
}

// Synthesize implements assets.Synthesizer.
func (c *Client) Synthesize(ctx context.Context, text string, opts assets.SynthesisOptions) (assets.Speech, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return assets.Speech{}, errors.New("fish audio tts: text required")
	}
	if c.cfg.APIKey == "" {
		return assets.Speech{}, services.Wrap(services.ErrConfiguration, "voiceover", "fish audio tts", "api key required", nil)
	}
	voiceID := strings.TrimSpace(opts.VoiceID)
	if voiceID == "" {
		voiceID = c.cfg.VoiceID
	}
	format := strings.TrimSpace(opts.Format)
	if format == "" {
		format = c.cfg.Format
	}
	speed := opts.Speed
	if speed <= 0 {
		speed = 1.0
	}
	pitch := opts.Pitch
	if pitch <= 0 {
		pitch = 1.0
	}

	encoded, err := json.Marshal(ttsRequest{Text: text, ReferenceID: voiceID, Format: format, Speed: speed, Pitch: pitch})
	if err != nil {
		return assets.Speech{}, fmt.Errorf("fish audio tts: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/tts", bytes.NewReader(encoded))
	if err != nil {
		return assets.Speech{}, fmt.Errorf("fish audio tts: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return assets.Speech{}, fmt.Errorf("fish audio tts: %w", err)
	}
	defer resp.Body.Close()
	if err := services.CheckResponse("fish audio tts", resp); err != nil {
		return assets.Speech{}, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return assets.Speech{}, fmt.Errorf("fish audio tts: read body: %w", err)
	}

	estimate := duration.EstimateDuration(text, c.cfg.SpeakingRateWPS).Seconds / speed
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var parsed ttsResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return assets.Speech{}, fmt.Errorf("fish audio tts: decode response: %w", err)
		}
		url := firstNonEmpty(parsed.AudioURL, parsed.URL)
		if url == "" {
			return assets.Speech{}, errors.New("fish audio tts: no audio url in response")
		}
		seconds := parsed.DurationSeconds
		if seconds <= 0 {
			seconds = parsed.Duration
		}
		if seconds <= 0 {
			seconds = estimate
		}
		return assets.Speech{AudioURL: url, DurationSeconds: seconds}, nil
	}
	if len(body) == 0 {
		return assets.Speech{}, errors.New("fish audio tts: empty audio response")
	}
	return assets.Speech{
		AudioURL:        "data:audio/" + format + ";base64," + base64.StdEncoding.EncodeToString(body),
		DurationSeconds: estimate,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
