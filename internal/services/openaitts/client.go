// Package openaitts synthesizes speech with an OpenAI-compatible
// /audio/speech endpoint. It serves as the fallback synthesizer.
package openaitts

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
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "tts-1"
	defaultVoice   = "alloy"
	defaultTimeout = 120 * time.Second
	responseFormat = "mp3"
)

// Config captures the endpoint settings.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Voice           string
	SpeakingRateWPS float64
	TimeoutSeconds  int
}

// Client calls POST {base}/audio/speech.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New constructs a client.
func New(cfg Config) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Voice == "" {
		cfg.Voice = defaultVoice
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed"`
	ResponseFormat string  `json:"response_format"`
}

// Synthesize implements assets.Synthesizer. Pitch is not part of the protocol
// and is ignored. A voice id is only honoured when it names one of the
// endpoint's voices, so cloned-voice ids fall back to the configured voice.
func (c *Client) Synthesize(ctx context.Context, text string, opts assets.SynthesisOptions) (assets.Speech, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return assets.Speech{}, errors.New("openai tts: text required")
	}
	if c.cfg.APIKey == "" {
		return assets.Speech{}, services.Wrap(services.ErrConfiguration, "voiceover", "openai tts", "api key required", nil)
	}
	voice := c.cfg.Voice
	if builtinVoices[strings.ToLower(strings.TrimSpace(opts.VoiceID))] {
		voice = strings.ToLower(strings.TrimSpace(opts.VoiceID))
	}
	speed := opts.Speed
	if speed <= 0 {
		speed = 1.0
	}

	encoded, err := json.Marshal(speechRequest{
		Model:          c.cfg.Model,
		Input:          text,
		Voice:          voice,
		Speed:          speed,
		ResponseFormat: responseFormat,
	})
	if err != nil {
		return assets.Speech{}, fmt.Errorf("openai tts: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/audio/speech", bytes.NewReader(encoded))
	if err != nil {
		return assets.Speech{}, fmt.Errorf("openai tts: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return assets.Speech{}, fmt.Errorf("openai tts: %w", err)
	}
	defer resp.Body.Close()
	if err := services.CheckResponse("openai tts", resp); err != nil {
		return assets.Speech{}, err
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return assets.Speech{}, fmt.Errorf("openai tts: read body: %w", err)
	}
	if len(audio) == 0 {
		return assets.Speech{}, errors.New("openai tts: empty audio response")
	}
	return assets.Speech{
		AudioURL:        "data:audio/" + responseFormat + ";base64," + base64.StdEncoding.EncodeToString(audio),
		DurationSeconds: duration.EstimateDuration(text, c.cfg.SpeakingRateWPS).Seconds / speed,
	}, nil
}

var builtinVoices = map[string]bool{
	"alloy": true, "ash": true, "coral": true, "echo": true, "fable": true,
	"nova": true, "onyx": true, "sage": true, "shimmer": true,
}
