// Package openaiimage generates images with an OpenAI-compatible
// /images/generations endpoint. It is the fallback image generator.
package openaiimage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelforge/internal/assets"
	"reelforge/internal/services"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "dall-e-3"
	defaultSize    = "1024x1792"
	defaultTimeout = 120 * time.Second
)

// Config captures the endpoint settings.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Size           string
	TimeoutSeconds int
}

// Client calls POST {base}/images/generations.
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
	if cfg.Size == "" {
		cfg.Size = defaultSize
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
}

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type generationResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImage implements assets.ImageGenerator.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (assets.Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return assets.Image{}, errors.New("openai image: prompt required")
	}
	if c.cfg.APIKey == "" {
		return assets.Image{}, services.Wrap(services.ErrConfiguration, "images", "openai image", "api key required", nil)
	}
	encoded, err := json.Marshal(generationRequest{Model: c.cfg.Model, Prompt: prompt, N: 1, Size: c.cfg.Size})
	if err != nil {
		return assets.Image{}, fmt.Errorf("openai image: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/images/generations", bytes.NewReader(encoded))
	if err != nil {
		return assets.Image{}, fmt.Errorf("openai image: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return assets.Image{}, fmt.Errorf("openai image: %w", err)
	}
	defer resp.Body.Close()
	if err := services.CheckResponse("openai image", resp); err != nil {
		return assets.Image{}, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return assets.Image{}, fmt.Errorf("openai image: read body: %w", err)
	}
	var parsed generationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return assets.Image{}, fmt.Errorf("openai image: decode response: %w", err)
	}
	for _, item := range parsed.Data {
		if url := strings.TrimSpace(item.URL); url != "" {
			return assets.Image{URL: url}, nil
		}
		if item.B64JSON != "" {
			return assets.Image{URL: "data:image/png;base64," + item.B64JSON}, nil
		}
	}
	return assets.Image{}, errors.New("openai image: no image in response")
}
