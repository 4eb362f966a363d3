// Package flux generates images with a Flux model served from a Beam
// endpoint.
package flux

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

const defaultTimeout = 120 * time.Second

// Config captures the endpoint settings. Width and Height default to a 9:16
// portrait frame.
type Config struct {
	EndpointURL    string
	APIKey         string
	Width          int
	Height         int
	TimeoutSeconds int
}

// Client posts prompts to the endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New constructs a client.
func New(cfg Config) *Client {
	cfg.EndpointURL = strings.TrimSpace(cfg.EndpointURL)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.Width <= 0 {
		cfg.Width = 768
	}
	if cfg.Height <= 0 {
		cfg.Height = 1344
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type generateResponse struct {
	ImageURL string   `json:"image_url"`
	URL      string   `json:"url"`
	Output   []string `json:"output"`
	Image    string   `json:"image"`
}

// GenerateImage implements assets.ImageGenerator.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (assets.Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return assets.Image{}, errors.New("flux: prompt required")
	}
	if c.cfg.EndpointURL == "" || c.cfg.APIKey == "" {
		return assets.Image{}, services.Wrap(services.ErrConfiguration, "images", "flux generate", "endpoint and api key required", nil)
	}
	encoded, err := json.Marshal(generateRequest{Prompt: prompt, Width: c.cfg.Width, Height: c.cfg.Height})
	if err != nil {
		return assets.Image{}, fmt.Errorf("flux: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.EndpointURL, bytes.NewReader(encoded))
	if err != nil {
		return assets.Image{}, fmt.Errorf("flux: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return assets.Image{}, fmt.Errorf("flux: %w", err)
	}
	defer resp.Body.Close()
	if err := services.CheckResponse("flux generate", resp); err != nil {
		return assets.Image{}, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return assets.Image{}, fmt.Errorf("flux: read body: %w", err)
	}
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return assets.Image{}, fmt.Errorf("flux: decode response: %w", err)
	}
	if url := firstURL(parsed); url != "" {
		return assets.Image{URL: url}, nil
	}
	if parsed.Image != "" {
		if strings.HasPrefix(parsed.Image, "data:") {
			return assets.Image{URL: parsed.Image}, nil
		}
		return assets.Image{URL: "data:image/png;base64," + parsed.Image}, nil
	}
	return assets.Image{}, errors.New("flux: no image in response")
}

func firstURL(resp generateResponse) string {
	candidates := append([]string{resp.ImageURL, resp.URL}, resp.Output...)
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
