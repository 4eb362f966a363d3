// Package vision checks generated images with a vision-capable chat model.
package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reelforge/internal/assets"
	"reelforge/internal/services"
	"reelforge/internal/services/llm"
)

const textFreeSystemPrompt = `You inspect images for a short promotional video.
Report whether the image contains any visible text, letters, words, numbers, signage, logos with lettering, or watermarks.
Respond with JSON only: {"isValid": boolean, "issues": [string], "detectedText": [string]}.
isValid is true only when the image is free of any readable text.`

const generalSystemPrompt = `You inspect images for a short promotional video.
Report obvious defects such as distorted people, broken rendering, or unsafe content.
Respond with JSON only: {"isValid": boolean, "issues": [string], "detectedText": [string]}.`

type verdict struct {
	IsValid      bool     `json:"isValid"`
	Issues       []string `json:"issues"`
	DetectedText []string `json:"detectedText"`
}

type completer interface {
	CompleteJSONParts(ctx context.Context, systemPrompt string, parts []llm.Part) (string, error)
}

// Client verifies image content.
type Client struct {
	llm completer
}

// New wraps an llm client.
func New(client *llm.Client) *Client {
	return &Client{llm: client}
}

// VerifyImageContent asks the model whether the image at url passes the
// requested checks.
func (c *Client) VerifyImageContent(ctx context.Context, url string, opts assets.VerifyOptions) (assets.Verification, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return assets.Verification{}, services.Wrap(services.ErrValidation, "verification", "verify image", "image url required", nil)
	}
	if c == nil || c.llm == nil {
		return assets.Verification{}, errors.New("vision: client not configured")
	}
	system := generalSystemPrompt
	question := "Inspect this image."
	if opts.MustBeTextFree {
		system = textFreeSystemPrompt
		question = "Does this image contain any text? Inspect it carefully."
	}
	content, err := c.llm.CompleteJSONParts(ctx, system, []llm.Part{
		llm.TextPart(question),
		llm.ImagePart(url),
	})
	if err != nil {
		return assets.Verification{}, services.Wrap(services.ErrExternalService, "verification", "verify image", "vision request failed", err)
	}
	var result verdict
	if err := llm.DecodeLLMJSON(content, &result); err != nil {
		return assets.Verification{}, fmt.Errorf("vision: parse verdict: %w", err)
	}
	if result.Issues == nil {
		result.Issues = []string{}
	}
	if result.DetectedText == nil {
		result.DetectedText = []string{}
	}
	return assets.Verification(result), nil
}
