// Package llm provides an OpenRouter-compatible chat client that asks for
// JSON-only answers.
//
// The image verifier attaches the image as an image_url content part and
// decodes the model reply with DecodeLLMJSON, which tolerates code fences and
// prose around the JSON object.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Retry-After is honoured. Context cancellation aborts retries
// immediately.
package llm
