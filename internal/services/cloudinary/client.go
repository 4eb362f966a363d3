package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"reelforge/internal/assets"
	"reelforge/internal/services"
)

const (
	defaultAPIBase = "https://api.cloudinary.com/v1_1"
	defaultTimeout = 120 * time.Second
	resourceImage  = "image"
	resourceVideo  = "video"
)

// Config holds the account credentials.
type Config struct {
	CloudName      string
	APIKey         string
	APISecret      string
	APIBase        string
	TimeoutSeconds int
}

// Client uploads media.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithClock overrides the signing timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New constructs a client. All three credentials are required.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.CloudName = strings.TrimSpace(cfg.CloudName)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.APISecret = strings.TrimSpace(cfg.APISecret)
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "cloudinary", "cloud name, api key and api secret are required", nil)
	}
	cfg.APIBase = strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}, now: time.Now}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Owns reports whether url is already served by Cloudinary.
func (c *Client) Owns(url string) bool {
	return strings.Contains(url, "cloudinary.com")
}

// UploadImage implements assets.Storage.
func (c *Client) UploadImage(ctx context.Context, url string, opts assets.UploadOptions) (assets.Upload, error) {
	return c.upload(ctx, resourceImage, url, opts)
}

// UploadAudio implements assets.Storage.
func (c *Client) UploadAudio(ctx context.Context, dataURL string, opts assets.UploadOptions) (assets.Upload, error) {
	return c.upload(ctx, resourceVideo, dataURL, opts)
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) upload(ctx context.Context, resource, file string, opts assets.UploadOptions) (assets.Upload, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return assets.Upload{}, errors.New("cloudinary upload: file required")
	}
	params := map[string]string{"timestamp": strconv.FormatInt(c.now().Unix(), 10)}
	if folder := strings.Trim(strings.TrimSpace(opts.Folder), "/"); folder != "" {
		params["folder"] = folder
	}
	if publicID := strings.TrimSpace(opts.PublicID); publicID != "" {
		params["public_id"] = publicID
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"file":      file,
		"api_key":   c.cfg.APIKey,
		"signature": Sign(params, c.cfg.APISecret),
	}
	for k, v := range params {
		fields[k] = v
	}
	for _, name := range sortedKeys(fields) {
		if err := writer.WriteField(name, fields[name]); err != nil {
			return assets.Upload{}, fmt.Errorf("cloudinary upload: write field %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return assets.Upload{}, fmt.Errorf("cloudinary upload: close form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/upload", c.cfg.APIBase, c.cfg.CloudName, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return assets.Upload{}, fmt.Errorf("cloudinary upload: new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return assets.Upload{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	defer resp.Body.Close()
	if err := services.CheckResponse("cloudinary upload", resp); err != nil {
		return assets.Upload{}, err
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return assets.Upload{}, fmt.Errorf("cloudinary upload: read body: %w", err)
	}
	var parsed uploadResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return assets.Upload{}, fmt.Errorf("cloudinary upload: decode response: %w", err)
	}
	if parsed.Error != nil {
		return assets.Upload{}, fmt.Errorf("cloudinary upload: %s", parsed.Error.Message)
	}
	url := parsed.SecureURL
	if url == "" {
		url = parsed.URL
	}
	if url == "" {
		return assets.Upload{}, errors.New("cloudinary upload: response has no url")
	}
	return assets.Upload{URL: url}, nil
}

// Sign computes the request signature: sha1 over the alphabetically sorted
// key=value pairs joined with & and followed by the secret.
func Sign(params map[string]string, secret string) string {
	pairs := make([]string, 0, len(params))
	for _, key := range sortedKeys(params) {
		if params[key] == "" {
			continue
		}
		pairs = append(pairs, key+"="+params[key])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
