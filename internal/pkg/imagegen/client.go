package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultEndpoint = "https://api.a4f.co/v1/images/generations"
	DefaultModel    = "provider-4/imagen-3.5"

	// Per-image upstream timeout. The provider occasionally stalls; a
	// bounded wait keeps the request handler from hanging.
	defaultTimeout = 25 * time.Second

	MinImages = 1
	MaxImages = 6
)

var (
	// ErrNoImagesGenerated is returned only when every upstream request
	// failed; partial failure is tolerated.
	ErrNoImagesGenerated = errors.New("no images generated")
)

// Client calls the external text-to-image provider. One upstream request is
// issued per image so a single slow or failed render never sinks the batch.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	log        *slog.Logger
}

// Options configures a provider client.
type Options struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// Image is a single generated image result.
type Image struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// NewClient creates a provider client with bounded per-request timeouts.
func NewClient(opts Options, log *slog.Logger) *Client {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &Client{
		apiKey:   opts.APIKey,
		model:    opts.Model,
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		log: log,
	}
}

// ClampCount bounds a requested image count to the supported range.
func ClampCount(n int) int {
	if n < MinImages {
		return MinImages
	}
	if n > MaxImages {
		return MaxImages
	}
	return n
}

// Generate renders count images for the prompt in parallel and returns the
// ones that succeeded. It fails only when zero images were produced; the
// error then carries the first upstream failure message when one exists.
func (c *Client) Generate(ctx context.Context, prompt string, count int) ([]Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	count = ClampCount(count)

	results := make([]*Image, count)
	errs := make([]error, count)

	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := c.generateOne(ctx, prompt, i)
			if err != nil {
				errs[i] = err
				if c.log != nil {
					c.log.Error("image generation failed", "index", i, "err", err)
				}
				return
			}
			results[i] = img
		}(i)
	}
	wg.Wait()

	images := make([]Image, 0, count)
	for _, img := range results {
		if img != nil {
			images = append(images, *img)
		}
	}

	if len(images) == 0 {
		for _, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrNoImagesGenerated, err)
			}
		}
		return nil, ErrNoImagesGenerated
	}

	return images, nil
}

func (c *Client) generateOne(ctx context.Context, prompt string, index int) (*Image, error) {
	payload := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"n":      1,
		"size":   "1024x1024",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post provider: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider error: status=%d message=%s", resp.StatusCode, upstreamErrorMessage(rawBody, resp.Status))
	}

	url, err := ExtractImageURL(rawBody)
	if err != nil {
		return nil, err
	}

	return &Image{
		ID:     fmt.Sprintf("img-%d-%d", time.Now().UnixMilli(), index),
		URL:    url,
		Prompt: prompt,
	}, nil
}

// upstreamErrorMessage digs a human-readable message out of a provider error
// body, falling back to the HTTP status line.
func upstreamErrorMessage(body []byte, fallback string) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error.Message != "" {
			return parsed.Error.Message
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return fallback
}
