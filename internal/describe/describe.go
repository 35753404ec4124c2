// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package describe asks a hosted vision model for a textual description of
// non-text media. It is an optional strategy consulted by the image
// converter; nothing in the batch pipeline requires it.
package describe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/docbatch/internal/httputil"
	"github.com/pdiddy/docbatch/pkg/types"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultTimeout   = 60 * time.Second
	defaultPerMinute = 60
	defaultUserAgent = "docbatch/0.1"

	// maxImageBytes is the largest file sent inline as a data URL.
	maxImageBytes = 20 << 20

	prompt = "Write a detailed caption for this image."
)

// ErrNotConfigured is returned by New when no model or API key is set.
var ErrNotConfigured = errors.New("describer not configured")

// Describer produces a description of the media file at path.
type Describer interface {
	Describe(ctx context.Context, path, mimeType string) (string, error)
}

// OpenAIDescriber calls an OpenAI-compatible chat completions endpoint with
// the image inlined as a data URL.
type OpenAIDescriber struct {
	client     *http.Client
	limiter    *rate.Limiter
	cfg        types.AIConfig
	maxRetries int
}

// New builds a describer from cfg. It returns ErrNotConfigured when the
// model or API key is missing so callers can run without one.
func New(cfg types.AIConfig) (*OpenAIDescriber, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}

	return &OpenAIDescriber{
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		cfg:        cfg,
		maxRetries: cfg.MaxRetries,
	}, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Describe sends the file at path to the model and returns its caption.
func (d *OpenAIDescriber) Describe(ctx context.Context, path, mimeType string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("%s is %d bytes, larger than the %d byte limit", path, len(data), maxImageBytes)
	}

	payload := chatRequest{
		Model: d.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.cfg.APIKey)
	req.Header.Set("User-Agent", d.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, d.client, req, d.maxRetries)
	if err != nil {
		return "", fmt.Errorf("describing %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("HTTP %d: decoding response: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if cr.Error != nil && cr.Error.Message != "" {
			return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, cr.Error.Message)
		}
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, d.cfg.BaseURL)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}

	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
