// Package chat proxies conversations to a hosted or local LLM with a civil
// engineering system prompt.
package chat

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
)

type Role string

const (
	User      Role = "user"
	Assistant Role = "assistant"
	System    Role = "system"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Backend completes a conversation and returns the assistant reply.
type Backend interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotConfigured  = errors.New("chat backend not configured")
	ErrUnauthorized   = errors.New("upstream rejected credentials")
	ErrRateLimited    = errors.New("upstream rate limit reached")
	ErrUpstream       = errors.New("upstream error")
	ErrBadResponse    = errors.New("invalid response format")
)

const DefaultTimeout = 60 * time.Second

// Validate checks a conversation sent by a client. System messages are
// reserved for the backend.
func Validate(messages []Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("%w: messages array is required", ErrInvalidRequest)
	}
	for i, m := range messages {
		if m.Role != User && m.Role != Assistant {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidRequest, i, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("%w: message %d is empty", ErrInvalidRequest, i)
		}
	}
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, header http.Header, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case res.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case res.StatusCode < 200 || res.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, res.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return nil
}

// Options select and configure a Backend.
type Options struct {
	Backend         string // "openrouter", "ollama" or "none"
	OpenRouterKey   string
	OpenRouterModel string
	OpenRouterURL   string
	AppURL          string
	OllamaURL       string
	OllamaModel     string
	Timeout         time.Duration
}

// NewBackend returns the configured backend, or nil when chat is disabled
// or OpenRouter has no API key.
func NewBackend(o Options) Backend {
	client := &http.Client{Timeout: o.Timeout}
	if o.Timeout <= 0 {
		client.Timeout = DefaultTimeout
	}
	switch strings.ToLower(o.Backend) {
	case "ollama":
		return &Ollama{BaseURL: o.OllamaURL, Model: o.OllamaModel, HTTPClient: client}
	case "none", "off":
		return nil
	default:
		if o.OpenRouterKey == "" {
			return nil
		}
		return &OpenRouter{
			APIKey:     o.OpenRouterKey,
			Model:      o.OpenRouterModel,
			BaseURL:    o.OpenRouterURL,
			Referer:    o.AppURL,
			HTTPClient: client,
		}
	}
}
