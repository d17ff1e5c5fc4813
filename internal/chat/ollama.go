package chat

import (
	"context"
	"net/http"
	"strings"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2"
	ollamaPreamble     = "You are a civil engineering expert assistant. "
)

// Ollama talks to a local Ollama server through its generate endpoint.
type Ollama struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Prompt flattens a conversation into a single transcript ending with an
// open assistant turn.
func Prompt(messages []Message) string {
	var b strings.Builder
	b.WriteString(ollamaPreamble)
	for _, m := range messages {
		switch m.Role {
		case User:
			b.WriteString("User: " + m.Content + "\n")
		case Assistant:
			b.WriteString("Assistant: " + m.Content + "\n")
		}
	}
	b.WriteString("Assistant: ")
	return b.String()
}

func (c *Ollama) Complete(ctx context.Context, messages []Message) (string, error) {
	req := generateRequest{
		Model:  or(c.Model, DefaultOllamaModel),
		Prompt: Prompt(messages),
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	var resp generateResponse
	url := strings.TrimRight(or(c.BaseURL, DefaultOllamaURL), "/") + "/api/generate"
	if err := postJSON(ctx, client, url, nil, req, &resp); err != nil {
		return "", err
	}
	if resp.Response == "" {
		return "", ErrBadResponse
	}
	return resp.Response, nil
}
