package chat

import (
	"context"
	"net/http"
	"strings"
)

const (
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel = "deepseek/deepseek-v3-base:free"
	DefaultAppURL          = "http://localhost:3000"
	AppTitle               = "CiviAI - Civil Engineering Assistant"
)

const SystemPrompt = `You are a highly knowledgeable Civil Engineering AI Assistant. Your expertise covers:
- Structural engineering and analysis
- Construction materials and methods
- Project planning and management
- Building codes and standards
- Environmental considerations
- Cost estimation and quantity surveying
- Quality control and safety protocols
- Geotechnical engineering
- Transportation engineering
- Water resources engineering

Provide detailed, technical, and accurate responses while maintaining clarity and professionalism. Use relevant engineering terms, standards, and calculations when appropriate.`

// OpenRouter talks to an OpenAI compatible chat completions API.
type OpenRouter struct {
	APIKey     string
	Model      string
	BaseURL    string
	Referer    string
	HTTPClient *http.Client
}

type completionRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens"`
	TopP             float64   `json:"top_p"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	PresencePenalty  float64   `json:"presence_penalty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *OpenRouter) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.APIKey == "" {
		return "", ErrNotConfigured
	}
	req := completionRequest{
		Model:       or(c.Model, DefaultOpenRouterModel),
		Messages:    append([]Message{{Role: System, Content: SystemPrompt}}, messages...),
		Temperature: 0.7,
		MaxTokens:   2000,
		TopP:        0.9,
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.APIKey)
	header.Set("HTTP-Referer", or(c.Referer, DefaultAppURL))
	header.Set("X-Title", AppTitle)

	var resp completionResponse
	url := strings.TrimRight(or(c.BaseURL, DefaultOpenRouterURL), "/") + "/chat/completions"
	if err := postJSON(ctx, c.client(), url, header, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrBadResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenRouter) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
