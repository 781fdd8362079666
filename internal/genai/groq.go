package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultGroqBaseURL = "https://api.groq.com"

// Groq calls the OpenAI-compatible chat completions endpoint
type Groq struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGroq creates a Groq text client
func NewGroq(baseURL, apiKey, model string, httpClient *http.Client) *Groq {
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Groq{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Name returns the provider name
func (g *Groq) Name() string {
	return "groq"
}

// GenerateText returns the first choice's message content
func (g *Groq) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", ErrNoProvider
	}

	body := chatRequest{
		Model:          g.model,
		Temperature:    0.7,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	if system != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: system})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: prompt})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/openai/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	res, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("groq: read response: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil && res.StatusCode < 300 {
		return "", fmt.Errorf("groq: decode response: %w", err)
	}
	if res.StatusCode >= 300 || out.Error != nil {
		msg := strings.TrimSpace(string(raw))
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", &APIError{Provider: "groq", StatusCode: res.StatusCode, Message: msg}
	}

	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
