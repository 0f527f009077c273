package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OpenAICompatibleProvider talks to any chat-completions compatible endpoint.
// All three remote backends are served by this one client with different base
// URLs, models and pricing.
type OpenAICompatibleProvider struct {
	BaseURL      string
	APIKey       string
	Model        string
	CostPerToken float64
	// Confidence is the static self-reported confidence attached to
	// responses from this backend.
	Confidence float64
	Client     *http.Client
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Invoke sends one chat completion request.
func (p *OpenAICompatibleProvider) Invoke(ctx context.Context, prompt string, params Params) (*Result, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model: p.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an expert analyst providing detailed, structured analysis."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", p.Model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s returned status %d: %s", p.Model, resp.StatusCode, string(data))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%s returned an empty completion", p.Model)
	}

	return &Result{
		Content:    completion.Choices[0].Message.Content,
		Tokens:     completion.Usage.TotalTokens,
		Cost:       float64(completion.Usage.TotalTokens) * p.CostPerToken,
		Confidence: p.Confidence,
	}, nil
}
