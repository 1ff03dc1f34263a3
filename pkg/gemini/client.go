// Package gemini is a minimal REST client for the Google Generative
// Language API. It covers the two calls voicebridge needs: text
// generation (search summaries, invoice text) and query embeddings.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/technvi/voicebridge/internal/httpc"
)

// Models used by voicebridge.
const (
	GenerateModel = "gemini-1.5-flash"
	EmbedModel    = "text-embedding-004"

	baseURL = "https://generativelanguage.googleapis.com/v1beta/models"
)

// Client calls the Generative Language API over REST.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// New creates a Gemini client.
func New(apiKey string) *Client {
	return &Client{apiKey: apiKey, httpClient: httpc.Client}
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type embedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText runs one prompt through the generation model and returns
// the first candidate's text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini: API key is required")
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature": 0.4,
		},
	}

	body, err := c.post(ctx, fmt.Sprintf("%s/%s:generateContent?key=%s", baseURL, GenerateModel, c.apiKey), payload)
	if err != nil {
		return "", err
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("gemini: parse response: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("gemini: %s", result.Error.Message)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}

	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}

// EmbedText returns the embedding vector for one piece of text.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	payload := map[string]any{
		"model": "models/" + EmbedModel,
		"content": map[string]any{
			"parts": []map[string]any{
				{"text": text},
			},
		},
	}

	body, err := c.post(ctx, fmt.Sprintf("%s/%s:embedContent?key=%s", baseURL, EmbedModel, c.apiKey), payload)
	if err != nil {
		return nil, err
	}

	var result embedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("gemini: parse response: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("gemini: %s", result.Error.Message)
	}
	if len(result.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini: empty embedding")
	}

	return result.Embedding.Values, nil
}

func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini: API error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
