package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/technvi/voicebridge/internal/httpc"
)

const cleanURIEndpoint = "https://cleanuri.com/api/v1/shorten"

// CleanURI implements Shortener against the cleanuri.com API.
type CleanURI struct {
	httpClient *http.Client
}

// NewCleanURI creates a CleanURI shortener.
func NewCleanURI() *CleanURI {
	return &CleanURI{httpClient: httpc.Client}
}

// Shorten implements Shortener.
func (c *CleanURI) Shorten(ctx context.Context, longURL string) (string, error) {
	form := url.Values{"url": {longURL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cleanURIEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("notify: create shorten request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("notify: shorten request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("notify: shorten error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		ResultURL string `json:"result_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("notify: parse shorten response: %w", err)
	}
	if result.ResultURL == "" {
		return "", fmt.Errorf("notify: empty shorten result")
	}
	return result.ResultURL, nil
}
