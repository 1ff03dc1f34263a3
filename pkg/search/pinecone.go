package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/technvi/voicebridge/internal/httpc"
)

// Pinecone implements Index over the Pinecone data-plane REST API.
type Pinecone struct {
	apiKey     string
	indexHost  string
	namespace  string
	httpClient *http.Client
}

// NewPinecone creates a Pinecone index client. indexHost is the
// per-index host from the Pinecone console, without a scheme.
func NewPinecone(apiKey, indexHost, namespace string) *Pinecone {
	return &Pinecone{
		apiKey:     apiKey,
		indexHost:  indexHost,
		namespace:  namespace,
		httpClient: httpc.Client,
	}
}

type pineconeQuery struct {
	Vector          []float64 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace,omitempty"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type pineconeResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float64           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
}

// Query implements Index.
func (p *Pinecone) Query(ctx context.Context, vector []float64, topK int) ([]string, error) {
	payload := pineconeQuery{
		Vector:          vector,
		TopK:            topK,
		Namespace:       p.namespace,
		IncludeMetadata: true,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("search: marshal query: %w", err)
	}

	url := fmt.Sprintf("https://%s/query", p.indexHost)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("search: create request: %w", err)
	}
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: pinecone request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("search: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: pinecone error (status %d)", resp.StatusCode)
	}

	var result pineconeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("search: parse response: %w", err)
	}

	var texts []string
	for _, m := range result.Matches {
		if text, ok := m.Metadata["text"]; ok {
			texts = append(texts, text)
		}
	}
	return texts, nil
}
