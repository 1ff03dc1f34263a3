package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/technvi/voicebridge/internal/httpc"
)

// Bucket that holds rendered invoices. Objects are publicly readable so
// the WhatsApp link works without authentication.
const invoiceBucket = "billings-data"

// Storage implements Uploader against a Supabase-style storage REST API.
type Storage struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewStorage creates a storage uploader. baseURL is the project URL
// (e.g. https://xyz.supabase.co).
func NewStorage(baseURL, serviceKey string) *Storage {
	return &Storage{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: httpc.Client,
	}
}

// UploadPDF implements Uploader. It returns the public object URL.
func (s *Storage) UploadPDF(ctx context.Context, filename string, pdf []byte) (string, error) {
	if s.baseURL == "" {
		return "", fmt.Errorf("notify: storage not configured")
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, invoiceBucket, filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(pdf))
	if err != nil {
		return "", fmt.Errorf("notify: create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("notify: upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("notify: upload error (status %d): %s", resp.StatusCode, string(body))
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, invoiceBucket, filename), nil
}
