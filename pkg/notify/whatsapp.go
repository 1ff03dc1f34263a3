package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/technvi/voicebridge/internal/httpc"
	"github.com/technvi/voicebridge/internal/log"
)

// Name of the approved WhatsApp template carrying a document link and a
// registration link.
const invoiceTemplate = "pdf_regi_template"

// Plivo implements Messenger against the Plivo messages API.
type Plivo struct {
	authID     string
	authToken  string
	srcNumber  string
	httpClient *http.Client
}

// NewPlivo creates a Plivo WhatsApp messenger. srcNumber is the
// WhatsApp-enabled sender number.
func NewPlivo(authID, authToken, srcNumber string) *Plivo {
	return &Plivo{
		authID:     authID,
		authToken:  authToken,
		srcNumber:  srcNumber,
		httpClient: httpc.Client,
	}
}

type templateParam struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type templateComponent struct {
	Type       string          `json:"type"`
	Parameters []templateParam `json:"parameters"`
}

type messageTemplate struct {
	Name       string              `json:"name"`
	Language   string              `json:"language"`
	Components []templateComponent `json:"components"`
}

type messageRequest struct {
	Src      string           `json:"src"`
	Dst      string           `json:"dst"`
	Type     string           `json:"type"`
	Text     string           `json:"text,omitempty"`
	Template *messageTemplate `json:"template,omitempty"`
}

// SendTemplate implements Messenger.
func (p *Plivo) SendTemplate(ctx context.Context, recipient, docURL, webURL string) error {
	req := messageRequest{
		Src:  p.srcNumber,
		Dst:  recipient,
		Type: "whatsapp",
		Template: &messageTemplate{
			Name:     invoiceTemplate,
			Language: "en",
			Components: []templateComponent{{
				Type: "body",
				Parameters: []templateParam{
					{Type: "text", Text: docURL},
					{Type: "text", Text: webURL},
				},
			}},
		},
	}
	return p.send(ctx, req)
}

// SendText implements Messenger.
func (p *Plivo) SendText(ctx context.Context, recipient, text string) error {
	return p.send(ctx, messageRequest{
		Src:  p.srcNumber,
		Dst:  recipient,
		Type: "whatsapp",
		Text: text,
	})
}

func (p *Plivo) send(ctx context.Context, msg messageRequest) error {
	if p.authID == "" || p.authToken == "" {
		return fmt.Errorf("notify: messaging not configured")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: marshal message: %w", err)
	}

	url := fmt.Sprintf("https://api.plivo.com/v1/Account/%s/Message/", p.authID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("notify: create message request: %w", err)
	}
	req.SetBasicAuth(p.authID, p.authToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: message request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: message error (status %d): %s", resp.StatusCode, string(body))
	}

	log.Info("whatsapp message sent", "recipient", msg.Dst, "templated", msg.Template != nil)
	return nil
}
