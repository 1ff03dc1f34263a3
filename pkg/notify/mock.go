package notify

import (
	"context"
	"sync"
)

// Mock is a mock implementation of Notifier for testing.
type Mock struct {
	mu sync.Mutex

	// Configurable behavior
	GenerateInvoiceFunc func(ctx context.Context, transcript string) string
	RenderAndLinkFunc   func(ctx context.Context, text string) (string, error)
	SendLinkFunc        func(ctx context.Context, recipient, url string) error
	SendTextFunc        func(ctx context.Context, recipient, text string) error

	// Captured calls for assertions
	Invoiced  []string
	Rendered  []string
	LinksSent []SentLink
	TextsSent []SentText
}

// SentLink records one SendLink invocation.
type SentLink struct {
	Recipient string
	URL       string
}

// SentText records one SendText invocation.
type SentText struct {
	Recipient string
	Text      string
}

// NewMock creates a new Mock notifier.
func NewMock() *Mock {
	return &Mock{}
}

// GenerateInvoice implements Notifier.
func (m *Mock) GenerateInvoice(ctx context.Context, transcript string) string {
	m.mu.Lock()
	m.Invoiced = append(m.Invoiced, transcript)
	m.mu.Unlock()

	if m.GenerateInvoiceFunc != nil {
		return m.GenerateInvoiceFunc(ctx, transcript)
	}
	return "INVOICE: " + transcript
}

// RenderAndLink implements Notifier.
func (m *Mock) RenderAndLink(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.Rendered = append(m.Rendered, text)
	m.mu.Unlock()

	if m.RenderAndLinkFunc != nil {
		return m.RenderAndLinkFunc(ctx, text)
	}
	return "https://short.example.com/abc", nil
}

// SendLink implements Notifier.
func (m *Mock) SendLink(ctx context.Context, recipient, url string) error {
	m.mu.Lock()
	m.LinksSent = append(m.LinksSent, SentLink{Recipient: recipient, URL: url})
	m.mu.Unlock()

	if m.SendLinkFunc != nil {
		return m.SendLinkFunc(ctx, recipient, url)
	}
	return nil
}

// SendText implements Notifier.
func (m *Mock) SendText(ctx context.Context, recipient, text string) error {
	m.mu.Lock()
	m.TextsSent = append(m.TextsSent, SentText{Recipient: recipient, Text: text})
	m.mu.Unlock()

	if m.SendTextFunc != nil {
		return m.SendTextFunc(ctx, recipient, text)
	}
	return nil
}
