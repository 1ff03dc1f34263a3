// Package notify turns a call transcript into an invoice-style summary
// and delivers it to the caller over WhatsApp. The pipeline is: generate
// summary text, render it as a PDF, upload the PDF to public storage,
// shorten the public URL, and send a templated message carrying the link.
// Any stage may fail; callers fall back to plain-text delivery.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/technvi/voicebridge/internal/log"
)

// Notifier is the document/notification collaborator.
type Notifier interface {
	// GenerateInvoice produces the invoice-style summary text for a
	// transcript. It never fails; errors degrade into a thank-you note.
	GenerateInvoice(ctx context.Context, transcript string) string

	// RenderAndLink renders text as a PDF, stores it, and returns a
	// shareable (preferably shortened) URL.
	RenderAndLink(ctx context.Context, text string) (string, error)

	// SendLink delivers a document link to the recipient via the
	// templated message channel.
	SendLink(ctx context.Context, recipient, url string) error

	// SendText delivers plain text to the recipient.
	SendText(ctx context.Context, recipient, text string) error
}

// TextGenerator produces the summary text.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Uploader stores a rendered PDF and returns its public URL.
type Uploader interface {
	UploadPDF(ctx context.Context, filename string, pdf []byte) (string, error)
}

// Shortener shortens a public URL.
type Shortener interface {
	Shorten(ctx context.Context, url string) (string, error)
}

// Messenger delivers WhatsApp messages.
type Messenger interface {
	SendTemplate(ctx context.Context, recipient, docURL, webURL string) error
	SendText(ctx context.Context, recipient, text string) error
}

// Pipeline implements Notifier.
type Pipeline struct {
	gen       TextGenerator
	uploader  Uploader
	shortener Shortener
	messenger Messenger

	// RegistrationURL is the web form link included in templated
	// messages, parameterized with the caller's number.
	RegistrationURL string
}

// NewPipeline creates a notification pipeline.
func NewPipeline(gen TextGenerator, uploader Uploader, shortener Shortener, messenger Messenger) *Pipeline {
	return &Pipeline{
		gen:             gen,
		uploader:        uploader,
		shortener:       shortener,
		messenger:       messenger,
		RegistrationURL: "https://technvi.example.com/register",
	}
}

// GenerateInvoice implements Notifier.
func (p *Pipeline) GenerateInvoice(ctx context.Context, transcript string) string {
	text, err := p.gen.GenerateText(ctx, invoicePrompt(transcript))
	if err != nil {
		log.Error("invoice generation failed", "error", err)
		return "Thank you for your call."
	}
	return text
}

// RenderAndLink implements Notifier.
func (p *Pipeline) RenderAndLink(ctx context.Context, text string) (string, error) {
	pdf, err := renderPDF(text)
	if err != nil {
		return "", fmt.Errorf("notify: render pdf: %w", err)
	}

	filename := fmt.Sprintf("invoice_%s_%s.pdf", time.Now().Format("20060102150405"), uuid.NewString()[:8])
	publicURL, err := p.uploader.UploadPDF(ctx, filename, pdf)
	if err != nil {
		return "", fmt.Errorf("notify: upload pdf: %w", err)
	}

	short, err := p.shortener.Shorten(ctx, publicURL)
	if err != nil {
		// The long URL still works.
		log.Warn("url shortening failed, using full url", "error", err)
		return publicURL, nil
	}
	return short, nil
}

// SendLink implements Notifier.
func (p *Pipeline) SendLink(ctx context.Context, recipient, url string) error {
	webURL := fmt.Sprintf("%s/?phonenumber=%s", strings.TrimRight(p.RegistrationURL, "/"), recipient)
	if short, err := p.shortener.Shorten(ctx, webURL); err == nil {
		webURL = short
	}

	// The message template rejects schemes in its parameters.
	docURL := strings.TrimPrefix(url, "https://")
	webURL = strings.TrimPrefix(webURL, "https://")

	return p.messenger.SendTemplate(ctx, recipient, docURL, webURL)
}

// SendText implements Notifier.
func (p *Pipeline) SendText(ctx context.Context, recipient, text string) error {
	return p.messenger.SendText(ctx, recipient, text)
}

// invoicePrompt asks the model for a WhatsApp-friendly invoice-style
// summary of the inquired products and any appointments.
func invoicePrompt(transcript string) string {
	today := time.Now().Format("02 January 2006")
	return `You are a helpful assistant.

Based on the following CALL TRANSCRIPT & DATABASE QUERIES, summarize the user's *inquired products*
into a WhatsApp-style readable invoice-like format.

IMPORTANT NOTES:
- The customer has only inquired about the items, not purchased them.
- Format output like a clean product invoice, with quantity, unit price, total price per item (if available).
- If quantity or price is not available, don't show the item in the invoice.
- At the end, add a line with the Total Payable Amount summing only the items with valid total prices.
- ALWAYS include a separate and prominent section clearly showing APPOINTMENT details if present.
- Look for information under "APPOINTMENT BOOKING", "APPOINTMENT SUMMARY", or "CALENDAR QUERY" sections.
- Keep the tone polite and informative, with proper line breaks for PDF conversion.
- Include today's date as ` + today + `.
- If no transcript is available, just say "Thank you for the call".
- Do not include currency symbols. Just use INR.

Here is the input:

` + transcript
}
