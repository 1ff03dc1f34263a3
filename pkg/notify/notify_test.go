package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeGen struct {
	text string
	err  error
}

func (f *fakeGen) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.text, f.err
}

type fakeUploader struct {
	url       string
	err       error
	filenames []string
}

func (f *fakeUploader) UploadPDF(ctx context.Context, filename string, pdf []byte) (string, error) {
	f.filenames = append(f.filenames, filename)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeShortener struct {
	err       error
	shortened []string
}

func (f *fakeShortener) Shorten(ctx context.Context, url string) (string, error) {
	f.shortened = append(f.shortened, url)
	if f.err != nil {
		return "", f.err
	}
	return "https://short.example.com/x", nil
}

type fakeMessenger struct {
	templates []templateSend
	texts     []string
	err       error
}

type templateSend struct {
	recipient string
	docURL    string
	webURL    string
}

func (f *fakeMessenger) SendTemplate(ctx context.Context, recipient, docURL, webURL string) error {
	f.templates = append(f.templates, templateSend{recipient: recipient, docURL: docURL, webURL: webURL})
	return f.err
}

func (f *fakeMessenger) SendText(ctx context.Context, recipient, text string) error {
	f.texts = append(f.texts, text)
	return f.err
}

func TestGenerateInvoice(t *testing.T) {
	t.Run("generated text returned", func(t *testing.T) {
		p := NewPipeline(&fakeGen{text: "INVOICE\nPanel x2"}, &fakeUploader{}, &fakeShortener{}, &fakeMessenger{})

		if got := p.GenerateInvoice(context.Background(), "transcript"); got != "INVOICE\nPanel x2" {
			t.Errorf("unexpected invoice: %q", got)
		}
	})

	t.Run("generation failure degrades to thank-you", func(t *testing.T) {
		p := NewPipeline(&fakeGen{err: errors.New("model down")}, &fakeUploader{}, &fakeShortener{}, &fakeMessenger{})

		if got := p.GenerateInvoice(context.Background(), "transcript"); got != "Thank you for your call." {
			t.Errorf("unexpected fallback: %q", got)
		}
	})
}

func TestRenderAndLink(t *testing.T) {
	t.Run("short url preferred", func(t *testing.T) {
		up := &fakeUploader{url: "https://storage.example.com/billings-data/invoice.pdf"}
		p := NewPipeline(&fakeGen{}, up, &fakeShortener{}, &fakeMessenger{})

		got, err := p.RenderAndLink(context.Background(), "invoice text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "https://short.example.com/x" {
			t.Errorf("expected the shortened url, got %q", got)
		}
		if len(up.filenames) != 1 || !strings.HasPrefix(up.filenames[0], "invoice_") {
			t.Errorf("unexpected pdf filename: %v", up.filenames)
		}
	})

	t.Run("shortener failure falls back to long url", func(t *testing.T) {
		up := &fakeUploader{url: "https://storage.example.com/billings-data/invoice.pdf"}
		p := NewPipeline(&fakeGen{}, up, &fakeShortener{err: errors.New("quota exceeded")}, &fakeMessenger{})

		got, err := p.RenderAndLink(context.Background(), "invoice text")
		if err != nil {
			t.Fatalf("the long url still works: %v", err)
		}
		if got != up.url {
			t.Errorf("expected the storage url, got %q", got)
		}
	})

	t.Run("upload failure surfaces", func(t *testing.T) {
		p := NewPipeline(&fakeGen{}, &fakeUploader{err: errors.New("bucket gone")}, &fakeShortener{}, &fakeMessenger{})

		if _, err := p.RenderAndLink(context.Background(), "invoice text"); err == nil {
			t.Error("expected an error when upload fails")
		}
	})
}

func TestSendLink(t *testing.T) {
	t.Run("scheme stripped for the template", func(t *testing.T) {
		m := &fakeMessenger{}
		sh := &fakeShortener{err: errors.New("unused")}
		p := NewPipeline(&fakeGen{}, &fakeUploader{}, sh, m)

		if err := p.SendLink(context.Background(), "+15550001111", "https://short.example.com/doc"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(m.templates) != 1 {
			t.Fatalf("expected one template send, got %d", len(m.templates))
		}
		sent := m.templates[0]
		if sent.docURL != "short.example.com/doc" {
			t.Errorf("scheme should be stripped: %q", sent.docURL)
		}
		if strings.HasPrefix(sent.webURL, "https://") {
			t.Errorf("scheme should be stripped from the web url too: %q", sent.webURL)
		}
		if !strings.Contains(sent.webURL, "phonenumber=+15550001111") {
			t.Errorf("registration link should carry the caller's number: %q", sent.webURL)
		}
	})

	t.Run("registration link shortened when possible", func(t *testing.T) {
		m := &fakeMessenger{}
		p := NewPipeline(&fakeGen{}, &fakeUploader{}, &fakeShortener{}, m)

		if err := p.SendLink(context.Background(), "+15550001111", "https://doc.example.com/x"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.templates[0].webURL != "short.example.com/x" {
			t.Errorf("expected the shortened registration link: %q", m.templates[0].webURL)
		}
	})
}

func TestSendText(t *testing.T) {
	m := &fakeMessenger{}
	p := NewPipeline(&fakeGen{}, &fakeUploader{}, &fakeShortener{}, m)

	if err := p.SendText(context.Background(), "+15550001111", "Thank you for your call."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.texts) != 1 || m.texts[0] != "Thank you for your call." {
		t.Errorf("text not delivered: %v", m.texts)
	}
}
