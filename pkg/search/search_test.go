package search

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeLLM struct {
	generateErr error
	embedErr    error
	answer      string
	prompts     []string
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.answer, nil
}

func (f *fakeLLM) EmbedText(ctx context.Context, text string) ([]float64, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float64{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	contexts []string
	err      error
	topK     int
}

func (f *fakeIndex) Query(ctx context.Context, vector []float64, topK int) ([]string, error) {
	f.topK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.contexts, nil
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("successful pipeline", func(t *testing.T) {
		llm := &fakeLLM{answer: "We stock 400W panels at 12000 INR each."}
		idx := &fakeIndex{contexts: []string{"Unnamed: Solar Panel 400W", "Unnamed: 12000"}}
		p := New(llm, idx)

		got := p.Search(ctx, "solar panel price")
		if got != "We stock 400W panels at 12000 INR each." {
			t.Errorf("unexpected answer: %q", got)
		}
		if idx.topK != 3 {
			t.Errorf("expected top 3 matches, got %d", idx.topK)
		}
		if len(llm.prompts) != 1 || !strings.Contains(llm.prompts[0], "solar panel price") {
			t.Errorf("query not woven into the prompt: %v", llm.prompts)
		}
		if !strings.Contains(llm.prompts[0], "Solar Panel 400W") {
			t.Errorf("retrieved context not woven into the prompt: %v", llm.prompts)
		}
	})

	t.Run("embed failure degrades to apology", func(t *testing.T) {
		llm := &fakeLLM{embedErr: errors.New("embedding API down")}
		p := New(llm, &fakeIndex{})

		if got := p.Search(ctx, "anything"); got != answerError {
			t.Errorf("expected the error answer, got %q", got)
		}
	})

	t.Run("index failure degrades to apology", func(t *testing.T) {
		llm := &fakeLLM{}
		p := New(llm, &fakeIndex{err: errors.New("index unreachable")})

		if got := p.Search(ctx, "anything"); got != answerError {
			t.Errorf("expected the error answer, got %q", got)
		}
	})

	t.Run("zero matches", func(t *testing.T) {
		p := New(&fakeLLM{}, &fakeIndex{contexts: []string{}})

		if got := p.Search(ctx, "nonexistent widget"); got != answerNoMatch {
			t.Errorf("expected the no-match answer, got %q", got)
		}
	})

	t.Run("only blank matches", func(t *testing.T) {
		p := New(&fakeLLM{}, &fakeIndex{contexts: []string{"", "   "}})

		if got := p.Search(ctx, "widget"); got != answerNoContext {
			t.Errorf("expected the no-context answer, got %q", got)
		}
	})

	t.Run("summarize failure degrades to apology", func(t *testing.T) {
		llm := &fakeLLM{generateErr: errors.New("generation failed")}
		p := New(llm, &fakeIndex{contexts: []string{"Unnamed: Inverter"}})

		if got := p.Search(ctx, "inverter"); got != answerError {
			t.Errorf("expected the error answer, got %q", got)
		}
	})
}
