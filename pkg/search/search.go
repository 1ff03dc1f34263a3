// Package search answers natural-language product questions from the
// product vector index. It never surfaces an error to the caller: every
// failure is converted into a spoken-friendly fallback answer, because
// the result goes straight back into a live phone conversation.
package search

import (
	"context"
	"strings"

	"github.com/technvi/voicebridge/internal/log"
)

// Fallback answers used when the pipeline cannot produce a real one.
const (
	answerError     = "Sorry, I encountered an error searching our product database."
	answerNoMatch   = "I couldn't find information about that product in our database."
	answerNoContext = "I found some matches but they don't contain usable information."
)

// Searcher is the product-search collaborator.
type Searcher interface {
	// Search answers a product query with plain text. It never fails;
	// errors degrade into an apologetic answer.
	Search(ctx context.Context, query string) string
}

// LLM is the language-model dependency of the search pipeline.
type LLM interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// Index is the vector-index dependency of the search pipeline.
type Index interface {
	// Query returns the text payloads of the nearest stored chunks.
	Query(ctx context.Context, vector []float64, topK int) ([]string, error)
}

// ProductSearch implements Searcher: embed the query, pull the nearest
// product chunks, and summarize them conversationally.
type ProductSearch struct {
	llm   LLM
	index Index
}

// New creates a ProductSearch pipeline.
func New(llm LLM, index Index) *ProductSearch {
	return &ProductSearch{llm: llm, index: index}
}

// Search implements Searcher.
func (p *ProductSearch) Search(ctx context.Context, query string) string {
	log.Info("product search", "query", query)

	vector, err := p.llm.EmbedText(ctx, query)
	if err != nil {
		log.Error("product search: embed failed", "error", err)
		return answerError
	}

	contexts, err := p.index.Query(ctx, vector, 3)
	if err != nil {
		log.Error("product search: index query failed", "error", err)
		return answerError
	}
	if len(contexts) == 0 {
		return answerNoMatch
	}

	var usable []string
	for _, c := range contexts {
		if strings.TrimSpace(c) != "" {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return answerNoContext
	}

	answer, err := p.llm.GenerateText(ctx, summaryPrompt(strings.Join(usable, "\n---\n"), query))
	if err != nil {
		log.Error("product search: summarize failed", "error", err)
		return answerError
	}
	return answer
}

// summaryPrompt turns raw catalogue rows into a conversational answer.
// The rows come from spreadsheet exports, so column values appear under
// "Unnamed" labels that the model has to decode.
func summaryPrompt(contextText, query string) string {
	return `Based on these product details:
` + contextText + `

Extract the product information from any "Unnamed" labels, then respond in a natural,
conversational tone as if you're speaking to someone. Include:
- The product name (from the first "Unnamed" field)
- The quantity (the number after a date range)
- The unit price
- The total cost

Maintain a helpful, friendly tone and address the user's question: ` + query + `
If the question asks for specific information, focus on that part in your response.
Note: IF the product number is negative or any NAN values just say it is out of stock.
Also the currency is in INR.`
}
