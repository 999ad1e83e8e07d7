package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const notePromptPrefix = "Generate a brief and well-structured note content based on this topic or initial content: "

// ErrNoContent is returned when the model answers without any text.
var ErrNoContent = errors.New("No content generated")

// ContentGenerator drafts note content from a topic or partial text.
type ContentGenerator interface {
	GenerateNoteContent(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls a Gemini model through the Generative AI SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) GenerateNoteContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(NotePrompt(prompt)))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// NotePrompt builds the instruction sent to the model.
func NotePrompt(content string) string {
	return notePromptPrefix + content
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		// first candidate with content wins
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
