package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"duel/internal/models"
)

// GeminiGenerator implements Generator against the Gemini API.
type GeminiGenerator struct {
	client    *genai.Client
	model     string
	wordCount int
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string, wordCount int) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:    client,
		model:     model,
		wordCount: wordCount,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, topic, language, difficulty string) ([]models.VocabWord, error) {
	prompt := fmt.Sprintf(
		"Generate %d %s-level %s vocabulary words about %q for a language learner. "+
			"Respond with only a JSON array of objects with keys "+
			"\"term\" (the word in %s), \"translation\" (English), and \"example\" (a short sentence in %s).",
		g.wordCount, difficulty, language, topic, language, language)

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("generate vocabulary: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("empty gemini response")
	}

	text, err := result.Text()
	if err != nil {
		return nil, fmt.Errorf("extract gemini response text: %w", err)
	}

	words, err := parseVocabResponse(text)
	if err != nil {
		return nil, err
	}
	return words, nil
}

// parseVocabResponse tolerates the model wrapping the JSON in a fenced code
// block or surrounding prose.
func parseVocabResponse(text string) ([]models.VocabWord, error) {
	text = strings.TrimSpace(text)
	if start := strings.Index(text, "["); start >= 0 {
		if end := strings.LastIndex(text, "]"); end > start {
			text = text[start : end+1]
		}
	}

	var words []models.VocabWord
	if err := json.Unmarshal([]byte(text), &words); err != nil {
		return nil, fmt.Errorf("parse vocabulary response: %w", err)
	}
	return words, nil
}
