package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/AntDavi/translation-server/internal/core"
	"github.com/AntDavi/translation-server/internal/domain"
)

const defaultGeminiModel = "gemini-2.0-flash"

var ErrEmptyTranslation = errors.New("empty translation")

// GenerateContentFunc matches genai's Models.GenerateContent.
type GenerateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini translates through the Gemini API.
type Gemini struct {
	generate GenerateContentFunc
	model    string
}

var _ core.Translator = (*Gemini)(nil)

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return NewGeminiWith(client.Models.GenerateContent, model), nil
}

// NewGeminiWith builds a Gemini translator over an arbitrary generate call.
func NewGeminiWith(generate GenerateContentFunc, model string) *Gemini {
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{generate: generate, model: model}
}

func (g *Gemini) Translate(ctx context.Context, text string, from, to domain.Language) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0),
		SystemInstruction: genai.NewContentFromText(systemPrompt(from, to), genai.RoleUser),
	}
	resp, err := g.generate(ctx, g.model, []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	out := strings.TrimSpace(responseText(resp))
	if out == "" {
		log.Warn().Str("module", "translate.gemini").Str("from", string(from)).Str("to", string(to)).Msg("empty response")
		return "", ErrEmptyTranslation
	}
	return out, nil
}

func systemPrompt(from, to domain.Language) string {
	return fmt.Sprintf(
		"You translate short spoken captions from %s (%s) to %s (%s). "+
			"Reply with the translation only, without quotes, notes or explanations.",
		from.DisplayName(), from, to.DisplayName(), to,
	)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
