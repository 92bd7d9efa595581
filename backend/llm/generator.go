package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mentora/backend/config"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Generator is the text-generation dependency injected into every service
// that talks to the model, so tests can substitute a scripted fake.
type Generator interface {
	// GenerateText returns plain text for a system instruction + user prompt.
	GenerateText(ctx context.Context, system, user string) (string, error)

	// GenerateJSON asks the model for output conforming to schema and
	// unmarshals it into out. A response that fails to parse is an error;
	// there is no local repair.
	GenerateJSON(ctx context.Context, system, user string, schema *genai.Schema, out interface{}) error
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

func NewGeminiGenerator(ctx context.Context, cfg *config.Config, log *zap.Logger) (*GeminiGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  cfg.GeminiModel,
		log:    log.With(zap.String("service", "gemini")),
	}, nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// Low temperature biases toward consistent structure over creative variance.
const temperature = 0.2

func (g *GeminiGenerator) newModel(system string) *genai.GenerativeModel {
	model := g.client.GenerativeModel(g.model)
	temp := float32(temperature)
	model.Temperature = &temp
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return model
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	model := g.newModel(system)

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

func (g *GeminiGenerator) GenerateJSON(ctx context.Context, system, user string, schema *genai.Schema, out interface{}) error {
	model := g.newModel(system)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return fmt.Errorf("gemini generate: %w", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("gemini returned an empty response")
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		g.log.Warn("structured output failed to parse", zap.Error(err))
		return fmt.Errorf("parse structured output: %w", err)
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}
