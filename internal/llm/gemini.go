package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrNotConfigured is returned by every AI operation when no API key was given.
var ErrNotConfigured = errors.New("ai is not configured")

// Audio is an inline audio attachment.
type Audio struct {
	MIMEType string
	Data     []byte
}

// Request is a single generation call.
type Request struct {
	System      string
	Prompt      string
	JSON        bool
	Temperature float32
	Audio       *Audio
}

// Generator produces text for a request. Gemini is the production
// implementation; tests substitute a fake.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type Gemini struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ Generator = (*Gemini)(nil)

func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model, logger: logger}, nil
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(req.Temperature)
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	parts := []*genai.Part{{Text: req.Prompt}}
	if req.Audio != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: req.Audio.MIMEType, Data: req.Audio.Data},
		})
	}

	start := time.Now()
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		[]*genai.Content{{Role: "user", Parts: parts}},
		config,
	)
	if err != nil {
		g.logger.Warn("gemini generation failed",
			zap.String("model", g.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := result.Text()
	g.logger.Debug("gemini generation",
		zap.String("model", g.model),
		zap.Bool("json", req.JSON),
		zap.Bool("audio", req.Audio != nil),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}
