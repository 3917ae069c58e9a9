package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bizplan/internal/domain"
	"bizplan/internal/plan"
)

// Client runs the plan-specific AI tasks on top of a Generator. A Client
// built with a nil Generator answers every call with ErrNotConfigured.
type Client struct {
	gen    Generator
	logger *zap.Logger
}

func New(gen Generator, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{gen: gen, logger: logger}
}

func (c *Client) Enabled() bool {
	return c != nil && c.gen != nil
}

func (c *Client) generate(ctx context.Context, task string, req Request) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	text, err := c.gen.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", task, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: empty response", task)
	}
	c.logger.Info("ai task completed", zap.String("task", task), zap.Int("chars", len(text)))
	return text, nil
}

// Analyze asks for a Markdown narrative about the plan's income statement.
func (c *Client) Analyze(ctx context.Context, summary plan.Summary) (string, error) {
	return c.generate(ctx, "analyze plan", Request{
		Prompt:      analysisPrompt(summary),
		Temperature: 0.4,
	})
}

// Transcribe returns a speaker-labelled transcript of a meeting recording.
func (c *Client) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", fmt.Errorf("%w: audio is empty", plan.ErrInvalidInput)
	}
	if !strings.HasPrefix(audio.MIMEType, "audio/") {
		return "", fmt.Errorf("%w: unsupported audio type %q", plan.ErrInvalidInput, audio.MIMEType)
	}
	return c.generate(ctx, "transcribe audio", Request{Prompt: transcriptionPrompt, Audio: &audio})
}

// MeetingMinutes turns a transcript into an HTML minutes document.
func (c *Client) MeetingMinutes(ctx context.Context, transcription string, details domain.MeetingDetails) (string, error) {
	if strings.TrimSpace(transcription) == "" {
		return "", fmt.Errorf("%w: transcription is empty", plan.ErrInvalidInput)
	}
	html, err := c.generate(ctx, "generate minutes", Request{Prompt: minutesPrompt(transcription, details)})
	if err != nil {
		return "", err
	}
	return stripFence(html, "html"), nil
}

// RegenerateMinutes applies an edit request to previously generated minutes.
func (c *Client) RegenerateMinutes(ctx context.Context, transcription string, details domain.MeetingDetails, previousHTML, editRequest string) (string, error) {
	if strings.TrimSpace(editRequest) == "" {
		return "", fmt.Errorf("%w: edit request is empty", plan.ErrInvalidInput)
	}
	html, err := c.generate(ctx, "regenerate minutes", Request{
		Prompt: regeneratePrompt(transcription, details, previousHTML, editRequest),
	})
	if err != nil {
		return "", err
	}
	return stripFence(html, "html"), nil
}

// stripFence removes a surrounding ```lang fence if the model added one.
func stripFence(text, lang string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "```"+lang); ok {
		text = rest
	} else if rest, ok := strings.CutPrefix(text, "```"); ok {
		text = rest
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
