package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bizplan/internal/domain"
	"bizplan/internal/llm"
	"bizplan/internal/plan"
)

// Analyze returns the AI narrative for draft as Markdown.
func (s *Service) Analyze(ctx context.Context, draft plan.Draft) (string, error) {
	return s.ai.Analyze(ctx, Calculate(draft).Summary)
}

type AssistResult struct {
	Reply    string         `json:"reply"`
	Draft    plan.Draft     `json:"draft"`
	Outcomes []plan.Outcome `json:"outcomes"`
	Result   Result         `json:"result"`
}

// Assist interprets a free-text instruction and applies the resulting
// actions. A draft that would fail validation is discarded and the original
// is returned with a failed outcome.
func (s *Service) Assist(ctx context.Context, instruction string, draft plan.Draft) (AssistResult, error) {
	if !s.ai.Enabled() {
		return AssistResult{}, llm.ErrNotConfigured
	}
	cat, err := s.Catalog(ctx)
	if err != nil {
		return AssistResult{}, err
	}
	reply, err := s.ai.Assist(ctx, instruction, draft, cat.Products())
	if err != nil {
		return AssistResult{}, err
	}

	next, outcomes := llm.ApplyActions(draft, reply.Actions, cat, uuid.NewString)
	if err := plan.Validate(next.Items, next.Settings); err != nil {
		outcomes = append(outcomes, plan.Outcome{Command: "validate", Message: err.Error()})
		next = draft
	}
	s.logger.Info("assistant instruction applied",
		zap.Int("actions", len(reply.Actions)),
		zap.Int("items", len(next.Items)),
	)
	return AssistResult{Reply: reply.Reply, Draft: next, Outcomes: outcomes, Result: Calculate(next)}, nil
}

func (s *Service) Transcribe(ctx context.Context, audio llm.Audio) (string, error) {
	return s.ai.Transcribe(ctx, audio)
}

func (s *Service) MeetingMinutes(ctx context.Context, transcription string, details domain.MeetingDetails) (string, error) {
	return s.ai.MeetingMinutes(ctx, transcription, details)
}

func (s *Service) RegenerateMinutes(ctx context.Context, transcription string, details domain.MeetingDetails, previousHTML, editRequest string) (string, error) {
	return s.ai.RegenerateMinutes(ctx, transcription, details, previousHTML, editRequest)
}
