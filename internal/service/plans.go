package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bizplan/internal/domain"
	"bizplan/internal/excel"
	"bizplan/internal/plan"
	"bizplan/internal/report"
)

// Result is a recalculated plan with its plan-wide figures.
type Result struct {
	Items               []domain.PlanLineItem `json:"planItems"`
	Settings            domain.PlanSettings   `json:"settings"`
	Summary             plan.Summary          `json:"summary"`
	Totals              plan.Totals           `json:"totals"`
	DailyIndirectSalary float64               `json:"dailyIndirectSalary"`
}

// Calculate runs the two-pass recalculation. It never validates; callers
// that persist call plan.Validate first.
func Calculate(draft plan.Draft) Result {
	items := plan.Recalculate(draft.Items, draft.Settings)
	calcs := make([]domain.Calculated, len(items))
	for i, item := range items {
		calcs[i] = item.Calculated
	}
	return Result{
		Items:               items,
		Settings:            draft.Settings,
		Summary:             plan.Summarize(items),
		Totals:              plan.Aggregate(items, calcs),
		DailyIndirectSalary: draft.Settings.DailyIndirectSalary(),
	}
}

type ApplyResult struct {
	Draft    plan.Draft     `json:"draft"`
	Outcomes []plan.Outcome `json:"outcomes"`
	Result   Result         `json:"result"`
}

// ApplyCommands resolves specs against the catalog and applies them in order.
func (s *Service) ApplyCommands(ctx context.Context, draft plan.Draft, specs []CommandSpec) (ApplyResult, error) {
	if len(specs) == 0 {
		return ApplyResult{}, fmt.Errorf("%w: no commands given", plan.ErrInvalidInput)
	}
	cat, err := s.Catalog(ctx)
	if err != nil {
		return ApplyResult{}, err
	}
	cmds := make([]plan.Command, 0, len(specs))
	for i, spec := range specs {
		cmd, err := spec.Command(cat, uuid.NewString)
		if err != nil {
			return ApplyResult{}, fmt.Errorf("%w: command %d: %w", plan.ErrInvalidInput, i+1, err)
		}
		cmds = append(cmds, cmd)
	}
	next, outcomes := plan.Apply(draft, cmds...)
	return ApplyResult{Draft: next, Outcomes: outcomes, Result: Calculate(next)}, nil
}

type SavePlanInput struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Draft plan.Draft `json:"draft"`
}

// SavePlan validates and stores a draft. An empty ID creates a new plan; an
// existing ID overwrites it and keeps its creation time.
func (s *Service) SavePlan(ctx context.Context, input SavePlanInput) (domain.SavedPlan, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.SavedPlan{}, fmt.Errorf("%w: plan name is required", plan.ErrInvalidInput)
	}
	if err := plan.Validate(input.Draft.Items, input.Draft.Settings); err != nil {
		return domain.SavedPlan{}, err
	}

	saved := domain.SavedPlan{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		PlanItems: input.Draft.Items,
		Settings:  input.Draft.Settings,
	}
	if input.ID != "" {
		existing, err := s.GetPlan(ctx, input.ID)
		if err != nil {
			return domain.SavedPlan{}, err
		}
		saved.ID = existing.ID
		saved.CreatedAt = existing.CreatedAt
	}

	out, err := s.plans.SavePlan(ctx, saved)
	if err != nil {
		return domain.SavedPlan{}, err
	}
	s.logger.Info("plan saved", zap.String("id", out.ID), zap.String("name", out.Name), zap.Int("items", len(out.PlanItems)))
	return out, nil
}

// ImportPlan stores a plan exported as JSON. Its creation time is kept and a
// missing or malformed ID is replaced.
func (s *Service) ImportPlan(ctx context.Context, p domain.SavedPlan) (domain.SavedPlan, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.SavedPlan{}, fmt.Errorf("%w: plan name is required", plan.ErrInvalidInput)
	}
	if err := plan.Validate(p.PlanItems, p.Settings); err != nil {
		return domain.SavedPlan{}, err
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return s.plans.SavePlan(ctx, p)
}

func (s *Service) ListPlans(ctx context.Context) ([]domain.SavedPlanHeader, error) {
	return s.plans.ListPlans(ctx)
}

// GetPlan loads a saved plan. Its items come back without calculated data;
// use LoadPlan for a recalculated view.
func (s *Service) GetPlan(ctx context.Context, id string) (*domain.SavedPlan, error) {
	id, err := planID(id)
	if err != nil {
		return nil, err
	}
	return s.plans.GetPlan(ctx, id)
}

type LoadedPlan struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Result
}

func (s *Service) LoadPlan(ctx context.Context, id string) (LoadedPlan, error) {
	p, err := s.GetPlan(ctx, id)
	if err != nil {
		return LoadedPlan{}, err
	}
	return LoadedPlan{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		Result:    Calculate(plan.Draft{Items: p.PlanItems, Settings: p.Settings}),
	}, nil
}

func (s *Service) RenamePlan(ctx context.Context, id, name string) error {
	id, err := planID(id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: plan name is required", plan.ErrInvalidInput)
	}
	return s.plans.RenamePlan(ctx, id, name)
}

func (s *Service) DeletePlan(ctx context.Context, id string) error {
	id, err := planID(id)
	if err != nil {
		return err
	}
	if err := s.plans.DeletePlan(ctx, id); err != nil {
		return err
	}
	s.logger.Info("plan deleted", zap.String("id", id))
	return nil
}

// planID normalizes a plan ID. Anything that is not a UUID cannot exist.
func planID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", domain.ErrNotFound
	}
	return id.String(), nil
}

type ReportOptions struct {
	PlanName     string
	WithAnalysis bool
}

// WriteReport renders the HTML report for draft, optionally with the AI
// narrative.
func (s *Service) WriteReport(ctx context.Context, w io.Writer, draft plan.Draft, opts ReportOptions) error {
	result := Calculate(draft)
	reportOpts := report.Options{PlanName: opts.PlanName, GeneratedAt: time.Now()}
	if opts.WithAnalysis {
		analysis, err := s.ai.Analyze(ctx, result.Summary)
		if err != nil {
			return err
		}
		reportOpts.AnalysisMarkdown = analysis
	}
	return report.Render(w, result.Items, draft.Settings, reportOpts)
}

// WriteWorkbook exports the recalculated draft as xlsx.
func (s *Service) WriteWorkbook(w io.Writer, draft plan.Draft) error {
	result := Calculate(draft)
	return excel.WritePlan(w, result.Items, draft.Settings)
}
