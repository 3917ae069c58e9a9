package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bizplan/internal/domain"

	"github.com/jackc/pgx/v5"
)

// SavePlan stores raw items and settings only. Calculated figures are always
// rebuilt on load.
func (r *Repository) SavePlan(ctx context.Context, p domain.SavedPlan) (domain.SavedPlan, error) {
	items, err := json.Marshal(domain.StripCalculated(p.PlanItems))
	if err != nil {
		return domain.SavedPlan{}, fmt.Errorf("encode plan items: %w", err)
	}
	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return domain.SavedPlan{}, fmt.Errorf("encode plan settings: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO saved_plans (id, name, plan_items, settings, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			plan_items = EXCLUDED.plan_items,
			settings = EXCLUDED.settings,
			updated_at = NOW()
		RETURNING id::text, name, plan_items, settings, created_at
	`, p.ID, strings.TrimSpace(p.Name), items, settings, p.CreatedAt)

	saved, err := scanSavedPlan(row)
	if err != nil {
		return domain.SavedPlan{}, fmt.Errorf("save plan: %w", err)
	}
	return saved, nil
}

func (r *Repository) ListPlans(ctx context.Context) ([]domain.SavedPlanHeader, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, created_at, jsonb_array_length(plan_items)
		FROM saved_plans
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	headers := make([]domain.SavedPlanHeader, 0)
	for rows.Next() {
		var h domain.SavedPlanHeader
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedAt, &h.ItemCount); err != nil {
			return nil, fmt.Errorf("scan plan header: %w", err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return headers, nil
}

func (r *Repository) GetPlan(ctx context.Context, id string) (*domain.SavedPlan, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, name, plan_items, settings, created_at
		FROM saved_plans
		WHERE id = $1
	`, id)
	p, err := scanSavedPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get plan %s: %w", id, err)
	}
	return &p, nil
}

func (r *Repository) RenamePlan(ctx context.Context, id, name string) error {
	cmd, err := r.pool.Exec(ctx,
		"UPDATE saved_plans SET name = $2, updated_at = NOW() WHERE id = $1",
		id, strings.TrimSpace(name),
	)
	if err != nil {
		return fmt.Errorf("rename plan %s: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeletePlan(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM saved_plans WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete plan %s: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSavedPlan(row pgx.Row) (domain.SavedPlan, error) {
	var (
		p        domain.SavedPlan
		items    []byte
		settings []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &items, &settings, &p.CreatedAt); err != nil {
		return domain.SavedPlan{}, err
	}
	if err := json.Unmarshal(items, &p.PlanItems); err != nil {
		return domain.SavedPlan{}, fmt.Errorf("decode plan items: %w", err)
	}
	if err := json.Unmarshal(settings, &p.Settings); err != nil {
		return domain.SavedPlan{}, fmt.Errorf("decode plan settings: %w", err)
	}
	return p, nil
}
