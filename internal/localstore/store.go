// Package localstore keeps saved plans in a single SQLite file for the
// command-line tool, so plans can be edited without a PostgreSQL server.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"bizplan/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS saved_plans (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	plan_items TEXT NOT NULL,
	settings TEXT NOT NULL,
	item_count INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saved_plans_created_at ON saved_plans (created_at);
`

// timeLayout is fixed width so created_at sorts correctly as TEXT.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the plan file at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create plan schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SavePlan inserts or replaces a plan. An empty ID gets a new UUID and an
// empty CreatedAt is set to now.
func (s *Store) SavePlan(ctx context.Context, p domain.SavedPlan) (domain.SavedPlan, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Name = strings.TrimSpace(p.Name)
	p.PlanItems = domain.StripCalculated(p.PlanItems)

	items, err := json.Marshal(p.PlanItems)
	if err != nil {
		return domain.SavedPlan{}, fmt.Errorf("encode plan items: %w", err)
	}
	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return domain.SavedPlan{}, fmt.Errorf("encode plan settings: %w", err)
	}

	now := time.Now().UTC().Format(timeLayout)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_plans (id, name, plan_items, settings, item_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			plan_items = excluded.plan_items,
			settings = excluded.settings,
			item_count = excluded.item_count,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, string(items), string(settings), len(p.PlanItems), p.CreatedAt.UTC().Format(timeLayout), now)
	if err != nil {
		return domain.SavedPlan{}, fmt.Errorf("save plan: %w", err)
	}
	return p, nil
}

func (s *Store) ListPlans(ctx context.Context) ([]domain.SavedPlanHeader, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, item_count
		FROM saved_plans
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	headers := make([]domain.SavedPlanHeader, 0)
	for rows.Next() {
		var (
			h       domain.SavedPlanHeader
			created string
		)
		if err := rows.Scan(&h.ID, &h.Name, &created, &h.ItemCount); err != nil {
			return nil, fmt.Errorf("scan plan header: %w", err)
		}
		if h.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at of plan %s: %w", h.ID, err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return headers, nil
}

func (s *Store) GetPlan(ctx context.Context, id string) (*domain.SavedPlan, error) {
	var (
		p                        domain.SavedPlan
		items, settings, created string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, plan_items, settings, created_at
		FROM saved_plans
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &items, &settings, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get plan %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(items), &p.PlanItems); err != nil {
		return nil, fmt.Errorf("decode plan items: %w", err)
	}
	if err := json.Unmarshal([]byte(settings), &p.Settings); err != nil {
		return nil, fmt.Errorf("decode plan settings: %w", err)
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parse created_at of plan %s: %w", id, err)
	}
	return &p, nil
}

func (s *Store) RenamePlan(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE saved_plans SET name = ?, updated_at = ? WHERE id = ?",
		strings.TrimSpace(name), time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("rename plan %s: %w", id, err)
	}
	return requireAffected(res)
}

func (s *Store) DeletePlan(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM saved_plans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete plan %s: %w", id, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
