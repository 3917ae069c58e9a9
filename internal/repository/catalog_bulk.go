package repository

import (
	"context"
	"fmt"
	"strings"

	"bizplan/internal/catalog"
	"bizplan/internal/domain"
)

// ReplaceProducts swaps the whole catalog in one transaction.
func (r *Repository) ReplaceProducts(ctx context.Context, products []domain.Product) error {
	if err := catalog.CheckUnique(products); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace products tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	for _, p := range products {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			strings.TrimSpace(p.Code),
			p.NameEN,
			strings.TrimSpace(p.NameVI),
			p.Brand,
			p.Group,
			p.DefaultWeightKg,
			p.DefaultPriceUSDPerTon,
			p.DefaultSellingPriceVND,
		); err != nil {
			return fmt.Errorf("insert product %q during replace: %w", p.Code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace products tx: %w", err)
	}
	return nil
}

// UpsertProducts merges imported rows by code and reports how many rows were
// created and updated.
func (r *Repository) UpsertProducts(ctx context.Context, products []domain.Product) (int, int, error) {
	if len(products) == 0 {
		return 0, 0, nil
	}
	if err := catalog.CheckUnique(products); err != nil {
		return 0, 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback(ctx)

	created := 0
	updated := 0
	for _, p := range products {
		var inserted bool
		if err := tx.QueryRow(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (code) DO UPDATE SET
				name_en = EXCLUDED.name_en,
				name_vi = EXCLUDED.name_vi,
				brand = EXCLUDED.brand,
				product_group = EXCLUDED.product_group,
				default_weight_kg = EXCLUDED.default_weight_kg,
				default_price_usd_per_ton = EXCLUDED.default_price_usd_per_ton,
				default_selling_price_vnd = EXCLUDED.default_selling_price_vnd,
				updated_at = NOW()
			RETURNING (xmax = 0)
		`,
			strings.TrimSpace(p.Code),
			p.NameEN,
			strings.TrimSpace(p.NameVI),
			p.Brand,
			p.Group,
			p.DefaultWeightKg,
			p.DefaultPriceUSDPerTon,
			p.DefaultSellingPriceVND,
		).Scan(&inserted); err != nil {
			if isUniqueViolation(err) {
				return 0, 0, fmt.Errorf("%w: %s", catalog.ErrDuplicateCode, p.Code)
			}
			return 0, 0, fmt.Errorf("upsert product %q: %w", p.Code, err)
		}
		if inserted {
			created++
		} else {
			updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit import tx: %w", err)
	}
	return created, updated, nil
}

func (r *Repository) ListAllProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY product_group ASC, code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate all products: %w", err)
	}
	return products, nil
}

// CountProducts lets the server decide whether to seed the builtin catalog.
func (r *Repository) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
