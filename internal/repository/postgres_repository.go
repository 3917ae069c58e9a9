package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bizplan/internal/catalog"
	"bizplan/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = domain.ErrNotFound

const uniqueViolation = "23505"

type ProductListFilter struct {
	Search string
	Brand  string
	Group  string
	Limit  int
	Offset int
}

type ProductPatchInput struct {
	NameEN                 *string
	NameVI                 *string
	Brand                  *string
	Group                  *string
	DefaultWeightKg        *float64
	DefaultPriceUSDPerTon  *float64
	DefaultSellingPriceVND *float64
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `
	code,
	name_en,
	name_vi,
	brand,
	product_group,
	default_weight_kg,
	default_price_usd_per_ton,
	default_selling_price_vnd
`

func (r *Repository) ListProducts(ctx context.Context, filter ProductListFilter) ([]domain.Product, error) {
	limit := normalizeLimit(filter.Limit)
	offset := normalizeOffset(filter.Offset)

	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR name_vi ILIKE '%' || $1 || '%' OR name_en ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%')
			AND ($2 = '' OR LOWER(brand) = LOWER($2))
			AND ($3 = '' OR LOWER(product_group) = LOWER($3))
		ORDER BY product_group ASC, code ASC
		LIMIT $4 OFFSET $5
	`,
		strings.TrimSpace(filter.Search),
		strings.TrimSpace(filter.Brand),
		strings.TrimSpace(filter.Group),
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE LOWER(code) = LOWER($1)
	`, strings.TrimSpace(code))
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", code, err)
	}
	return &product, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		strings.TrimSpace(p.Code),
		p.NameEN,
		strings.TrimSpace(p.NameVI),
		p.Brand,
		p.Group,
		p.DefaultWeightKg,
		p.DefaultPriceUSDPerTon,
		p.DefaultSellingPriceVND,
	)

	created, err := scanProductRow(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Product{}, fmt.Errorf("%w: %s", catalog.ErrDuplicateCode, p.Code)
		}
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (r *Repository) PatchProduct(ctx context.Context, code string, input ProductPatchInput) (*domain.Product, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin patch product tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE LOWER(code) = LOWER($1)
		FOR UPDATE
	`, strings.TrimSpace(code))
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load product for patch: %w", err)
	}

	if input.NameEN != nil {
		product.NameEN = *input.NameEN
	}
	if input.NameVI != nil {
		name := strings.TrimSpace(*input.NameVI)
		if name == "" {
			return nil, fmt.Errorf("nameVI cannot be empty")
		}
		product.NameVI = name
	}
	if input.Brand != nil {
		product.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Group != nil {
		product.Group = strings.TrimSpace(*input.Group)
	}
	if input.DefaultWeightKg != nil {
		product.DefaultWeightKg = *input.DefaultWeightKg
	}
	if input.DefaultPriceUSDPerTon != nil {
		product.DefaultPriceUSDPerTon = *input.DefaultPriceUSDPerTon
	}
	if input.DefaultSellingPriceVND != nil {
		product.DefaultSellingPriceVND = *input.DefaultSellingPriceVND
	}

	row = tx.QueryRow(ctx, `
		UPDATE products
		SET
			name_en = $2,
			name_vi = $3,
			brand = $4,
			product_group = $5,
			default_weight_kg = $6,
			default_price_usd_per_ton = $7,
			default_selling_price_vnd = $8,
			updated_at = NOW()
		WHERE code = $1
		RETURNING `+productColumns,
		product.Code,
		product.NameEN,
		product.NameVI,
		product.Brand,
		product.Group,
		product.DefaultWeightKg,
		product.DefaultPriceUSDPerTon,
		product.DefaultSellingPriceVND,
	)
	updated, err := scanProductRow(row)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit patch product tx: %w", err)
	}
	return &updated, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, code string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM products WHERE LOWER(code) = LOWER($1)", strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("delete product %s: %w", code, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProductRow(row pgx.Row) (domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.Code,
		&product.NameEN,
		&product.NameVI,
		&product.Brand,
		&product.Group,
		&product.DefaultWeightKg,
		&product.DefaultPriceUSDPerTon,
		&product.DefaultSellingPriceVND,
	); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 200
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
