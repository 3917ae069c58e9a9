package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"bizplan/internal/catalog"
	"bizplan/internal/domain"
	"bizplan/internal/excel"
	"bizplan/internal/llm"
	"bizplan/internal/plan"
	"bizplan/internal/repository"
)

var ErrCatalogUnavailable = errors.New("product catalog storage is not configured")

type CatalogStore interface {
	ListProducts(ctx context.Context, filter repository.ProductListFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, code string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	PatchProduct(ctx context.Context, code string, input repository.ProductPatchInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, code string) error
	ReplaceProducts(ctx context.Context, products []domain.Product) error
	UpsertProducts(ctx context.Context, products []domain.Product) (int, int, error)
	ListAllProducts(ctx context.Context) ([]domain.Product, error)
	CountProducts(ctx context.Context) (int, error)
}

// PlanStore is implemented by the PostgreSQL repository and by localstore.
type PlanStore interface {
	SavePlan(ctx context.Context, p domain.SavedPlan) (domain.SavedPlan, error)
	ListPlans(ctx context.Context) ([]domain.SavedPlanHeader, error)
	GetPlan(ctx context.Context, id string) (*domain.SavedPlan, error)
	RenamePlan(ctx context.Context, id, name string) error
	DeletePlan(ctx context.Context, id string) error
}

type Service struct {
	products CatalogStore
	plans    PlanStore
	ai       *llm.Client
	logger   *zap.Logger
}

// New wires the service. products may be nil, in which case the built-in
// catalog serves lookups and catalog editing is unavailable.
func New(products CatalogStore, plans PlanStore, ai *llm.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ai == nil {
		ai = llm.New(nil, logger)
	}
	return &Service{products: products, plans: plans, ai: ai, logger: logger}
}

func (s *Service) AIEnabled() bool {
	return s.ai.Enabled()
}

func (s *Service) requireCatalog() error {
	if s.products == nil {
		return ErrCatalogUnavailable
	}
	return nil
}

func (s *Service) ListProducts(ctx context.Context, filter repository.ProductListFilter) ([]domain.Product, error) {
	if err := s.requireCatalog(); err != nil {
		return nil, err
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Brand = strings.TrimSpace(filter.Brand)
	filter.Group = strings.TrimSpace(filter.Group)
	return s.products.ListProducts(ctx, filter)
}

func (s *Service) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	if err := s.requireCatalog(); err != nil {
		return nil, err
	}
	return s.products.GetProduct(ctx, strings.TrimSpace(code))
}

// ProductInput creates a catalog entry. Zero defaults are filled from the
// product group.
type ProductInput struct {
	Code                   string   `json:"code"`
	NameVI                 string   `json:"nameVI"`
	NameEN                 string   `json:"nameEN"`
	Brand                  string   `json:"brand"`
	Group                  string   `json:"group"`
	DefaultWeightKg        *float64 `json:"defaultWeightKg"`
	DefaultPriceUSDPerTon  *float64 `json:"defaultPriceUSDPerTon"`
	DefaultSellingPriceVND *float64 `json:"defaultSellingPriceVND"`
}

func (in ProductInput) Product() domain.Product {
	p := catalog.NewProduct(in.Code, in.NameVI, in.Brand, in.Group, in.NameEN)
	if in.DefaultWeightKg != nil {
		p.DefaultWeightKg = *in.DefaultWeightKg
	}
	if in.DefaultPriceUSDPerTon != nil {
		p.DefaultPriceUSDPerTon = *in.DefaultPriceUSDPerTon
	}
	if in.DefaultSellingPriceVND != nil {
		p.DefaultSellingPriceVND = *in.DefaultSellingPriceVND
	}
	return p
}

func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (domain.Product, error) {
	if err := s.requireCatalog(); err != nil {
		return domain.Product{}, err
	}
	p := input.Product()
	if err := validateProduct(p); err != nil {
		return domain.Product{}, err
	}
	return s.products.CreateProduct(ctx, p)
}

func (s *Service) PatchProduct(ctx context.Context, code string, input repository.ProductPatchInput) (*domain.Product, error) {
	if err := s.requireCatalog(); err != nil {
		return nil, err
	}
	for name, v := range map[string]*float64{
		"defaultWeightKg":        input.DefaultWeightKg,
		"defaultPriceUSDPerTon":  input.DefaultPriceUSDPerTon,
		"defaultSellingPriceVND": input.DefaultSellingPriceVND,
	} {
		if v != nil && *v < 0 {
			return nil, fmt.Errorf("%w: %s cannot be negative", plan.ErrInvalidInput, name)
		}
	}
	if input.NameVI != nil && strings.TrimSpace(*input.NameVI) == "" {
		return nil, fmt.Errorf("%w: nameVI cannot be empty", plan.ErrInvalidInput)
	}
	return s.products.PatchProduct(ctx, strings.TrimSpace(code), input)
}

func (s *Service) DeleteProduct(ctx context.Context, code string) error {
	if err := s.requireCatalog(); err != nil {
		return err
	}
	return s.products.DeleteProduct(ctx, strings.TrimSpace(code))
}

// SeedCatalog loads the built-in catalog into an empty store. It returns the
// number of products written, 0 when the store already had data.
func (s *Service) SeedCatalog(ctx context.Context) (int, error) {
	if err := s.requireCatalog(); err != nil {
		return 0, err
	}
	count, err := s.products.CountProducts(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	builtin, err := catalog.Builtin()
	if err != nil {
		return 0, err
	}
	if err := s.products.ReplaceProducts(ctx, builtin); err != nil {
		return 0, err
	}
	s.logger.Info("catalog seeded", zap.Int("products", len(builtin)))
	return len(builtin), nil
}

// ReplaceCatalog swaps the whole catalog for products.
func (s *Service) ReplaceCatalog(ctx context.Context, products []domain.Product) error {
	if err := s.requireCatalog(); err != nil {
		return err
	}
	if len(products) == 0 {
		return fmt.Errorf("%w: catalog cannot be empty", plan.ErrInvalidInput)
	}
	if err := catalog.CheckUnique(products); err != nil {
		return err
	}
	for _, p := range products {
		if err := validateProduct(p); err != nil {
			return err
		}
	}
	return s.products.ReplaceProducts(ctx, products)
}

type ImportResult struct {
	FileName  string `json:"fileName"`
	TotalRows int    `json:"totalRows"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
}

// ImportCatalog upserts products parsed from an xlsx or csv upload.
func (s *Service) ImportCatalog(ctx context.Context, fileName string, r io.Reader) (ImportResult, error) {
	if err := s.requireCatalog(); err != nil {
		return ImportResult{}, err
	}
	products, err := excel.ParseCatalogRows(fileName, r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", plan.ErrInvalidInput, err)
	}
	created, updated, err := s.products.UpsertProducts(ctx, products)
	if err != nil {
		return ImportResult{}, err
	}
	s.logger.Info("catalog imported",
		zap.String("file", fileName),
		zap.Int("rows", len(products)),
		zap.Int("created", created),
		zap.Int("updated", updated),
	)
	return ImportResult{FileName: fileName, TotalRows: len(products), Created: created, Updated: updated}, nil
}

func (s *Service) ExportCatalog(ctx context.Context) ([]domain.Product, error) {
	if s.products == nil {
		return catalog.Builtin()
	}
	return s.products.ListAllProducts(ctx)
}

// Catalog returns the lookup index used when items are added by code or name.
func (s *Service) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	if s.products == nil {
		return catalog.Default()
	}
	products, err := s.products.ListAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(products)
}

func validateProduct(p domain.Product) error {
	var errs []error
	if strings.TrimSpace(p.Code) == "" {
		errs = append(errs, errors.New("code is required"))
	}
	if strings.TrimSpace(p.NameVI) == "" {
		errs = append(errs, fmt.Errorf("product %s: nameVI is required", p.Code))
	}
	if p.DefaultWeightKg < 0 || p.DefaultPriceUSDPerTon < 0 || p.DefaultSellingPriceVND < 0 {
		errs = append(errs, fmt.Errorf("product %s: defaults cannot be negative", p.Code))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", plan.ErrInvalidInput, errors.Join(errs...))
}
