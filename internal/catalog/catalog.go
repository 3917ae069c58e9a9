package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bizplan/internal/domain"
	"bizplan/internal/plan"
)

var ErrDuplicateCode = errors.New("duplicate product code")

type groupDefaults struct {
	weightKg       float64
	priceUSDPerTon float64
	sellingVND     float64
}

// Beef and buffalo share the container weight and the fallback prices.
var (
	beefDefaults    = groupDefaults{weightKg: 28000, priceUSDPerTon: 4100, sellingVND: 125000}
	chickenDefaults = groupDefaults{weightKg: 22000, priceUSDPerTon: 1450, sellingVND: 48000}
	porkDefaults    = groupDefaults{weightKg: 25000, priceUSDPerTon: 2500, sellingVND: 80000}
	seafoodDefaults = groupDefaults{weightKg: 20000, priceUSDPerTon: 5000, sellingVND: 150000}
)

func defaultsFor(group string) groupDefaults {
	g := strings.ToLower(group)
	switch {
	case strings.Contains(g, "gà"):
		return chickenDefaults
	case strings.Contains(g, "lợn"), strings.Contains(g, "heo"):
		return porkDefaults
	case strings.Contains(g, "thủy hải sản"), strings.Contains(g, "hải sản"):
		return seafoodDefaults
	}
	return beefDefaults
}

// NewProduct builds a catalog entry whose container weight and default
// prices come from its product group.
func NewProduct(code, nameVI, brand, group, nameEN string) domain.Product {
	d := defaultsFor(group)
	if strings.TrimSpace(nameEN) == "" {
		nameEN = "N/A"
	}
	return domain.Product{
		Code:                   strings.TrimSpace(code),
		NameEN:                 nameEN,
		NameVI:                 strings.TrimSpace(nameVI),
		Brand:                  strings.TrimSpace(brand),
		Group:                  strings.TrimSpace(group),
		DefaultWeightKg:        d.weightKg,
		DefaultPriceUSDPerTon:  d.priceUSDPerTon,
		DefaultSellingPriceVND: d.sellingVND,
	}
}

//go:embed products.json
var builtinJSON []byte

type builtinEntry struct {
	Code           string  `json:"code"`
	NameVI         string  `json:"nameVI"`
	Brand          string  `json:"brand"`
	Group          string  `json:"group"`
	NameEN         string  `json:"nameEN"`
	PriceUSDPerTon float64 `json:"priceUSDPerTon"`
}

// Builtin returns the catalog shipped with the binary.
func Builtin() ([]domain.Product, error) {
	var entries []builtinEntry
	if err := json.Unmarshal(builtinJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode builtin catalog: %w", err)
	}
	products := make([]domain.Product, 0, len(entries))
	for _, e := range entries {
		p := NewProduct(e.Code, e.NameVI, e.Brand, e.Group, e.NameEN)
		if e.PriceUSDPerTon > 0 {
			p.DefaultPriceUSDPerTon = e.PriceUSDPerTon
		}
		products = append(products, p)
	}
	return products, nil
}

func codeKey(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// CheckUnique reports the first code that appears twice, ignoring case.
func CheckUnique(products []domain.Product) error {
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		key := codeKey(p.Code)
		if key == "" {
			return errors.New("product code is required")
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateCode, p.Code)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Catalog is an immutable, code-indexed product list.
type Catalog struct {
	products []domain.Product
	index    map[string]int
}

func New(products []domain.Product) (*Catalog, error) {
	if err := CheckUnique(products); err != nil {
		return nil, err
	}
	c := &Catalog{
		products: append([]domain.Product(nil), products...),
		index:    make(map[string]int, len(products)),
	}
	for i, p := range c.products {
		c.index[codeKey(p.Code)] = i
	}
	return c, nil
}

// Default is the builtin catalog.
func Default() (*Catalog, error) {
	products, err := Builtin()
	if err != nil {
		return nil, err
	}
	return New(products)
}

func (c *Catalog) Len() int { return len(c.products) }

func (c *Catalog) Products() []domain.Product {
	return append([]domain.Product(nil), c.products...)
}

func (c *Catalog) ByCode(code string) (domain.Product, bool) {
	i, ok := c.index[codeKey(code)]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Lookup resolves a free-text name the same way plan items are resolved.
func (c *Catalog) Lookup(name string) (domain.Product, bool) {
	i := plan.MatchProduct(c.products, name)
	if i < 0 {
		return domain.Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Select(f plan.Filter) []domain.Product {
	var out []domain.Product
	for _, p := range c.products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
