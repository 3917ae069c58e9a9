package service

import (
	"errors"
	"fmt"

	"bizplan/internal/catalog"
	"bizplan/internal/plan"
)

// CommandSpec is the wire form of a plan edit. Type selects which of the
// other fields are read.
type CommandSpec struct {
	Type string `json:"type"`

	ItemID  string  `json:"itemId,omitempty"`
	Field   string  `json:"field,omitempty"`
	Setting string  `json:"setting,omitempty"`
	Value   float64 `json:"value"`

	FilterBy    string `json:"filterBy,omitempty"`
	FilterValue string `json:"filterValue,omitempty"`
	Op          string `json:"op,omitempty"`

	ProductCode          string   `json:"productCode,omitempty"`
	ProductName          string   `json:"productName,omitempty"`
	QuantityKg           float64  `json:"quantityKg,omitempty"`
	PriceUSDPerTon       *float64 `json:"priceUSDPerTon,omitempty"`
	SellingPriceVNDPerKg *float64 `json:"sellingPriceVNDPerKg,omitempty"`
}

// Command turns the wire form into a typed command. Products for add_item are
// resolved by code first, then by name.
func (c CommandSpec) Command(cat *catalog.Catalog, newID func() string) (plan.Command, error) {
	switch c.Type {
	case plan.SetItemField{}.Name():
		field, err := plan.ParseField(c.Field)
		if err != nil {
			return nil, err
		}
		return plan.SetItemField{ItemID: c.ItemID, Field: field, Value: c.Value}, nil

	case plan.BulkUpdate{}.Name():
		field, err := plan.ParseField(c.Field)
		if err != nil {
			return nil, err
		}
		by := plan.FilterBy(c.FilterBy)
		if by == "" {
			by = plan.FilterAll
		}
		op := plan.UpdateOp(c.Op)
		if _, ok := op.Eval(0, 0); !ok {
			return nil, fmt.Errorf("unknown op %q", c.Op)
		}
		return plan.BulkUpdate{Filter: plan.Filter{By: by, Value: c.FilterValue}, Field: field, Op: op, Value: c.Value}, nil

	case plan.SetSetting{}.Name():
		setting, err := plan.ParseSetting(c.Setting)
		if err != nil {
			return nil, err
		}
		return plan.SetSetting{Setting: setting, Value: c.Value}, nil

	case plan.AddItem{}.Name():
		product, ok := cat.ByCode(c.ProductCode)
		if !ok {
			product, ok = cat.Lookup(c.ProductName)
		}
		if !ok {
			return nil, fmt.Errorf("product %q not found in catalog", c.ProductCode+c.ProductName)
		}
		return plan.AddItem{
			ID:                   newID(),
			Product:              product,
			QuantityKg:           c.QuantityKg,
			PriceUSDPerTon:       c.PriceUSDPerTon,
			SellingPriceVNDPerKg: c.SellingPriceVNDPerKg,
		}, nil

	case plan.RemoveItem{}.Name():
		if c.ItemID == "" {
			return nil, errors.New("itemId is required")
		}
		return plan.RemoveItem{ItemID: c.ItemID}, nil
	}
	return nil, fmt.Errorf("unknown command type %q", c.Type)
}
