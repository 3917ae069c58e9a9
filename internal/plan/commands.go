package plan

import (
	"fmt"
	"strings"

	"bizplan/internal/domain"
)

// Draft is the raw, editable state of a plan: items without trusted
// Calculated data plus the settings snapshot.
type Draft struct {
	Items    []domain.PlanLineItem `json:"planItems"`
	Settings domain.PlanSettings   `json:"settings"`
}

func (d Draft) clone() Draft {
	items := make([]domain.PlanLineItem, len(d.Items))
	copy(items, d.Items)
	return Draft{Items: items, Settings: d.Settings}
}

// Outcome reports what a single command did.
type Outcome struct {
	Command  string `json:"command"`
	OK       bool   `json:"ok"`
	Affected int    `json:"affected"`
	Message  string `json:"message"`
}

// Command is a typed edit of a Draft. Commands only touch UserInput and
// settings.
type Command interface {
	Name() string
	apply(d *Draft) Outcome
}

// Apply runs cmds in order against a copy of d.
func Apply(d Draft, cmds ...Command) (Draft, []Outcome) {
	next := d.clone()
	outcomes := make([]Outcome, 0, len(cmds))
	for _, cmd := range cmds {
		out := cmd.apply(&next)
		out.Command = cmd.Name()
		outcomes = append(outcomes, out)
	}
	return next, outcomes
}

func failed(format string, args ...any) Outcome {
	return Outcome{Message: fmt.Sprintf(format, args...)}
}

func indexOf(items []domain.PlanLineItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

type SetItemField struct {
	ItemID string
	Field  Field
	Value  float64
}

func (SetItemField) Name() string { return "set_item_field" }

func (c SetItemField) apply(d *Draft) Outcome {
	idx := indexOf(d.Items, c.ItemID)
	if idx < 0 {
		return failed("item %q not found", c.ItemID)
	}
	if _, ok := fieldSpecs[c.Field]; !ok {
		return failed("unknown field %d", int(c.Field))
	}
	d.Items[idx].UserInput = c.Field.Set(d.Items[idx].UserInput, c.Value)
	return Outcome{OK: true, Affected: 1, Message: fmt.Sprintf("%s of %s set to %v", c.Field, d.Items[idx].ID, c.Value)}
}

type FilterBy string

const (
	FilterAll   FilterBy = "all"
	FilterBrand FilterBy = "brand"
	FilterGroup FilterBy = "group"
)

type Filter struct {
	By    FilterBy
	Value string
}

func (f Filter) Match(p domain.Product) bool {
	switch f.By {
	case FilterAll:
		return true
	case FilterBrand:
		return strings.EqualFold(strings.TrimSpace(p.Brand), strings.TrimSpace(f.Value))
	case FilterGroup:
		return strings.EqualFold(strings.TrimSpace(p.Group), strings.TrimSpace(f.Value))
	}
	return false
}

type UpdateOp string

const (
	OpSet         UpdateOp = "set_value"
	OpPctIncrease UpdateOp = "percentage_increase"
	OpPctDecrease UpdateOp = "percentage_decrease"
	OpAbsIncrease UpdateOp = "absolute_increase"
	OpAbsDecrease UpdateOp = "absolute_decrease"
)

func (op UpdateOp) Eval(current, value float64) (float64, bool) {
	switch op {
	case OpSet:
		return value, true
	case OpPctIncrease:
		return current * (1 + value/100), true
	case OpPctDecrease:
		return current * (1 - value/100), true
	case OpAbsIncrease:
		return current + value, true
	case OpAbsDecrease:
		return current - value, true
	}
	return current, false
}

type BulkUpdate struct {
	Filter Filter
	Field  Field
	Op     UpdateOp
	Value  float64
}

func (BulkUpdate) Name() string { return "bulk_update" }

func (c BulkUpdate) apply(d *Draft) Outcome {
	if _, ok := fieldSpecs[c.Field]; !ok {
		return failed("unknown field %d", int(c.Field))
	}
	if _, ok := c.Op.Eval(0, 0); !ok {
		return failed("unknown update type %q", c.Op)
	}
	affected := 0
	for i := range d.Items {
		if !c.Filter.Match(d.Items[i].Product) {
			continue
		}
		next, _ := c.Op.Eval(c.Field.Get(d.Items[i].UserInput), c.Value)
		d.Items[i].UserInput = c.Field.Set(d.Items[i].UserInput, next)
		affected++
	}
	if affected == 0 {
		return failed("no items match %s = %q", c.Filter.By, c.Filter.Value)
	}
	return Outcome{OK: true, Affected: affected, Message: fmt.Sprintf("%s updated on %d items", c.Field, affected)}
}

type SetSetting struct {
	Setting Setting
	Value   float64
}

func (SetSetting) Name() string { return "set_setting" }

func (c SetSetting) apply(d *Draft) Outcome {
	if _, ok := settingSpecs[c.Setting]; !ok {
		return failed("unknown setting %d", int(c.Setting))
	}
	d.Settings = c.Setting.Set(d.Settings, c.Value)
	return Outcome{OK: true, Message: fmt.Sprintf("%s set to %v", c.Setting, c.Value)}
}

// AddItem appends a new line item. Nil prices fall back to the product defaults.
type AddItem struct {
	ID                   string
	Product              domain.Product
	QuantityKg           float64
	PriceUSDPerTon       *float64
	SellingPriceVNDPerKg *float64
}

func (AddItem) Name() string { return "add_item" }

func (c AddItem) apply(d *Draft) Outcome {
	if strings.TrimSpace(c.ID) == "" {
		return failed("item id is required")
	}
	if indexOf(d.Items, c.ID) >= 0 {
		return failed("item %q already exists", c.ID)
	}
	price := c.Product.DefaultPriceUSDPerTon
	if c.PriceUSDPerTon != nil {
		price = *c.PriceUSDPerTon
	}
	selling := c.Product.DefaultSellingPriceVND
	if c.SellingPriceVNDPerKg != nil {
		selling = *c.SellingPriceVNDPerKg
	}
	d.Items = append(d.Items, NewLineItem(c.Product, c.ID, c.QuantityKg, price, selling))
	return Outcome{OK: true, Affected: 1, Message: fmt.Sprintf("%s added", DisplayName(c.Product))}
}

type RemoveItem struct {
	ItemID string
}

func (RemoveItem) Name() string { return "remove_item" }

func (c RemoveItem) apply(d *Draft) Outcome {
	idx := indexOf(d.Items, c.ItemID)
	if idx < 0 {
		return failed("item %q not found", c.ItemID)
	}
	removed := d.Items[idx]
	d.Items = append(d.Items[:idx:idx], d.Items[idx+1:]...)
	return Outcome{OK: true, Affected: 1, Message: fmt.Sprintf("%s removed", DisplayName(removed.Product))}
}
