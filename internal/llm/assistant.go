package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"bizplan/internal/domain"
	"bizplan/internal/plan"
)

const (
	ActionUpdateProduct = "update_product_property"
	ActionBulkUpdate    = "bulk_update_products"
	ActionAddProduct    = "add_product_to_plan"
	ActionUpdateSetting = "update_general_setting"
	ActionRemoveProduct = "remove_product_from_plan"
)

// ActionArgs is the union of every action's arguments.
type ActionArgs struct {
	ProductName          string   `json:"product_name"`
	PropertyName         string   `json:"property_name"`
	NewValue             *float64 `json:"new_value"`
	FilterProperty       string   `json:"filter_property"`
	FilterValue          string   `json:"filter_value"`
	TargetProperty       string   `json:"target_property"`
	UpdateType           string   `json:"update_type"`
	UpdateValue          *float64 `json:"update_value"`
	QuantityKg           *float64 `json:"quantity_kg"`
	PriceUSDPerTon       *float64 `json:"price_usd_per_ton"`
	SellingPriceVNDPerKg *float64 `json:"selling_price_vnd_per_kg"`
	SettingName          string   `json:"setting_name"`
}

type Action struct {
	Name string     `json:"name"`
	Args ActionArgs `json:"args"`
}

// AssistantReply is what the model answers to an instruction.
type AssistantReply struct {
	Reply   string   `json:"reply"`
	Actions []Action `json:"actions"`
}

// ProductLookup resolves a catalog product by free-text name.
type ProductLookup interface {
	Lookup(name string) (domain.Product, bool)
}

// Assist asks the model to turn instruction into plan actions. The actions are
// not applied; see ApplyActions.
func (c *Client) Assist(ctx context.Context, instruction string, draft plan.Draft, products []domain.Product) (AssistantReply, error) {
	if strings.TrimSpace(instruction) == "" {
		return AssistantReply{}, fmt.Errorf("%w: instruction is empty", plan.ErrInvalidInput)
	}
	raw, err := c.generate(ctx, "interpret instruction", Request{
		System:      assistantSystemPrompt(draft, products),
		Prompt:      instruction,
		JSON:        true,
		Temperature: 0.1,
	})
	if err != nil {
		return AssistantReply{}, err
	}
	return ParseAssistantReply(raw)
}

// ParseAssistantReply decodes model output, repairing the usual LLM JSON
// defects (fences, trailing commas, unquoted keys, truncation) first.
func ParseAssistantReply(raw string) (AssistantReply, error) {
	text := stripFence(raw, "json")
	if text == "" {
		return AssistantReply{}, fmt.Errorf("parse assistant reply: empty response")
	}
	repaired, err := jsonrepair.RepairJSON(text)
	if err != nil {
		return AssistantReply{}, fmt.Errorf("repair assistant reply: %w", err)
	}
	var reply AssistantReply
	if err := json.Unmarshal([]byte(repaired), &reply); err != nil {
		return AssistantReply{}, fmt.Errorf("parse assistant reply: %w", err)
	}
	return reply, nil
}

// ApplyActions resolves each action against the draft as it stands after the
// previous ones and applies it. Actions that cannot be resolved (unknown
// product, property or setting) yield a failed outcome and change nothing.
func ApplyActions(draft plan.Draft, actions []Action, catalog ProductLookup, newID func() string) (plan.Draft, []plan.Outcome) {
	outcomes := make([]plan.Outcome, 0, len(actions))
	for _, action := range actions {
		cmd, err := resolve(action, draft, catalog, newID)
		if err != nil {
			outcomes = append(outcomes, plan.Outcome{Command: action.Name, Message: err.Error()})
			continue
		}
		var applied []plan.Outcome
		draft, applied = plan.Apply(draft, cmd)
		outcomes = append(outcomes, applied...)
	}
	return draft, outcomes
}

func resolve(action Action, draft plan.Draft, catalog ProductLookup, newID func() string) (plan.Command, error) {
	args := action.Args
	switch action.Name {
	case ActionUpdateProduct:
		item, ok := plan.FindItem(draft.Items, args.ProductName)
		if !ok {
			return nil, fmt.Errorf("product %q is not in the plan", args.ProductName)
		}
		field, err := plan.ParseField(args.PropertyName)
		if err != nil {
			return nil, err
		}
		if args.NewValue == nil {
			return nil, fmt.Errorf("new_value is required")
		}
		return plan.SetItemField{ItemID: item.ID, Field: field, Value: *args.NewValue}, nil

	case ActionBulkUpdate:
		field, err := plan.ParseField(args.TargetProperty)
		if err != nil {
			return nil, err
		}
		filter := plan.Filter{By: plan.FilterBy(strings.ToLower(strings.TrimSpace(args.FilterProperty))), Value: args.FilterValue}
		switch filter.By {
		case plan.FilterAll, plan.FilterBrand, plan.FilterGroup:
		default:
			return nil, fmt.Errorf("unknown filter %q", args.FilterProperty)
		}
		if args.UpdateValue == nil {
			return nil, fmt.Errorf("update_value is required")
		}
		return plan.BulkUpdate{Filter: filter, Field: field, Op: plan.UpdateOp(args.UpdateType), Value: *args.UpdateValue}, nil

	case ActionAddProduct:
		if catalog == nil {
			return nil, fmt.Errorf("product catalog is unavailable")
		}
		product, ok := catalog.Lookup(args.ProductName)
		if !ok {
			return nil, fmt.Errorf("product %q is not in the catalog", args.ProductName)
		}
		if args.QuantityKg == nil {
			return nil, fmt.Errorf("quantity_kg is required")
		}
		return plan.AddItem{
			ID:                   newID(),
			Product:              product,
			QuantityKg:           *args.QuantityKg,
			PriceUSDPerTon:       args.PriceUSDPerTon,
			SellingPriceVNDPerKg: args.SellingPriceVNDPerKg,
		}, nil

	case ActionUpdateSetting:
		setting, err := plan.ParseSetting(args.SettingName)
		if err != nil {
			return nil, err
		}
		if args.NewValue == nil {
			return nil, fmt.Errorf("new_value is required")
		}
		return plan.SetSetting{Setting: setting, Value: *args.NewValue}, nil

	case ActionRemoveProduct:
		item, ok := plan.FindItem(draft.Items, args.ProductName)
		if !ok {
			return nil, fmt.Errorf("product %q is not in the plan", args.ProductName)
		}
		return plan.RemoveItem{ItemID: item.ID}, nil
	}
	return nil, fmt.Errorf("unknown action %q", action.Name)
}
