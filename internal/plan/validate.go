package plan

import (
	"errors"
	"fmt"

	"bizplan/internal/domain"
)

var ErrInvalidInput = errors.New("invalid plan input")

const maxVATRate = 100

// Validate checks raw inputs before they are stored. Recalculate never calls
// it: the calculation accepts any numbers and applies the formulas as they are.
func Validate(items []domain.PlanLineItem, settings domain.PlanSettings) error {
	var errs []error
	for _, item := range items {
		for _, field := range Fields() {
			if v := field.Get(item.UserInput); v < 0 {
				errs = append(errs, fmt.Errorf("item %s: %s cannot be negative (%v)", item.ID, field, v))
			}
		}
		if v := item.UserInput.Costs.ImportVATRate; v > maxVATRate {
			errs = append(errs, fmt.Errorf("item %s: %s cannot exceed %d (%v)", item.ID, FieldImportVATRate, maxVATRate, v))
		}
		if item.DefaultWeightKg < 0 {
			errs = append(errs, fmt.Errorf("item %s: default weight cannot be negative (%v)", item.ID, item.DefaultWeightKg))
		}
	}
	for _, setting := range Settings() {
		if v := setting.Get(settings); v < 0 {
			errs = append(errs, fmt.Errorf("%s cannot be negative (%v)", setting, v))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
}
