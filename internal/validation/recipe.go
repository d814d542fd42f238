package validation

import (
	"fmt"

	"foodgram/internal/models"
)

// IngredientAmount is one requested (ingredient id, amount) pair.
type IngredientAmount struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"required"`
}

// ValidateIngredients enforces a non-empty list, no repeated ids and amounts
// within 1..amountMax. Existence of the ids is checked by the caller.
func ValidateIngredients(items []IngredientAmount, amountMax int) error {
	if len(items) == 0 {
		return models.NewValidationError("ingredients: at least one ingredient is required")
	}
	seen := make(map[uint]struct{}, len(items))
	for i, it := range items {
		if it.ID == 0 {
			return models.NewValidationError(fmt.Sprintf("ingredients[%d].id is required", i))
		}
		if _, dup := seen[it.ID]; dup {
			return models.NewValidationError(fmt.Sprintf("ingredients: ingredient %d is listed more than once", it.ID))
		}
		seen[it.ID] = struct{}{}
		if it.Amount < 1 || it.Amount > amountMax {
			return models.NewValidationError(fmt.Sprintf("ingredients[%d].amount must be between 1 and %d", i, amountMax))
		}
	}
	return nil
}

// ValidateCookingTime enforces 1..max minutes.
func ValidateCookingTime(minutes, max int) error {
	if minutes < 1 || minutes > max {
		return models.NewValidationError(fmt.Sprintf("cooking_time must be between 1 and %d", max))
	}
	return nil
}

// IngredientIDs returns the ids in request order.
func IngredientIDs(items []IngredientAmount) []uint {
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
