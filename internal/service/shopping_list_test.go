package service

import (
	"testing"

	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAggregateShoppingList(t *testing.T) {
	rows := []models.ShoppingListLine{
		{Name: "sugar", MeasurementUnit: "g", Amount: 100},
		{Name: "salt", MeasurementUnit: "g", Amount: 2},
		{Name: "Eggs", MeasurementUnit: "pcs", Amount: 2},
		{Name: "salt", MeasurementUnit: "g", Amount: 3},
		{Name: "salt", MeasurementUnit: "pinch", Amount: 1},
		{Name: "eggs", MeasurementUnit: "pcs", Amount: 1},
	}

	got := AggregateShoppingList(rows)

	assert.Equal(t, []models.ShoppingListLine{
		{Name: "Eggs", MeasurementUnit: "pcs", Amount: 2},
		{Name: "eggs", MeasurementUnit: "pcs", Amount: 1},
		{Name: "salt", MeasurementUnit: "g", Amount: 5},
		{Name: "salt", MeasurementUnit: "pinch", Amount: 1},
		{Name: "sugar", MeasurementUnit: "g", Amount: 100},
	}, got)
}

func TestAggregateShoppingListEmpty(t *testing.T) {
	assert.Empty(t, AggregateShoppingList(nil))
}

func TestRenderShoppingList(t *testing.T) {
	text := RenderShoppingList([]models.ShoppingListLine{
		{Name: "flour", MeasurementUnit: "g", Amount: 500},
		{Name: "milk", MeasurementUnit: "ml", Amount: 250},
	})
	assert.Equal(t, "flour (g) - 500\nmilk (ml) - 250\n", text)
}
