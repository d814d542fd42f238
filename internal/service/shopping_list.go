package service

import (
	"fmt"
	"sort"
	"strings"

	"foodgram/internal/models"
)

type shoppingKey struct {
	name string
	unit string
}

// AggregateShoppingList sums amounts per (name, measurement unit) and sorts
// the result by case-insensitive name, then name, then unit.
func AggregateShoppingList(rows []models.ShoppingListLine) []models.ShoppingListLine {
	totals := make(map[shoppingKey]int64, len(rows))
	order := make([]shoppingKey, 0, len(rows))
	for _, row := range rows {
		k := shoppingKey{name: row.Name, unit: row.MeasurementUnit}
		if _, ok := totals[k]; !ok {
			order = append(order, k)
		}
		totals[k] += row.Amount
	}

	lines := make([]models.ShoppingListLine, len(order))
	for i, k := range order {
		lines[i] = models.ShoppingListLine{Name: k.name, MeasurementUnit: k.unit, Amount: totals[k]}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name); la != lb {
			return la < lb
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.MeasurementUnit < b.MeasurementUnit
	})
	return lines
}

// RenderShoppingList writes one `<name> (<unit>) - <total>` line per entry.
func RenderShoppingList(lines []models.ShoppingListLine) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s (%s) - %d\n", l.Name, l.MeasurementUnit, l.Amount)
	}
	return b.String()
}
