// Package seed loads reference data and generates demo content for local
// development and tests.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/repository"

	"gopkg.in/yaml.v3"
)

// IngredientFixture is one entry of the ingredient reference file.
type IngredientFixture struct {
	Name            string `yaml:"name"`
	MeasurementUnit string `yaml:"measurement_unit"`
}

// ParseIngredients decodes a YAML list of ingredients. Entries are trimmed and
// duplicates of the same (name, unit) pair collapse into one.
func ParseIngredients(r io.Reader) ([]models.Ingredient, error) {
	var fixtures []IngredientFixture
	if err := yaml.NewDecoder(r).Decode(&fixtures); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}

	seen := make(map[[2]string]struct{}, len(fixtures))
	out := make([]models.Ingredient, 0, len(fixtures))
	for i, f := range fixtures {
		name := strings.TrimSpace(f.Name)
		unit := strings.TrimSpace(f.MeasurementUnit)
		if name == "" || unit == "" {
			return nil, fmt.Errorf("ingredient #%d: name and measurement_unit are required", i+1)
		}
		if len([]rune(name)) > 150 || len([]rune(unit)) > 150 {
			return nil, fmt.Errorf("ingredient #%d (%s): value too long", i+1, name)
		}
		key := [2]string{name, unit}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return out, nil
}

// LoadIngredients reads the fixture at path and inserts the pairs not yet
// stored. Running it twice is a no-op the second time.
func LoadIngredients(ctx context.Context, repo repository.IngredientRepository, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open ingredient fixture: %w", err)
	}
	defer func() { _ = f.Close() }()

	items, err := ParseIngredients(f)
	if err != nil {
		return 0, err
	}
	return repo.UpsertMany(ctx, items)
}
