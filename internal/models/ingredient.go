package models

import (
	"strings"

	"gorm.io/gorm"
)

// Ingredient is immutable reference data; (name, measurement_unit) is unique.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:150;not null;uniqueIndex:idx_ingredient_name_unit;index:idx_ingredients_name" json:"name" yaml:"name"`
	MeasurementUnit string `gorm:"size:150;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit" yaml:"measurement_unit"`
	// NameLower backs case-insensitive search; SQLite's LOWER() folds ASCII only.
	NameLower string `gorm:"size:150;not null;default:'';index:idx_ingredients_name_lower" json:"-" yaml:"-"`
}

// BeforeSave keeps NameLower in step with Name.
func (i *Ingredient) BeforeSave(*gorm.DB) error {
	i.NameLower = strings.ToLower(i.Name)
	return nil
}

// TableName specifies the table name for GORM
func (Ingredient) TableName() string {
	return "ingredients"
}
