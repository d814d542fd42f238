package validation

import (
	"strings"
	"testing"

	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "Tomato-Basil-42", false},
		{"Exactly Min Length", "abcdefg1", false},
		{"Exactly Max Length", strings.Repeat("x", 127) + "1", false},
		{"Too Short", "short1", true},
		{"Too Long", strings.Repeat("x", 129), true},
		{"Entirely Numeric", "9876543210", true},
		{"Common", "Password1", true},
		{"Contains Username", "my-chefbob-secret", true},
		{"Contains Email Local Part", "xx-cook.mail-xx", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, "chefbob", "cook.mail@example.org")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "chef.bob+1@home", false},
		{"Unicode Letters", "повар", false},
		{"Empty", "", true},
		{"Space", "chef bob", true},
		{"Illegal Char", "chef#1", true},
		{"Reserved", "Me", true},
		{"Too Long", strings.Repeat("a", 151), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type signup struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=150,username"`
	Tags     []int  `json:"tags" validate:"min=1"`
}

func TestValidatorReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(signup{Email: "nope", Username: "bad name"})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeValidation))
	assert.Contains(t, err.Error(), "email must be a valid email address")
	assert.Contains(t, err.Error(), "username may contain only letters")
	assert.Contains(t, err.Error(), "tags must contain at least 1 item(s)")

	assert.NoError(t, v.Validate(signup{Email: "a@b.co", Username: "chef", Tags: []int{1}}))
}

func TestValidateIngredients(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		items   []IngredientAmount
		wantErr string
	}{
		{"empty", nil, "at least one ingredient"},
		{"duplicate", []IngredientAmount{{ID: 1, Amount: 1}, {ID: 1, Amount: 2}}, "more than once"},
		{"zero amount", []IngredientAmount{{ID: 1, Amount: 0}}, "between 1 and 100"},
		{"amount over max", []IngredientAmount{{ID: 1, Amount: 101}}, "between 1 and 100"},
		{"missing id", []IngredientAmount{{Amount: 1}}, "id is required"},
		{"valid", []IngredientAmount{{ID: 1, Amount: 1}, {ID: 2, Amount: 100}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIngredients(tt.items, 100)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCookingTime(t *testing.T) {
	assert.Error(t, ValidateCookingTime(0, 600))
	assert.NoError(t, ValidateCookingTime(1, 600))
	assert.NoError(t, ValidateCookingTime(600, 600))
	assert.Error(t, ValidateCookingTime(601, 600))
}

func TestIngredientIDs(t *testing.T) {
	assert.Equal(t, []uint{3, 1}, IngredientIDs([]IngredientAmount{{ID: 3}, {ID: 1}}))
}
