package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SuggestRecipeRequest represents the request body for generating a recipe
type SuggestRecipeRequest struct {
	UserIngredients string `json:"userIngredients" binding:"required,min=3"`
}

// SuggestSubstitutionRequest represents the request body for a substitution
type SuggestSubstitutionRequest struct {
	MissingIngredient    string         `json:"missingIngredient" binding:"required,min=2"`
	AvailableIngredients IngredientList `json:"availableIngredients"`
}

// IngredientList accepts either a JSON array of strings or a single
// comma-separated string.
type IngredientList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *IngredientList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = cleanIngredients(items)
		return nil
	}

	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("availableIngredients must be a string or an array of strings")
	}
	if raw == nil {
		*l = IngredientList{}
		return nil
	}
	*l = ParseIngredientList(*raw)
	return nil
}

// ParseIngredientList splits a comma-separated list, trimming entries and
// dropping empty ones.
func ParseIngredientList(raw string) IngredientList {
	return cleanIngredients(strings.Split(raw, ","))
}

func cleanIngredients(items []string) IngredientList {
	out := IngredientList{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
