package types

import (
	"strings"
	"unicode"
)

// Recipe is a generated dish. Multi-line fields are newline-delimited text
// blobs; use IngredientsList and InstructionsList for the parsed views.
type Recipe struct {
	ID                string `json:"id" binding:"required"`
	DishName          string `json:"dishName" binding:"required"`
	Description       string `json:"description"`
	IngredientsNeeded string `json:"ingredientsNeeded"`
	Instructions      string `json:"instructions"`
	RecipeImageURI    string `json:"recipeImageUri,omitempty"`
}

// IngredientsList returns the non-empty trimmed lines of IngredientsNeeded
func (r Recipe) IngredientsList() []string {
	return ParseLines(r.IngredientsNeeded)
}

// InstructionsList returns the ordered steps of Instructions
func (r Recipe) InstructionsList() []string {
	return ParseLines(r.Instructions)
}

// HasImage reports whether the recipe carries an image reference
func (r Recipe) HasImage() bool {
	return r.RecipeImageURI != ""
}

// ParseLines splits text on newlines, trims each line and drops empty ones.
// Order is preserved and no other normalization is applied.
func ParseLines(text string) []string {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single dash.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "recipe"
	}
	return slug
}
