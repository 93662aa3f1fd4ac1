package types

// RecipeResponse wraps a generated recipe with its parsed views
type RecipeResponse struct {
	Recipe           Recipe   `json:"recipe"`
	IngredientsList  []string `json:"ingredientsList"`
	InstructionsList []string `json:"instructionsList"`
	Saved            bool     `json:"saved"`
}

// NewRecipeResponse builds the response for r
func NewRecipeResponse(r Recipe, saved bool) RecipeResponse {
	return RecipeResponse{
		Recipe:           r,
		IngredientsList:  r.IngredientsList(),
		InstructionsList: r.InstructionsList(),
		Saved:            saved,
	}
}

// SavedRecipesResponse lists a session's saved recipes
type SavedRecipesResponse struct {
	Recipes []Recipe `json:"recipes"`
	Count   int      `json:"count"`
	Saved   *bool    `json:"saved,omitempty"`
}

// NewSavedRecipesResponse builds the listing for recipes
func NewSavedRecipesResponse(recipes []Recipe) SavedRecipesResponse {
	if recipes == nil {
		recipes = []Recipe{}
	}
	return SavedRecipesResponse{Recipes: recipes, Count: len(recipes)}
}

// WithSaved records the saved state of the recipe a mutation targeted
func (r SavedRecipesResponse) WithSaved(saved bool) SavedRecipesResponse {
	r.Saved = &saved
	return r
}
