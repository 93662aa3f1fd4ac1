package service

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxImagePromptBytes is the longest prompt sent to the image endpoint
const maxImagePromptBytes = 900

const recipeSystemPrompt = `You are a helpful and creative cooking assistant. The user will input a list of ingredients they currently have. Your job is to recommend a dish they can cook using mostly those ingredients. Provide the name of the dish, a short description, and a simple recipe. Avoid suggesting dishes that require too many ingredients the user doesn't have.

If a key ingredient is missing, suggest a close substitute. Be creative but realistic.

Respond only with JSON in the following structure:
{
    "dishName": "Name of the dish",
    "description": "A short description of the dish",
    "ingredientsNeeded": "One ingredient per line, including substitutions if needed",
    "instructions": "One step per line, in order"
}`

const substitutionSystemPrompt = `You are a helpful cooking assistant. Suggest a suitable substitute for an ingredient the user is missing and give a brief reason for your suggestion.

Respond only with JSON in the following structure:
{
    "suggestedSubstitution": "suggested substitute",
    "reason": "why it is a good substitute"
}`

// RecipePrompt builds the prompt asking for a dish based on the user's ingredients
func RecipePrompt(userIngredients string) Prompt {
	return Prompt{
		System: recipeSystemPrompt,
		User:   fmt.Sprintf("Input (User's ingredients): %s", userIngredients),
	}
}

// SubstitutionPrompt builds the prompt asking for a replacement ingredient
func SubstitutionPrompt(missingIngredient string, availableIngredients []string) Prompt {
	return Prompt{
		System: substitutionSystemPrompt,
		User: fmt.Sprintf(
			"A user is missing the ingredient %q. Suggest a suitable substitute ingredient. Consider the user's available ingredients: %s. Provide a brief reason for your suggestion.",
			missingIngredient, formatAvailable(availableIngredients)),
	}
}

// formatAvailable renders each ingredient followed by ", ", or "None"
func formatAvailable(ingredients []string) string {
	if len(ingredients) == 0 {
		return "None"
	}
	var b strings.Builder
	for _, ingredient := range ingredients {
		b.WriteString(ingredient)
		b.WriteString(", ")
	}
	return b.String()
}

// ImagePrompt builds the prompt for a recipe card image
func ImagePrompt(dishName, description string) string {
	prompt := fmt.Sprintf(
		"Generate a vibrant and appetizing image of a dish called %q. The dish is described as: %q. Focus on a clean, well-lit presentation suitable for a recipe card.",
		dishName, description)
	return truncateUTF8(prompt, maxImagePromptBytes)
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
