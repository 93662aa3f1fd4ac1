package service

import (
	"context"
	"time"

	"github.com/pageza/pantry-chef/backend/internal/types"
)

// Prompt is a system/user message pair sent to a text model
type Prompt struct {
	System string
	User   string
}

// TextGenerator produces structured output from a prompt by decoding the
// model's JSON answer into out.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt Prompt, out any) error
}

// ImageGenerator produces an image reference (data URI or URL) for a dish
type ImageGenerator interface {
	GenerateRecipeImage(ctx context.Context, dishName, description string) (string, error)
}

// ImageUploader stores image bytes and returns their public URL
type ImageUploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// ChefServiceInterface is the generation gateway used by the HTTP layer
type ChefServiceInterface interface {
	SuggestRecipe(ctx context.Context, userIngredients string) (*types.Recipe, error)
	SuggestSubstitution(ctx context.Context, missingIngredient string, availableIngredients []string) (*types.Substitution, error)
}

// SessionServiceInterface issues and validates anonymous session tokens
type SessionServiceInterface interface {
	IssueToken() (token string, sessionID string, expiresAt time.Time, err error)
	ValidateToken(token string) (*types.SessionClaims, error)
}

// Observer receives generation outcomes
type Observer interface {
	GenerationFinished(operation string, err error, elapsed time.Duration)
	ImageEnriched(ok bool)
}

type nopObserver struct{}

func (nopObserver) GenerationFinished(string, error, time.Duration) {}
func (nopObserver) ImageEnriched(bool)                              {}
