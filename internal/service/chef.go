package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pageza/pantry-chef/backend/internal/types"
	"go.uber.org/zap"
)

// Operation names reported to the Observer
const (
	OpSuggestRecipe       = "suggest_recipe"
	OpSuggestSubstitution = "suggest_substitution"
)

// ChefService turns pantry ingredients into recipes and substitutions
type ChefService struct {
	text     TextGenerator
	images   ImageGenerator
	log      *zap.Logger
	observer Observer
	ids      *idClock
}

// ChefOption configures a ChefService
type ChefOption func(*ChefService)

// WithImageGenerator enables best-effort image enrichment of recipes
func WithImageGenerator(g ImageGenerator) ChefOption {
	return func(s *ChefService) {
		s.images = g
	}
}

// WithObserver reports generation outcomes to o
func WithObserver(o Observer) ChefOption {
	return func(s *ChefService) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewChefService creates a new ChefService instance
func NewChefService(text TextGenerator, log *zap.Logger, opts ...ChefOption) *ChefService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &ChefService{
		text:     text,
		log:      log.Named("chef"),
		observer: nopObserver{},
		ids:      &idClock{now: time.Now},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// recipeOutput is the model's answer for a recipe. The multi-line fields are
// accepted either as text or as a list of lines.
type recipeOutput struct {
	DishName          string    `json:"dishName"`
	Description       string    `json:"description"`
	IngredientsNeeded multiline `json:"ingredientsNeeded"`
	Instructions      multiline `json:"instructions"`
}

type multiline string

func (m *multiline) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*m = multiline(text)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("expected text or a list of lines")
	}
	*m = multiline(strings.Join(lines, "\n"))
	return nil
}

// SuggestRecipe asks the model for a dish that uses mostly userIngredients.
// The recipe gets a fresh unique ID and, when an image generator is
// configured, an image; image failures never fail the call.
func (s *ChefService) SuggestRecipe(ctx context.Context, userIngredients string) (recipe *types.Recipe, err error) {
	start := time.Now()
	defer func() { s.observer.GenerationFinished(OpSuggestRecipe, err, time.Since(start)) }()

	var out recipeOutput
	if err := s.text.GenerateJSON(ctx, RecipePrompt(userIngredients), &out); err != nil {
		s.log.Error("Recipe generation failed", zap.Error(err))
		return nil, transportError(err)
	}

	r := types.Recipe{
		DishName:          strings.TrimSpace(out.DishName),
		Description:       strings.TrimSpace(out.Description),
		IngredientsNeeded: strings.TrimSpace(string(out.IngredientsNeeded)),
		Instructions:      strings.TrimSpace(string(out.Instructions)),
	}
	if r.DishName == "" || r.Description == "" || r.IngredientsNeeded == "" || r.Instructions == "" {
		s.log.Warn("Model returned an incomplete recipe",
			zap.Bool("has_dish_name", r.DishName != ""),
			zap.Bool("has_description", r.Description != ""),
			zap.Bool("has_ingredients", r.IngredientsNeeded != ""),
			zap.Bool("has_instructions", r.Instructions != ""))
		return nil, incompleteError(MsgIncompleteRecipe)
	}

	if image := s.enrichImage(ctx, r.DishName, r.Description); image.OK {
		r.RecipeImageURI = image.URI
	}
	r.ID = fmt.Sprintf("%s-%d", types.Slugify(r.DishName), s.ids.next())

	s.log.Info("Recipe suggested",
		zap.String("recipe_id", r.ID),
		zap.Bool("has_image", r.HasImage()))
	return &r, nil
}

// SuggestSubstitution asks the model for a replacement for missingIngredient,
// taking the available ingredients into account.
func (s *ChefService) SuggestSubstitution(ctx context.Context, missingIngredient string, availableIngredients []string) (sub *types.Substitution, err error) {
	start := time.Now()
	defer func() { s.observer.GenerationFinished(OpSuggestSubstitution, err, time.Since(start)) }()

	var out types.Substitution
	if err := s.text.GenerateJSON(ctx, SubstitutionPrompt(missingIngredient, availableIngredients), &out); err != nil {
		s.log.Error("Substitution generation failed", zap.Error(err))
		return nil, transportError(err)
	}

	if strings.TrimSpace(out.SuggestedSubstitution) == "" || strings.TrimSpace(out.Reason) == "" {
		s.log.Warn("Model returned an incomplete substitution",
			zap.String("missing_ingredient", missingIngredient))
		return nil, incompleteError(MsgIncompleteSubstitution)
	}

	s.log.Info("Substitution suggested",
		zap.String("missing_ingredient", missingIngredient),
		zap.String("substitution", out.SuggestedSubstitution))
	return &out, nil
}

// ImageResult is the outcome of image enrichment. It has no error variant:
// a failed enrichment is simply not OK.
type ImageResult struct {
	URI string
	OK  bool
}

func (s *ChefService) enrichImage(ctx context.Context, dishName, description string) ImageResult {
	if s.images == nil {
		return ImageResult{}
	}

	uri, err := s.images.GenerateRecipeImage(ctx, dishName, description)
	if err != nil || uri == "" {
		s.log.Warn("Image enrichment failed, continuing without image",
			zap.String("dish", dishName),
			zap.Error(err))
		s.observer.ImageEnriched(false)
		return ImageResult{}
	}
	s.observer.ImageEnriched(true)
	return ImageResult{URI: uri, OK: true}
}

// idClock hands out strictly increasing nanosecond timestamps
type idClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func (c *idClock) next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.now().UnixNano()
	if n <= c.last {
		n = c.last + 1
	}
	c.last = n
	return n
}
