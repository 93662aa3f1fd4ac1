package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pageza/pantry-chef/backend/internal/mocks"
	"github.com/pageza/pantry-chef/backend/internal/service"
	"github.com/pageza/pantry-chef/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var completeRecipe = map[string]any{
	"dishName":          "Tomato Rice",
	"description":       "A quick one-pan rice dish.",
	"ingredientsNeeded": "1 cup rice\n2 tomatoes\n\nsalt",
	"instructions":      "Chop tomatoes.\nCook rice with tomatoes.",
}

type recordingObserver struct {
	mu          sync.Mutex
	generations map[string][]error
	images      []bool
}

func (o *recordingObserver) GenerationFinished(op string, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generations == nil {
		o.generations = map[string][]error{}
	}
	o.generations[op] = append(o.generations[op], err)
}

func (o *recordingObserver) ImageEnriched(ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.images = append(o.images, ok)
}

func TestSuggestRecipe(t *testing.T) {
	text := new(mocks.MockTextGenerator)
	images := new(mocks.MockImageGenerator)
	text.On("GenerateJSON", mock.Anything, service.RecipePrompt("rice, tomatoes"), mock.Anything).Return(completeRecipe, nil)
	images.On("GenerateRecipeImage", mock.Anything, "Tomato Rice", "A quick one-pan rice dish.").Return("data:image/png;base64,AAAA", nil)

	obs := &recordingObserver{}
	svc := service.NewChefService(text, zap.NewNop(), service.WithImageGenerator(images), service.WithObserver(obs))

	recipe, err := svc.SuggestRecipe(context.Background(), "rice, tomatoes")
	require.NoError(t, err)

	assert.Equal(t, "Tomato Rice", recipe.DishName)
	assert.Equal(t, []string{"1 cup rice", "2 tomatoes", "salt"}, recipe.IngredientsList())
	assert.Equal(t, "data:image/png;base64,AAAA", recipe.RecipeImageURI)
	assert.True(t, strings.HasPrefix(recipe.ID, "tomato-rice-"), recipe.ID)
	assert.Equal(t, []error{nil}, obs.generations[service.OpSuggestRecipe])
	assert.Equal(t, []bool{true}, obs.images)
	text.AssertExpectations(t)
	images.AssertExpectations(t)
}

func TestSuggestRecipeAcceptsLineArrays(t *testing.T) {
	text := new(mocks.MockTextGenerator)
	text.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(`{
		"dishName": "Omelette",
		"description": "Fluffy eggs.",
		"ingredientsNeeded": ["2 eggs", "butter"],
		"instructions": ["Whisk.", "Cook."]
	}`, nil)

	recipe, err := service.NewChefService(text, zap.NewNop()).SuggestRecipe(context.Background(), "eggs")
	require.NoError(t, err)
	assert.Equal(t, "2 eggs\nbutter", recipe.IngredientsNeeded)
	assert.Equal(t, []string{"Whisk.", "Cook."}, recipe.InstructionsList())
	assert.Empty(t, recipe.RecipeImageURI)
}

func TestSuggestRecipeImageFailureStillSucceeds(t *testing.T) {
	text := new(mocks.MockTextGenerator)
	images := new(mocks.MockImageGenerator)
	text.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(completeRecipe, nil)
	images.On("GenerateRecipeImage", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	obs := &recordingObserver{}
	svc := service.NewChefService(text, zap.NewNop(), service.WithImageGenerator(images), service.WithObserver(obs))

	for i := 0; i < 3; i++ {
		recipe, err := svc.SuggestRecipe(context.Background(), "rice")
		require.NoError(t, err)
		assert.Empty(t, recipe.RecipeImageURI)
		assert.False(t, recipe.HasImage())
	}
	assert.Equal(t, []bool{false, false, false}, obs.images)
}

func TestSuggestRecipeEmptyImageIsNoImage(t *testing.T) {
	text := new(mocks.MockTextGenerator)
	images := new(mocks.MockImageGenerator)
	text.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(completeRecipe, nil)
	images.On("GenerateRecipeImage", mock.Anything, mock.Anything, mock.Anything).Return("", nil)

	recipe, err := service.NewChefService(text, zap.NewNop(), service.WithImageGenerator(images)).
		SuggestRecipe(context.Background(), "rice")
	require.NoError(t, err)
	assert.Empty(t, recipe.RecipeImageURI)
}

func TestSuggestRecipeIncomplete(t *testing.T) {
	for _, field := range []string{"dishName", "description", "ingredientsNeeded", "instructions"} {
		t.Run(field, func(t *testing.T) {
			payload := map[string]any{}
			for k, v := range completeRecipe {
				payload[k] = v
			}
			payload[field] = "   "

			text := new(mocks.MockTextGenerator)
			images := new(mocks.MockImageGenerator)
			text.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(payload, nil)

			recipe, err := service.NewChefService(text, zap.NewNop(), service.WithImageGenerator(images)).
				SuggestRecipe(context.Background(), "rice")
			assert.Nil(t, recipe)
			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrIncompleteGeneration)
			assert.NotErrorIs(t, err, service.ErrTransport)
			assert.Equal(t, service.MsgIncompleteRecipe, err.Error())
			images.AssertNotCalled(t, "GenerateRecipeImage", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSuggestRecipeTransportFailure(t *testing.T) {
	text := new(mocks.MockTextGenerator)
	text.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	obs := &recordingObserver{}

	_, err := service.NewChefService(text, zap.NewNop(), service.WithObserver(obs)).SuggestRecipe(context.Background(), "rice")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrTransport)
	assert.Equal(t, "connection refused", err.Error())

	var genErr *service.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, service.KindTransport, genErr.Kind)
	require.Len(t, obs.generations[service.OpSuggestRecipe], 1)
	assert.Error(t, obs.generations[service.OpSuggestRecipe][0])
}

func TestSuggestRecipeIDsAreUnique(t *testing.T) {
	text := new(mocks.MockTextGenerator)
	text.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(completeRecipe, nil)
	svc := service.NewChefService(text, zap.NewNop())

	var mu sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recipe, err := svc.SuggestRecipe(context.Background(), "rice, tomatoes")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[recipe.ID], "duplicate id %s", recipe.ID)
			seen[recipe.ID] = true
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 25)
}

func TestSuggestSubstitutionReturnsModelAnswerUnchanged(t *testing.T) {
	text := new(mocks.MockTextGenerator)
	want := types.Substitution{SuggestedSubstitution: "olive oil", Reason: "similar fat content"}
	text.On("GenerateJSON", mock.Anything, service.SubstitutionPrompt("butter", []string{"olive oil", "lime"}), mock.Anything).
		Return(want, nil)

	got, err := service.NewChefService(text, zap.NewNop()).
		SuggestSubstitution(context.Background(), "butter", []string{"olive oil", "lime"})
	require.NoError(t, err)
	assert.Equal(t, want, *got)
	text.AssertExpectations(t)
}

func TestSuggestSubstitutionIncomplete(t *testing.T) {
	text := new(mocks.MockTextGenerator)
	text.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(types.Substitution{SuggestedSubstitution: "olive oil"}, nil)

	_, err := service.NewChefService(text, zap.NewNop()).SuggestSubstitution(context.Background(), "butter", nil)
	assert.ErrorIs(t, err, service.ErrIncompleteGeneration)
	assert.Equal(t, service.MsgIncompleteSubstitution, err.Error())
}

func TestSuggestSubstitutionTransportFailure(t *testing.T) {
	text := new(mocks.MockTextGenerator)
	text.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

	_, err := service.NewChefService(text, zap.NewNop()).SuggestSubstitution(context.Background(), "butter", nil)
	assert.ErrorIs(t, err, service.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
