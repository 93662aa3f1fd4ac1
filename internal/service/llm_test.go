package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pageza/pantry-chef/backend/internal/service"
	"github.com/pageza/pantry-chef/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chatServer(t *testing.T, status int, content string, inspect func(*http.Request, service.ChatRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req service.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if inspect != nil {
			inspect(r, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": content}}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newLLM(t *testing.T, url string) *service.LLMService {
	t.Helper()
	llm, err := service.NewLLMService(service.LLMConfig{
		APIURL:      url,
		APIKey:      "test-key",
		Model:       "test-model",
		Temperature: 0.5,
	}, zap.NewNop())
	require.NoError(t, err)
	return llm
}

func TestNewLLMServiceRequiresKey(t *testing.T) {
	_, err := service.NewLLMService(service.LLMConfig{APIURL: "http://localhost"}, zap.NewNop())
	assert.EqualError(t, err, "LLM_API_KEY not configured")
}

func TestLLMServiceGenerateJSON(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"suggestedSubstitution":"olive oil","reason":"similar fat content"}`,
		func(r *http.Request, req service.ChatRequest) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "test-model", req.Model)
			assert.Equal(t, "json_object", req.ResponseFormat["type"])
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Contains(t, req.Messages[1].Content, `"butter"`)
		})

	var out types.Substitution
	err := newLLM(t, srv.URL).GenerateJSON(context.Background(), service.SubstitutionPrompt("butter", nil), &out)
	require.NoError(t, err)
	assert.Equal(t, "olive oil", out.SuggestedSubstitution)
}

func TestLLMServiceStripsCodeFence(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "```json\n{\"reason\":\"r\",\"suggestedSubstitution\":\"s\"}\n```", nil)

	var out types.Substitution
	require.NoError(t, newLLM(t, srv.URL).GenerateJSON(context.Background(), service.Prompt{User: "x"}, &out))
	assert.Equal(t, "s", out.SuggestedSubstitution)
}

func TestLLMServiceErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := chatServer(t, http.StatusTooManyRequests, "", nil)
		var out map[string]any
		err := newLLM(t, srv.URL).GenerateJSON(context.Background(), service.Prompt{User: "x"}, &out)
		assert.ErrorContains(t, err, "status 429")
	})

	t.Run("non-JSON content", func(t *testing.T) {
		srv := chatServer(t, http.StatusOK, "Sure! Here is a recipe.", nil)
		var out map[string]any
		err := newLLM(t, srv.URL).GenerateJSON(context.Background(), service.Prompt{User: "x"}, &out)
		assert.ErrorContains(t, err, "failed to decode model output")
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()
		var out map[string]any
		err := newLLM(t, srv.URL).GenerateJSON(context.Background(), service.Prompt{User: "x"}, &out)
		assert.EqualError(t, err, "no response from API")
	})

	t.Run("canceled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		var out map[string]any
		err := newLLM(t, srv.URL).GenerateJSON(ctx, service.Prompt{User: "x"}, &out)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestChefServiceOverLLM(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"dishName":"Fried Rice","description":"Leftover magic.","ingredientsNeeded":"rice\negg","instructions":"Fry."}`, nil)

	recipe, err := service.NewChefService(newLLM(t, srv.URL), zap.NewNop()).SuggestRecipe(context.Background(), "rice, egg")
	require.NoError(t, err)
	assert.Equal(t, "Fried Rice", recipe.DishName)
	assert.Equal(t, []string{"rice", "egg"}, recipe.IngredientsList())
}
