package integration

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/pantry-chef/backend/config"
	"github.com/pageza/pantry-chef/backend/internal/api"
	"github.com/pageza/pantry-chef/backend/internal/database"
	"github.com/pageza/pantry-chef/backend/internal/metrics"
	"github.com/pageza/pantry-chef/backend/internal/middleware"
	"github.com/pageza/pantry-chef/backend/internal/server"
	"github.com/pageza/pantry-chef/backend/internal/service"
	"github.com/pageza/pantry-chef/backend/internal/store"
	"github.com/pageza/pantry-chef/backend/internal/types"
)

const recipeJSON = `{
	"dishName": "Garlic Butter Rice",
	"description": "Fragrant rice tossed in garlic butter.",
	"ingredientsNeeded": ["1 cup rice", "2 cloves garlic", "2 tbsp butter"],
	"instructions": "Cook the rice\nSaute garlic in butter\nToss together"
}`

const substitutionJSON = `{"suggestedSubstitution":"olive oil","reason":"Adds fat and richness like butter."}`

// fakeModelServer answers chat completions and image generations the way an
// OpenAI-compatible API does.
func fakeModelServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req service.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)

		content := recipeJSON
		if strings.Contains(req.Messages[0].Content, "suggestedSubstitution") {
			content = substitutionJSON
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": content}}},
		})
	})
	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": time.Now().Unix(),
			"data":    []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString([]byte("png"))}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type app struct {
	handler   http.Handler
	collector *metrics.Collector
}

// newApp wires the full service the way cmd/api does, on a sqlite file
func newApp(t *testing.T, dbPath, modelURL string) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	cfg := &config.Config{
		Environment:   config.Test,
		ServerPort:    "0",
		StorageDriver: config.DriverSQLite,
		SQLitePath:    dbPath,
		StorageKey:    "pantryChef_savedRecipes",
	}
	db, err := database.Open(cfg, log)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, "", log))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	collector := metrics.NewCollector(prometheus.NewRegistry())

	llm, err := service.NewLLMService(service.LLMConfig{
		APIURL: modelURL + "/v1/chat/completions",
		APIKey: "test-key",
		Model:  "test-model",
	}, log)
	require.NoError(t, err)
	images, err := service.NewImageService(service.ImageConfig{
		APIURL: modelURL + "/v1/images/generations",
		APIKey: "test-key",
		Model:  "test-image-model",
	}, nil, log)
	require.NoError(t, err)

	deps := api.Dependencies{
		Chef: service.NewChefService(llm, log,
			service.WithObserver(collector),
			service.WithImageGenerator(images)),
		Sessions: service.NewSessionService("integration-secret", time.Hour),
		Saved: store.NewRegistry(database.NewSQLMedium(db), cfg.StorageKey, log,
			store.WithObserver(collector),
			store.WithEmbedder(service.GenerateEmbedding)),
		Logger:  log,
		Limiter: middleware.NewMemoryLimiter(middleware.GenerationRateLimitConfig(10)),
	}
	srv := server.New(cfg, deps, collector)
	return &app{handler: srv.Handler(), collector: collector}
}

func (a *app) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func TestSuggestSaveAndReload(t *testing.T) {
	model := fakeModelServer(t)
	dbPath := filepath.Join(t.TempDir(), "pantry-chef.db")
	a := newApp(t, dbPath, model.URL)

	w := a.do(t, http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var session types.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))

	// Suggest
	w = a.do(t, http.MethodPost, "/api/v1/recipes/suggest",
		map[string]string{"userIngredients": "rice, garlic, butter"}, session.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var suggested types.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &suggested))

	recipe := suggested.Recipe
	assert.Equal(t, "Garlic Butter Rice", recipe.DishName)
	assert.True(t, strings.HasPrefix(recipe.ID, "garlic-butter-rice-"))
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("png")), recipe.RecipeImageURI)
	assert.Equal(t, []string{"1 cup rice", "2 cloves garlic", "2 tbsp butter"}, suggested.IngredientsList)
	assert.Len(t, suggested.InstructionsList, 3)
	assert.False(t, suggested.Saved)

	// Save
	w = a.do(t, http.MethodPost, "/api/v1/saved", recipe, session.Token)
	require.Equal(t, http.StatusOK, w.Code)

	// Substitution
	w = a.do(t, http.MethodPost, "/api/v1/substitutions/suggest", map[string]any{
		"missingIngredient":    "butter",
		"availableIngredients": "olive oil, rice",
	}, session.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var sub types.Substitution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
	assert.Equal(t, "olive oil", sub.SuggestedSubstitution)

	// A fresh process over the same database sees the saved recipe
	restarted := newApp(t, dbPath, model.URL)
	w = restarted.do(t, http.MethodGet, "/api/v1/saved", nil, session.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var list types.SavedRecipesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, recipe, list.Recipes[0])

	// Remove and reload again
	w = restarted.do(t, http.MethodDelete, "/api/v1/saved/"+recipe.ID, nil, session.Token)
	require.Equal(t, http.StatusOK, w.Code)

	again := newApp(t, dbPath, model.URL)
	w = again.do(t, http.MethodGet, "/api/v1/saved", nil, session.Token)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Count)
}

func TestMetricsExposeGenerationOutcomes(t *testing.T) {
	model := fakeModelServer(t)
	a := newApp(t, filepath.Join(t.TempDir(), "pantry-chef.db"), model.URL)

	w := a.do(t, http.MethodPost, "/api/v1/sessions", nil, "")
	var session types.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))

	w = a.do(t, http.MethodPost, "/api/v1/recipes/suggest",
		map[string]string{"userIngredients": "rice"}, session.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `pantry_chef_generations_total{operation="suggest_recipe",status="ok"} 1`)
	assert.Contains(t, body, `pantry_chef_image_enrichments_total{status="ok"} 1`)
}
