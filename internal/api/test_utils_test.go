package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/pantry-chef/backend/internal/database"
	"github.com/pageza/pantry-chef/backend/internal/middleware"
	"github.com/pageza/pantry-chef/backend/internal/mocks"
	"github.com/pageza/pantry-chef/backend/internal/service"
	"github.com/pageza/pantry-chef/backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	chef     *mocks.MockChefService
	sessions *service.SessionService
	registry *store.Registry
	medium   *database.MemoryMedium
	observer *countingObserver
}

// countingObserver records store events; read its fields once requests finish
type countingObserver struct {
	mu                    sync.Mutex
	saved, removed        int
	readFails, writeFails int
}

func (o *countingObserver) RecipeSaved()        { o.count(&o.saved) }
func (o *countingObserver) RecipeRemoved()      { o.count(&o.removed) }
func (o *countingObserver) StorageReadFailed()  { o.count(&o.readFails) }
func (o *countingObserver) StorageWriteFailed() { o.count(&o.writeFails) }

func (o *countingObserver) count(n *int) {
	o.mu.Lock()
	*n++
	o.mu.Unlock()
}

func setupTestRouter(t *testing.T, limiter middleware.Limiter) *testEnv {
	t.Helper()

	env := &testEnv{
		router:   gin.New(),
		chef:     new(mocks.MockChefService),
		sessions: service.NewSessionService("test-secret", time.Hour),
		medium:   database.NewMemoryMedium(),
		observer: &countingObserver{},
	}
	env.registry = store.NewRegistry(env.medium, "pantryChef_savedRecipes", zap.NewNop(),
		store.WithObserver(env.observer))

	RegisterRoutes(env.router, Dependencies{
		Chef:     env.chef,
		Sessions: env.sessions,
		Saved:    env.registry,
		Logger:   zap.NewNop(),
		Limiter:  limiter,
	})
	t.Cleanup(func() { env.chef.AssertExpectations(t) })
	return env
}

// newSession issues a token through the API and returns it with its session ID
func (e *testEnv) newSession(t *testing.T) (string, string) {
	t.Helper()
	w := performRequest(e.router, http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token     string `json:"token"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.SessionID
}

func performRequest(router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}
