package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/pantry-chef/backend/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationMetrics(t *testing.T) {
	m := NewCollector(prometheus.NewRegistry())

	m.GenerationFinished(service.OpSuggestRecipe, nil, time.Second)
	m.GenerationFinished(service.OpSuggestRecipe, &service.GenerationError{Kind: service.KindIncomplete}, time.Second)
	m.GenerationFinished(service.OpSuggestSubstitution, errors.New("refused"), time.Second)
	m.ImageEnriched(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationsTotal.WithLabelValues(service.OpSuggestRecipe, StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationsTotal.WithLabelValues(service.OpSuggestRecipe, StatusIncomplete)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationsTotal.WithLabelValues(service.OpSuggestSubstitution, StatusTransport)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imageEnrichments.WithLabelValues("failed")))
}

func TestStorageMetrics(t *testing.T) {
	m := NewCollector(prometheus.NewRegistry())
	m.StorageReadFailed()
	m.StorageWriteFailed()
	m.StorageWriteFailed()
	m.RecipeSaved()
	m.RateLimited()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageFailures.WithLabelValues("read")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.storageFailures.WithLabelValues("write")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.savedRecipeEvents.WithLabelValues("saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
}

func TestHTTPMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewCollector(prometheus.NewRegistry())

	router := gin.New()
	router.Use(m.HTTPMiddleware())
	router.GET("/api/v1/tips", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tips", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/tips", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/api/v1/tips",status_code="200"} 1`)
}
