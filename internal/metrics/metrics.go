// Package metrics exposes Prometheus metrics for HTTP traffic, generation
// and saved-recipe storage.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/pantry-chef/backend/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes used as the status label
const (
	StatusOK         = "ok"
	StatusIncomplete = "incomplete"
	StatusTransport  = "transport"
)

// Collector holds every metric of the service. It implements the generation
// and storage observers so it can be handed straight to those components.
type Collector struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	imageEnrichments   *prometheus.CounterVec

	storageFailures   *prometheus.CounterVec
	savedRecipeEvents *prometheus.CounterVec
	rateLimited       prometheus.Counter
}

// NewCollector registers the metrics on reg. Passing a fresh
// prometheus.NewRegistry keeps tests isolated from the default registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		gatherer: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		generationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_chef_generations_total",
				Help: "Total number of generation requests by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pantry_chef_generation_duration_seconds",
				Help:    "Generation duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"operation"},
		),
		imageEnrichments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_chef_image_enrichments_total",
				Help: "Recipe image enrichment attempts by outcome",
			},
			[]string{"status"},
		),
		storageFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_chef_storage_failures_total",
				Help: "Durable storage failures of saved recipes",
			},
			[]string{"operation"},
		),
		savedRecipeEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_chef_saved_recipe_events_total",
				Help: "Saved recipe mutations by kind",
			},
			[]string{"event"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pantry_chef_rate_limited_total",
				Help: "Generation requests rejected by the rate limiter",
			},
		),
	}
}

// HTTPMiddleware creates a Gin middleware for HTTP metrics collection
func (m *Collector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// GenerationFinished implements service.Observer
func (m *Collector) GenerationFinished(operation string, err error, elapsed time.Duration) {
	m.generationsTotal.WithLabelValues(operation, generationStatus(err)).Inc()
	m.generationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ImageEnriched implements service.Observer
func (m *Collector) ImageEnriched(ok bool) {
	status := StatusOK
	if !ok {
		status = "failed"
	}
	m.imageEnrichments.WithLabelValues(status).Inc()
}

// StorageReadFailed implements store.Observer
func (m *Collector) StorageReadFailed() {
	m.storageFailures.WithLabelValues("read").Inc()
}

// StorageWriteFailed implements store.Observer
func (m *Collector) StorageWriteFailed() {
	m.storageFailures.WithLabelValues("write").Inc()
}

// RecipeSaved counts a recipe added to a saved collection
func (m *Collector) RecipeSaved() {
	m.savedRecipeEvents.WithLabelValues("saved").Inc()
}

// RecipeRemoved counts a recipe removed from a saved collection
func (m *Collector) RecipeRemoved() {
	m.savedRecipeEvents.WithLabelValues("removed").Inc()
}

// RateLimited counts a rejected generation request
func (m *Collector) RateLimited() {
	m.rateLimited.Inc()
}

func generationStatus(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, service.ErrIncompleteGeneration):
		return StatusIncomplete
	default:
		return StatusTransport
	}
}
