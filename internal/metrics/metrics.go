// Package metrics provides Prometheus metrics collection for the prediction API.
// It defines the model, prediction and HTTP metrics exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the prediction API.
type Metrics struct {
	// ML and prediction metrics
	MLPredictions      *prometheus.CounterVec // Predictions made, by label
	MLFailures         prometheus.Counter     // Inference failures
	MLModelAge         prometheus.Gauge       // Age of the classifier artifact in seconds
	MLModelAvailable   prometheus.Gauge       // 1 when artifacts loaded, 0 when degraded
	MLLatency          prometheus.Histogram   // Scaler + classifier latency in seconds
	MLPredictionScores prometheus.Histogram   // Top class probability per prediction
	MLFallbackUse      prometheus.Counter     // Predictions answered with the fallback advisory

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec   // Requests by route and status code
	HTTPRequestDuration *prometheus.HistogramVec // Request duration by route
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		MLPredictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ml_predictions_total",
			Help: "Total number of predictions made, by predicted label",
		}, []string{"label"}),
		MLFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_failures_total",
			Help: "Total number of prediction failures",
		}),
		MLModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ml_model_age_seconds",
			Help: "Age of the loaded model artifact in seconds at startup",
		}),
		MLModelAvailable: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ml_model_available",
			Help: "Whether the model and scaler loaded (1) or the service is degraded (0)",
		}),
		MLLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_latency_seconds",
			Help:    "Prediction latency in seconds (scaler and classifier)",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		MLPredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_prediction_scores",
			Help:    "Distribution of the top class probability",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		MLFallbackUse: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_fallback_use_total",
			Help: "Total number of predictions whose label had no advisory entry",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
