package metrics

import "strconv"

// MetricsWrapper adapts Metrics to the method set the predictor and server use.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) MLPredictionsInc(label string) {
	w.m.MLPredictions.WithLabelValues(label).Inc()
}

func (w *MetricsWrapper) MLFailuresInc() {
	w.m.MLFailures.Inc()
}

func (w *MetricsWrapper) MLLatencyObserve(v float64) {
	w.m.MLLatency.Observe(v)
}

func (w *MetricsWrapper) MLModelAgeSet(v float64) {
	w.m.MLModelAge.Set(v)
}

func (w *MetricsWrapper) MLModelAvailableSet(ok bool) {
	if ok {
		w.m.MLModelAvailable.Set(1)
		return
	}
	w.m.MLModelAvailable.Set(0)
}

func (w *MetricsWrapper) MLPredictionScoresObserve(v float64) {
	w.m.MLPredictionScores.Observe(v)
}

func (w *MetricsWrapper) MLFallbackUseInc() {
	w.m.MLFallbackUse.Inc()
}

func (w *MetricsWrapper) HTTPRequestObserve(route string, status int, seconds float64) {
	w.m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	w.m.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}
