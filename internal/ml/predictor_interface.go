// Package ml loads the learning-style classifier and its feature scaler and
// serves predictions over HTTP.
//
// Artifacts are JSON exports of the fitted scaler and classifier. They are
// loaded once at startup; if either fails to load the predictor stays in a
// degraded state for the life of the process and every prediction returns
// ErrModelUnavailable.
package ml

// Scaler rescales one raw feature row before classification.
type Scaler interface {
	// Transform returns a new row; the input is not modified.
	Transform(x []float64) ([]float64, error)
}

// Classifier maps one scaled feature row to a class label.
type Classifier interface {
	// Predict returns the predicted label for a single row.
	Predict(x []float64) (string, error)

	// Classes returns the labels in the classifier's declared order.
	Classes() []string
}

// ProbabilisticClassifier is a Classifier that can also estimate class
// probabilities. PredictProba returns one value per entry of Classes, in the
// same order.
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(x []float64) ([]float64, error)
}

// MetricsInterface defines metrics methods needed by the predictor and server
type MetricsInterface interface {
	MLPredictionsInc(label string)
	MLFailuresInc()
	MLLatencyObserve(float64)
	MLModelAgeSet(float64)
	MLModelAvailableSet(bool)
	MLPredictionScoresObserve(float64)
	MLFallbackUseInc()
	HTTPRequestObserve(route string, status int, seconds float64)
}
