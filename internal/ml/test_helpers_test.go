package ml

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu               sync.Mutex
	predictions      map[string]int
	failures         int
	latencySum       float64
	latencyCount     int
	modelAge         float64
	modelAvailable   bool
	availableSet     int
	fallbackUse      int
	predictionScores []float64
	requests         map[string]int
}

func (m *MockMetrics) MLPredictionsInc(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.predictions == nil {
		m.predictions = make(map[string]int)
	}
	m.predictions[label]++
}

func (m *MockMetrics) MLFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) MLLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
	m.latencyCount++
}

func (m *MockMetrics) MLModelAgeSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelAge = v
}

func (m *MockMetrics) MLModelAvailableSet(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelAvailable = v
	m.availableSet++
}

func (m *MockMetrics) MLPredictionScoresObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictionScores = append(m.predictionScores, v)
}

func (m *MockMetrics) MLFallbackUseInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbackUse++
}

func (m *MockMetrics) HTTPRequestObserve(route string, status int, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.requests == nil {
		m.requests = make(map[string]int)
	}
	m.requests[route]++
}

func (m *MockMetrics) totalPredictions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.predictions {
		n += c
	}
	return n
}

// identityScaler passes rows through unchanged.
type identityScaler struct{}

func (identityScaler) Transform(x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	copy(out, x)
	return out, nil
}

type failingScaler struct{}

func (failingScaler) Transform(x []float64) ([]float64, error) {
	return nil, errors.New("scaler exploded")
}

// fixedClassifier always returns label and has no probabilities.
type fixedClassifier struct {
	label   string
	classes []string
}

func (c fixedClassifier) Predict(x []float64) (string, error) { return c.label, nil }
func (c fixedClassifier) Classes() []string                   { return c.classes }

// probClassifier returns probs and the label at argmax.
type probClassifier struct {
	classes []string
	probs   []float64
	err     error
}

func (c probClassifier) Predict(x []float64) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.classes[argmax(c.probs)], nil
}
func (c probClassifier) Classes() []string { return c.classes }
func (c probClassifier) PredictProba(x []float64) ([]float64, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.probs, nil
}

type panicClassifier struct{}

func (panicClassifier) Predict(x []float64) (string, error) { panic("index out of range") }
func (panicClassifier) Classes() []string                   { return []string{"a", "b"} }

func fakeArtifacts(s Scaler, c Classifier) *Artifacts {
	return &Artifacts{Scaler: s, Classifier: c, ScalerKind: "fake", ModelKind: "fake"}
}

// Scaled example row: (10,45,30,4.5,85) -> (0,0,0,1,0.5).
const testScalerJSON = `{
  "kind": "standard_scaler",
  "feature_names_in": ["total_active_days","avg_study_duration","avg_exam_duration","avg_submission_rating","avg_exam_score"],
  "mean": [10, 45, 30, 4, 80],
  "scale": [5, 15, 10, 0.5, 10]
}`

// Root splits on avg_exam_score, right child on avg_submission_rating.
const testTreeJSON = `{
  "children_left":  [1, -1, 3, -1, -1],
  "children_right": [2, -1, 4, -1, -1],
  "feature":        [4, -2, 3, -2, -2],
  "threshold":      [0, -2, 0.5, -2, -2],
  "value": [[10,10,10],[8,1,1],[2,9,9],[0,1,3],[0,4,1]]
}`

const testLeafTreeJSON = `{
  "children_left": [-1], "children_right": [-1], "feature": [-2], "threshold": [-2],
  "value": [[1,1,2]]
}`

const testClasses = `["Consistent","Fast Learner","Reflective"]`

var testForestJSON = `{
  "kind": "random_forest",
  "classes": ` + testClasses + `,
  "n_features": 5,
  "estimators": [` + testTreeJSON + `,` + testLeafTreeJSON + `]
}`

var testDecisionTreeJSON = `{
  "kind": "decision_tree",
  "classes": ` + testClasses + `,
  "n_features": 5,
  "tree": ` + testTreeJSON + `
}`

var testLogisticJSON = `{
  "kind": "logistic_regression",
  "classes": ` + testClasses + `,
  "n_features": 5,
  "coef": [[0,0,0,0,-1],[0,0,0,0,1],[0,0,0,1,0]],
  "intercept": [0,0,0]
}`

// Huge weights on total_active_days push the decision values past float64.
var testOverflowLogisticJSON = `{
  "kind": "logistic_regression",
  "classes": ` + testClasses + `,
  "n_features": 5,
  "coef": [[1e10,0,0,0,0],[-1e10,0,0,0,0],[0,0,0,1,0]],
  "intercept": [0,0,0]
}`

var testNoProbaForestJSON = `{
  "kind": "random_forest",
  "probability": false,
  "classes": ` + testClasses + `,
  "n_features": 5,
  "estimators": [` + testTreeJSON + `]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// writeArtifacts writes a model/scaler pair and returns their paths.
func writeArtifacts(t *testing.T, model, scaler string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	return writeFile(t, dir, "model.json", model), writeFile(t, dir, "scaler.json", scaler)
}
