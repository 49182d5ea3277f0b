package ml

import (
	"errors"
	"math"
	"sync"
	"testing"

	"gayabelajar-api/internal/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exampleVector = features.Vector{10, 45, 30, 4.5, 85}

func TestPredictor_DegradedWhenModelNotFound(t *testing.T) {
	metrics := &MockMetrics{}
	_, scalerPath := writeArtifacts(t, testForestJSON, testScalerJSON)

	predictor := NewWithMetrics("nonexistent_model.json", scalerPath, metrics)

	assert.False(t, predictor.Available())
	assert.ErrorIs(t, predictor.LoadError(), ErrArtifactLoad)
	assert.Nil(t, predictor.Artifacts(), "scaler must not be kept when the model fails")
	assert.False(t, metrics.modelAvailable)
	assert.Equal(t, 1, metrics.availableSet)

	_, err := predictor.Predict(exampleVector)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, 0, metrics.failures, "unavailable is not an inference failure")
}

func TestPredictor_DegradedWhenScalerNotFound(t *testing.T) {
	modelPath, _ := writeArtifacts(t, testForestJSON, testScalerJSON)

	predictor := New(modelPath, "nonexistent_scaler.json")

	assert.False(t, predictor.Available())
	_, err := predictor.Predict(exampleVector)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestPredictor_NilSafety(t *testing.T) {
	var predictor *Predictor

	assert.False(t, predictor.Available())
	assert.Nil(t, predictor.Artifacts())
	assert.ErrorIs(t, predictor.LoadError(), ErrModelUnavailable)

	_, err := predictor.Predict(exampleVector)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestNewFromArtifacts_NilWithoutError(t *testing.T) {
	predictor := NewFromArtifacts(nil, nil, nil)

	assert.False(t, predictor.Available())
	assert.ErrorIs(t, predictor.LoadError(), ErrModelUnavailable)
}

func TestPredictor_PredictFromFiles(t *testing.T) {
	metrics := &MockMetrics{}
	modelPath, scalerPath := writeArtifacts(t, testForestJSON, testScalerJSON)

	predictor := NewWithMetrics(modelPath, scalerPath, metrics)
	require.True(t, predictor.Available())
	require.NoError(t, predictor.LoadError())
	assert.True(t, metrics.modelAvailable)

	res, err := predictor.Predict(exampleVector)
	require.NoError(t, err)

	assert.Equal(t, "Fast Learner", res.Label)
	require.Len(t, res.Probabilities, 3)
	assert.InDelta(t, 0.125, res.Probabilities["Consistent"], 1e-12)
	assert.InDelta(t, 0.525, res.Probabilities["Fast Learner"], 1e-12)
	assert.InDelta(t, 0.35, res.Probabilities["Reflective"], 1e-12)

	assert.Equal(t, 1, metrics.predictions["Fast Learner"])
	assert.Equal(t, 1, metrics.latencyCount)
	require.Len(t, metrics.predictionScores, 1)
	assert.InDelta(t, 0.525, metrics.predictionScores[0], 1e-12)
}

func TestPredictor_Idempotent(t *testing.T) {
	modelPath, scalerPath := writeArtifacts(t, testForestJSON, testScalerJSON)
	predictor := New(modelPath, scalerPath)

	first, err := predictor.Predict(exampleVector)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		res, err := predictor.Predict(exampleVector)
		require.NoError(t, err)
		assert.Equal(t, first, res)
	}
}

func TestPredictor_NoProbabilities(t *testing.T) {
	metrics := &MockMetrics{}
	predictor := NewFromArtifacts(fakeArtifacts(identityScaler{}, fixedClassifier{label: "Consistent", classes: classes3}), nil, metrics)

	res, err := predictor.Predict(exampleVector)
	require.NoError(t, err)

	assert.Equal(t, "Consistent", res.Label)
	assert.Nil(t, res.Probabilities)
	assert.Empty(t, metrics.predictionScores)
}

func TestPredictor_ProbabilitiesFollowClassOrder(t *testing.T) {
	c := probClassifier{classes: []string{"z", "a", "m"}, probs: []float64{0.1, 0.3, 0.6}}
	predictor := NewFromArtifacts(fakeArtifacts(identityScaler{}, c), nil, nil)

	res, err := predictor.Predict(exampleVector)
	require.NoError(t, err)

	assert.Equal(t, "m", res.Label)
	assert.Equal(t, map[string]float64{"z": 0.1, "a": 0.3, "m": 0.6}, res.Probabilities)
}

func TestPredictor_InferenceErrors(t *testing.T) {
	testCases := []struct {
		name      string
		artifacts *Artifacts
	}{
		{"scaler error", fakeArtifacts(failingScaler{}, fixedClassifier{label: "x"})},
		{"classifier error", fakeArtifacts(identityScaler{}, probClassifier{classes: classes3, probs: []float64{1, 0, 0}, err: errors.New("boom")})},
		{"probability width mismatch", fakeArtifacts(identityScaler{}, probClassifier{classes: classes3, probs: []float64{1, 0}})},
		{"non-finite probability", fakeArtifacts(identityScaler{}, probClassifier{classes: classes3, probs: []float64{0.5, math.NaN(), 0.5}})},
		{"classifier panic", fakeArtifacts(identityScaler{}, panicClassifier{})},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			metrics := &MockMetrics{}
			predictor := NewFromArtifacts(tc.artifacts, nil, metrics)

			res, err := predictor.Predict(exampleVector)
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrModelUnavailable))
			assert.Equal(t, Result{}, res)
			assert.Equal(t, 1, metrics.failures)
			assert.Equal(t, 0, metrics.totalPredictions())
		})
	}
}

func TestPredictor_Concurrency(t *testing.T) {
	metrics := &MockMetrics{}
	modelPath, scalerPath := writeArtifacts(t, testForestJSON, testScalerJSON)
	predictor := NewWithMetrics(modelPath, scalerPath, metrics)

	numGoroutines := 10
	numCalls := 100

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numCalls; j++ {
				res, err := predictor.Predict(exampleVector)
				if err != nil || res.Label != "Fast Learner" {
					t.Errorf("unexpected result %+v, err %v", res, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, numGoroutines*numCalls, metrics.totalPredictions())
}
