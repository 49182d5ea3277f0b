package ml

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArtifacts_RandomForest(t *testing.T) {
	modelPath, scalerPath := writeArtifacts(t, testForestJSON, testScalerJSON)

	a, err := LoadArtifacts(modelPath, scalerPath)
	require.NoError(t, err)

	assert.Equal(t, KindRandomForest, a.ModelKind)
	assert.Equal(t, KindStandardScaler, a.ScalerKind)
	assert.Equal(t, modelPath, a.ModelPath)
	assert.Equal(t, scalerPath, a.ScalerPath)
	assert.False(t, a.ModelTime.IsZero())
	assert.Equal(t, []string{"Consistent", "Fast Learner", "Reflective"}, a.Classifier.Classes())

	_, ok := a.Classifier.(ProbabilisticClassifier)
	assert.True(t, ok, "random forest should expose probabilities")
}

func TestLoadArtifacts_AllClassifierKinds(t *testing.T) {
	testCases := []struct {
		name  string
		model string
		kind  string
		label string
	}{
		{"decision tree", testDecisionTreeJSON, KindDecisionTree, "Fast Learner"},
		{"random forest", testForestJSON, KindRandomForest, "Fast Learner"},
		{"logistic regression", testLogisticJSON, KindLogisticRegression, "Reflective"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			modelPath, scalerPath := writeArtifacts(t, tc.model, testScalerJSON)

			a, err := LoadArtifacts(modelPath, scalerPath)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, a.ModelKind)

			scaled, err := a.Scaler.Transform([]float64{10, 45, 30, 4.5, 85})
			require.NoError(t, err)
			label, err := a.Classifier.Predict(scaled)
			require.NoError(t, err)
			assert.Equal(t, tc.label, label)
		})
	}
}

func TestLoadClassifier_ProbabilityDisabled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "model.json", testNoProbaForestJSON)

	c, kind, err := LoadClassifier(path)
	require.NoError(t, err)
	assert.Equal(t, KindRandomForest, kind)

	_, ok := c.(ProbabilisticClassifier)
	assert.False(t, ok)

	label, err := c.Predict([]float64{0, 0, 0, 1, 0.5})
	require.NoError(t, err)
	assert.Equal(t, "Fast Learner", label)
}

func TestLoadScaler_MinMax(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scaler.json", `{
  "kind": "minmax_scaler",
  "data_min": [0, 0, 0, 0, 0],
  "data_range": [100, 100, 100, 5, 100]
}`)

	s, kind, err := LoadScaler(path)
	require.NoError(t, err)
	assert.Equal(t, KindMinMaxScaler, kind)

	out, err := s.Transform([]float64{10, 45, 30, 4.5, 85})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.1, 0.45, 0.3, 0.9, 0.85}, out, 1e-12)
}

func TestLoadArtifacts_Failures(t *testing.T) {
	testCases := []struct {
		name   string
		model  string
		scaler string
	}{
		{"corrupt model", `{"kind":`, testScalerJSON},
		{"corrupt scaler", testForestJSON, `not json`},
		{"unknown model kind", `{"kind":"svm","classes":["a","b"],"n_features":5}`, testScalerJSON},
		{"unknown scaler kind", testForestJSON, `{"kind":"robust_scaler"}`},
		{"wrong model width", `{"kind":"logistic_regression","classes":["a","b"],"n_features":4,"coef":[[1,1,1,1]],"intercept":[0]}`, testScalerJSON},
		{"wrong scaler width", testForestJSON, `{"kind":"standard_scaler","mean":[1,2],"scale":[1,1]}`},
		{"scaler feature order", testForestJSON, `{"kind":"standard_scaler","feature_names_in":["avg_exam_score","avg_study_duration","avg_exam_duration","avg_submission_rating","total_active_days"],"mean":[0,0,0,0,0],"scale":[1,1,1,1,1]}`},
		{"single class", `{"kind":"decision_tree","classes":["a"],"n_features":5,"tree":{"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[-2],"value":[[1]]}}`, testScalerJSON},
		{"duplicate class", `{"kind":"logistic_regression","classes":["a","a"],"n_features":5,"coef":[[1,1,1,1,1]],"intercept":[0]}`, testScalerJSON},
		{"decision tree without tree", `{"kind":"decision_tree","classes":["a","b"],"n_features":5}`, testScalerJSON},
		{"forest without estimators", `{"kind":"random_forest","classes":["a","b"],"n_features":5}`, testScalerJSON},
		{"bad estimator", `{"kind":"random_forest","classes":["a","b"],"n_features":5,"estimators":[{"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[-2],"value":[[1,1,1]]}]}`, testScalerJSON},
		{"bad feature_range", testForestJSON, `{"kind":"minmax_scaler","data_min":[0,0,0,0,0],"data_range":[1,1,1,1,1],"feature_range":[0]}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			modelPath, scalerPath := writeArtifacts(t, tc.model, tc.scaler)

			a, err := LoadArtifacts(modelPath, scalerPath)
			require.Error(t, err)
			assert.Nil(t, a, "no partial artifacts on failure")
			assert.True(t, errors.Is(err, ErrArtifactLoad))
		})
	}
}

func TestLoadArtifacts_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	modelPath, scalerPath := writeArtifacts(t, testForestJSON, testScalerJSON)

	_, err := LoadArtifacts(filepath.Join(dir, "missing.json"), scalerPath)
	assert.ErrorIs(t, err, ErrArtifactLoad)

	_, err = LoadArtifacts(modelPath, filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrArtifactLoad)
}
