package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"gayabelajar-api/internal/common"
)

// Artifact kinds accepted in the "kind" field.
const (
	KindStandardScaler     = "standard_scaler"
	KindMinMaxScaler       = "minmax_scaler"
	KindDecisionTree       = "decision_tree"
	KindRandomForest       = "random_forest"
	KindLogisticRegression = "logistic_regression"
)

var (
	// ErrArtifactLoad wraps every failure to read or validate an artifact.
	ErrArtifactLoad = errors.New("artifact load failed")

	// ErrModelUnavailable is returned by predictions while degraded.
	ErrModelUnavailable = errors.New(common.ErrMsgModelNotLoaded)
)

// Artifacts is the loaded scaler and classifier pair. Both are always set.
type Artifacts struct {
	Scaler     Scaler
	Classifier Classifier

	ScalerKind string
	ModelKind  string
	ScalerPath string
	ModelPath  string
	ModelTime  time.Time
	LoadedAt   time.Time
}

type scalerFile struct {
	Kind           string    `json:"kind"`
	FeatureNamesIn []string  `json:"feature_names_in"`
	Mean           []float64 `json:"mean"`
	Scale          []float64 `json:"scale"`
	DataMin        []float64 `json:"data_min"`
	DataRange      []float64 `json:"data_range"`
	FeatureRange   []float64 `json:"feature_range"`
}

type treeFile struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

type classifierFile struct {
	Kind        string      `json:"kind"`
	Classes     []string    `json:"classes"`
	NFeatures   int         `json:"n_features"`
	Probability *bool       `json:"probability"`
	Tree        *treeFile   `json:"tree"`
	Estimators  []treeFile  `json:"estimators"`
	Coef        [][]float64 `json:"coef"`
	Intercept   []float64   `json:"intercept"`
}

// plainClassifier hides PredictProba from a probabilistic classifier.
type plainClassifier struct {
	Classifier
}

// LoadArtifacts loads both artifacts. It returns either both or an error
// wrapping ErrArtifactLoad; there is no partial result.
func LoadArtifacts(modelPath, scalerPath string) (*Artifacts, error) {
	scaler, scalerKind, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: scaler: %w", ErrArtifactLoad, err)
	}

	classifier, modelKind, err := LoadClassifier(modelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: model: %w", ErrArtifactLoad, err)
	}

	var modelTime time.Time
	if info, err := os.Stat(modelPath); err == nil {
		modelTime = info.ModTime()
	}

	return &Artifacts{
		Scaler:     scaler,
		Classifier: classifier,
		ScalerKind: scalerKind,
		ModelKind:  modelKind,
		ScalerPath: scalerPath,
		ModelPath:  modelPath,
		ModelTime:  modelTime,
		LoadedAt:   time.Now(),
	}, nil
}

// LoadScaler reads a scaler artifact and returns it with its kind.
func LoadScaler(path string) (Scaler, string, error) {
	var f scalerFile
	if err := readJSON(path, &f); err != nil {
		return nil, "", err
	}

	if len(f.FeatureNamesIn) > 0 {
		if len(f.FeatureNamesIn) != common.NumFeatures {
			return nil, "", fmt.Errorf("scaler was fitted on %d features, want %d", len(f.FeatureNamesIn), common.NumFeatures)
		}
		for i, name := range f.FeatureNamesIn {
			if name != common.FeatureOrder[i] {
				return nil, "", fmt.Errorf("scaler feature %d is %q, want %q", i, name, common.FeatureOrder[i])
			}
		}
	}

	switch f.Kind {
	case KindStandardScaler:
		if len(f.Mean) != common.NumFeatures {
			return nil, "", fmt.Errorf("standard scaler has %d columns, want %d", len(f.Mean), common.NumFeatures)
		}
		s, err := NewStandardScaler(f.Mean, f.Scale)
		return s, f.Kind, err
	case KindMinMaxScaler:
		if len(f.DataMin) != common.NumFeatures {
			return nil, "", fmt.Errorf("minmax scaler has %d columns, want %d", len(f.DataMin), common.NumFeatures)
		}
		fr := [2]float64{0, 1}
		if len(f.FeatureRange) > 0 {
			if len(f.FeatureRange) != 2 {
				return nil, "", fmt.Errorf("feature_range must have 2 values, got %d", len(f.FeatureRange))
			}
			fr = [2]float64{f.FeatureRange[0], f.FeatureRange[1]}
		}
		s, err := NewMinMaxScaler(f.DataMin, f.DataRange, fr)
		return s, f.Kind, err
	default:
		return nil, "", fmt.Errorf("unknown scaler kind %q", f.Kind)
	}
}

// LoadClassifier reads a classifier artifact and returns it with its kind.
func LoadClassifier(path string) (Classifier, string, error) {
	var f classifierFile
	if err := readJSON(path, &f); err != nil {
		return nil, "", err
	}

	if f.NFeatures != common.NumFeatures {
		return nil, "", fmt.Errorf("classifier expects %d features, want %d", f.NFeatures, common.NumFeatures)
	}
	if err := validateClasses(f.Classes); err != nil {
		return nil, "", err
	}

	var (
		c   ProbabilisticClassifier
		err error
	)
	switch f.Kind {
	case KindDecisionTree:
		if f.Tree == nil {
			return nil, "", errors.New("decision tree artifact has no tree")
		}
		c, err = buildTree(*f.Tree, f.Classes, f.NFeatures)
	case KindRandomForest:
		trees := make([]*DecisionTree, 0, len(f.Estimators))
		for i, tf := range f.Estimators {
			tree, err := buildTree(tf, f.Classes, f.NFeatures)
			if err != nil {
				return nil, "", fmt.Errorf("estimator %d: %w", i, err)
			}
			trees = append(trees, tree)
		}
		c, err = NewRandomForest(trees, f.Classes)
	case KindLogisticRegression:
		c, err = NewLogisticRegression(f.Coef, f.Intercept, f.Classes, f.NFeatures)
	default:
		return nil, "", fmt.Errorf("unknown classifier kind %q", f.Kind)
	}
	if err != nil {
		return nil, "", err
	}

	if f.Probability != nil && !*f.Probability {
		return plainClassifier{c}, f.Kind, nil
	}
	return c, f.Kind, nil
}

func buildTree(tf treeFile, classes []string, nFeatures int) (*DecisionTree, error) {
	return NewDecisionTree(tf.ChildrenLeft, tf.ChildrenRight, tf.Feature, tf.Threshold, tf.Value, classes, nFeatures)
}

func validateClasses(classes []string) error {
	if len(classes) < 2 {
		return fmt.Errorf("classifier declares %d classes, need at least 2", len(classes))
	}
	seen := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		if _, ok := seen[c]; ok {
			return fmt.Errorf("duplicate class %q", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
