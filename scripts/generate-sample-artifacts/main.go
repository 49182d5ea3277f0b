package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gayabelajar-api/internal/common"
	"gayabelajar-api/internal/ml"
)

// Demo artifacts let the API start without a trained model. The forest is
// hand-built over standardized features and is not fitted on real data.

type scalerArtifact struct {
	Kind           string    `json:"kind"`
	FeatureNamesIn []string  `json:"feature_names_in"`
	Mean           []float64 `json:"mean"`
	Scale          []float64 `json:"scale"`
}

type treeArtifact struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

type forestArtifact struct {
	Kind       string         `json:"kind"`
	Classes    []string       `json:"classes"`
	NFeatures  int            `json:"n_features"`
	Estimators []treeArtifact `json:"estimators"`
}

const leaf = -1

func main() {
	var (
		outDir     = flag.String("out", ".", "Directory to write the artifacts to")
		modelName  = flag.String("model", common.DefaultModelPath, "Model file name")
		scalerName = flag.String("scaler", common.DefaultScalerPath, "Scaler file name")
	)
	flag.Parse()

	fmt.Printf("Generating sample artifacts...\n")
	fmt.Printf("  Output: %s\n", *outDir)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	scalerPath := filepath.Join(*outDir, *scalerName)
	modelPath := filepath.Join(*outDir, *modelName)

	if err := writeJSON(scalerPath, sampleScaler()); err != nil {
		log.Fatalf("Failed to write scaler: %v", err)
	}
	if err := writeJSON(modelPath, sampleForest()); err != nil {
		log.Fatalf("Failed to write model: %v", err)
	}

	// Round-trip through the real loader so a broken artifact fails here.
	if _, err := ml.LoadArtifacts(modelPath, scalerPath); err != nil {
		log.Fatalf("Generated artifacts do not load: %v", err)
	}

	fmt.Printf("✓ Wrote %s\n", scalerPath)
	fmt.Printf("✓ Wrote %s\n", modelPath)
}

func sampleScaler() scalerArtifact {
	return scalerArtifact{
		Kind:           ml.KindStandardScaler,
		FeatureNamesIn: common.FeatureOrder[:],
		Mean:           []float64{15, 40, 30, 3.5, 70},
		Scale:          []float64{8, 15, 12, 1, 15},
	}
}

// Column indexes into common.FeatureOrder.
const (
	colActiveDays = iota
	colStudyDuration
	colExamDuration
	colSubmissionRating
	colExamScore
)

func sampleForest() forestArtifact {
	// Class weights are ordered Consistent, Fast Learner, Reflective.
	return forestArtifact{
		Kind:      ml.KindRandomForest,
		Classes:   []string{"Consistent", "Fast Learner", "Reflective"},
		NFeatures: common.NumFeatures,
		Estimators: []treeArtifact{
			{
				// High exam score is fast; otherwise long exams mean reflective.
				ChildrenLeft:  []int{1, 2, leaf, leaf, leaf},
				ChildrenRight: []int{4, 3, leaf, leaf, leaf},
				Feature:       []int{colExamScore, colExamDuration, -2, -2, -2},
				Threshold:     []float64{0.5, 0, -2, -2, -2},
				Value:         [][]float64{{10, 9, 11}, {8, 1, 11}, {6, 1, 3}, {2, 0, 8}, {2, 8, 0}},
			},
			{
				// Many active days is consistent; otherwise study time decides.
				ChildrenLeft:  []int{1, 2, leaf, leaf, leaf},
				ChildrenRight: []int{4, 3, leaf, leaf, leaf},
				Feature:       []int{colActiveDays, colStudyDuration, -2, -2, -2},
				Threshold:     []float64{0.3, 0.5, -2, -2, -2},
				Value:         [][]float64{{13, 7, 10}, {5, 6, 9}, {2, 5, 3}, {3, 1, 6}, {8, 1, 1}},
			},
			{
				ChildrenLeft:  []int{1, leaf, 3, leaf, leaf},
				ChildrenRight: []int{2, leaf, 4, leaf, leaf},
				Feature:       []int{colSubmissionRating, -2, colExamScore, -2, -2},
				Threshold:     []float64{0, -2, 0, -2, -2},
				Value:         [][]float64{{10, 11, 9}, {3, 1, 6}, {7, 10, 3}, {6, 2, 2}, {1, 8, 1}},
			},
		},
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
