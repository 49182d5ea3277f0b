package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"sort"

	"gayabelajar-api/internal/advisory"
	"gayabelajar-api/internal/common"
	"gayabelajar-api/internal/features"
	"gayabelajar-api/internal/ml"
)

func main() {
	var (
		modelPath  = flag.String("model", common.DefaultModelPath, "Path to the model artifact")
		scalerPath = flag.String("scaler", common.DefaultScalerPath, "Path to the scaler artifact")
	)
	flag.Parse()

	fmt.Println("🧪 Checking model artifacts")
	fmt.Println("===========================")

	absModel, err := filepath.Abs(*modelPath)
	if err != nil {
		log.Fatalf("❌ Failed to get absolute path: %v", err)
	}
	absScaler, err := filepath.Abs(*scalerPath)
	if err != nil {
		log.Fatalf("❌ Failed to get absolute path: %v", err)
	}
	fmt.Printf("📁 Model path:  %s\n", absModel)
	fmt.Printf("📁 Scaler path: %s\n", absScaler)

	// Test 1: Load artifacts
	fmt.Println("\n🔧 Test 1: Loading artifacts...")
	artifacts, err := ml.LoadArtifacts(absModel, absScaler)
	if err != nil {
		log.Fatalf("❌ Failed to load artifacts: %v", err)
	}
	fmt.Printf("✅ Loaded %s + %s, classes %v\n", artifacts.ScalerKind, artifacts.ModelKind, artifacts.Classifier.Classes())

	predictor := ml.NewFromArtifacts(artifacts, nil, nil)
	table := advisory.Default()

	for _, class := range artifacts.Classifier.Classes() {
		if !table.Has(class) {
			fmt.Printf("  ⚠️  Class %q has no advisory, responses will use the fallback text\n", class)
		}
	}

	// Test 2: Sample learners
	fmt.Println("\n🔧 Test 2: Predicting sample learners...")
	samples := []struct {
		name string
		in   map[string]any
	}{
		{"Example request", sample(12, 45.5, 30, 4.2, 88)},
		{"Steady, modest scores", sample(28, 35, 25, 3.8, 68)},
		{"Slow, careful exams", sample(8, 60, 55, 4.5, 72)},
		{"Few days, high scores", sample(5, 20, 15, 4.9, 97)},
	}
	for i, s := range samples {
		vec, err := features.FromMap(s.in)
		if err != nil {
			fmt.Printf("  ❌ %d. %s: %v\n", i+1, s.name, err)
			continue
		}
		res, err := predictor.Predict(vec)
		if err != nil {
			fmt.Printf("  ❌ %d. %s: %v\n", i+1, s.name, err)
			continue
		}
		fmt.Printf("  %d. %-24s → %-14s %s\n", i+1, s.name, res.Label, formatProbs(res.Probabilities))
	}

	// Test 3: Label distribution over a grid
	fmt.Println("\n🔧 Test 3: Label distribution over a feature grid...")
	counts := map[string]int{}
	total := 0
	for days := 1.0; days <= 30; days += 5 {
		for study := 10.0; study <= 70; study += 15 {
			for score := 40.0; score <= 100; score += 10 {
				vec, err := features.FromMap(sample(days, study, 30, 4, score))
				if err != nil {
					continue
				}
				res, err := predictor.Predict(vec)
				if err != nil {
					continue
				}
				counts[res.Label]++
				total++
			}
		}
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Printf("  📊 %-14s %5.1f%% (%d/%d)\n", l, float64(counts[l])/float64(total)*100, counts[l], total)
	}
	if len(counts) == 1 {
		fmt.Println("  ⚠️  Warning: every grid point got the same label")
	}

	// Test 4: Edge cases
	fmt.Println("\n🔧 Test 4: Edge cases...")
	edgeCases := []struct {
		name string
		in   map[string]any
	}{
		{"Zeros", sample(0, 0, 0, 0, 0)},
		{"Extreme values", sample(1e6, -1e6, 1e6, -1e6, 1e6)},
		{"Numeric strings", map[string]any{
			common.FeatureTotalActiveDays: "12", common.FeatureAvgStudyDuration: "45.5",
			common.FeatureAvgExamDuration: "30", common.FeatureAvgSubmissionRating: "4.2",
			common.FeatureAvgExamScore: "88",
		}},
		{"NaN value", sample(math.NaN(), 1, 1, 1, 1)},
		{"Missing field", map[string]any{common.FeatureTotalActiveDays: 1}},
	}
	for i, tc := range edgeCases {
		vec, err := features.FromMap(tc.in)
		if err != nil {
			fmt.Printf("  %d. %-16s rejected: %v\n", i+1, tc.name, err)
			continue
		}
		res, err := predictor.Predict(vec)
		if err != nil {
			fmt.Printf("  %d. %-16s ❌ %v\n", i+1, tc.name, err)
			continue
		}
		fmt.Printf("  %d. %-16s ✅ %s\n", i+1, tc.name, res.Label)
	}

	fmt.Println("\n🎉 Artifact check completed")
}

func sample(days, study, exam, rating, score float64) map[string]any {
	return map[string]any{
		common.FeatureTotalActiveDays:     days,
		common.FeatureAvgStudyDuration:    study,
		common.FeatureAvgExamDuration:     exam,
		common.FeatureAvgSubmissionRating: rating,
		common.FeatureAvgExamScore:        score,
	}
}

func formatProbs(p map[string]float64) string {
	if p == nil {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := "["
	for i, k := range keys {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%.3f", k, p[k])
	}
	return s + "]"
}
