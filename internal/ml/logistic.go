package ml

import (
	"fmt"
	"math"
)

// LogisticRegression is a fitted linear classifier. With two classes and a
// single coefficient row it is the binary sigmoid model; otherwise it has one
// row per class and uses softmax.
type LogisticRegression struct {
	Coef      [][]float64
	Intercept []float64
	classes   []string
}

// NewLogisticRegression validates coefficient shapes against classes and nFeatures.
func NewLogisticRegression(coef [][]float64, intercept []float64, classes []string, nFeatures int) (*LogisticRegression, error) {
	rows := len(classes)
	if len(classes) == 2 && len(coef) == 1 {
		rows = 1
	}
	if len(coef) != rows {
		return nil, fmt.Errorf("logistic regression: %d coefficient rows for %d classes", len(coef), len(classes))
	}
	if len(intercept) != rows {
		return nil, fmt.Errorf("logistic regression: %d intercepts, want %d", len(intercept), rows)
	}
	for i, row := range coef {
		if len(row) != nFeatures {
			return nil, fmt.Errorf("logistic regression: coefficient row %d has %d values, want %d", i, len(row), nFeatures)
		}
		for _, w := range row {
			if !finite(w) {
				return nil, fmt.Errorf("logistic regression: non-finite coefficient in row %d", i)
			}
		}
		if !finite(intercept[i]) {
			return nil, fmt.Errorf("logistic regression: non-finite intercept %d", i)
		}
	}
	return &LogisticRegression{Coef: coef, Intercept: intercept, classes: classes}, nil
}

func (m *LogisticRegression) Classes() []string { return copyStrings(m.classes) }

func (m *LogisticRegression) PredictProba(x []float64) ([]float64, error) {
	if len(x) != len(m.Coef[0]) {
		return nil, fmt.Errorf("logistic regression: expected %d features, got %d", len(m.Coef[0]), len(x))
	}

	z := make([]float64, len(m.Coef))
	for i, row := range m.Coef {
		sum := m.Intercept[i]
		for j, v := range x {
			sum += row[j] * v
		}
		if !finite(sum) {
			return nil, fmt.Errorf("logistic regression: non-finite decision value for class %d", i)
		}
		z[i] = sum
	}

	var p []float64
	if len(z) == 1 {
		s := sigmoid(z[0])
		p = []float64{1 - s, s}
	} else {
		p = softmax(z)
	}
	for i, v := range p {
		if !finite(v) {
			return nil, fmt.Errorf("logistic regression: non-finite probability for class %d", i)
		}
	}
	return p, nil
}

func (m *LogisticRegression) Predict(x []float64) (string, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return "", err
	}
	return m.classes[argmax(p)], nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func softmax(z []float64) []float64 {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}
	out := make([]float64, len(z))
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
