package ml

import (
	"errors"
	"fmt"
)

const leafNode = -1

// DecisionTree is a fitted CART classifier stored in flat node arrays.
// Node i is a leaf when ChildrenLeft[i] == -1; otherwise rows with
// x[Feature[i]] <= Threshold[i] go left.
type DecisionTree struct {
	ChildrenLeft  []int
	ChildrenRight []int
	Feature       []int
	Threshold     []float64

	// probas[i] is the class distribution at node i, aligned with classes.
	probas  [][]float64
	classes []string
}

// NewDecisionTree validates the node arrays against nFeatures and classes.
// value holds per-node class weights; each row is normalized to sum to 1.
func NewDecisionTree(left, right, feature []int, threshold []float64, value [][]float64, classes []string, nFeatures int) (*DecisionTree, error) {
	n := len(left)
	if n == 0 {
		return nil, errors.New("decision tree: no nodes")
	}
	if len(right) != n || len(feature) != n || len(threshold) != n || len(value) != n {
		return nil, fmt.Errorf("decision tree: node arrays differ in length (left=%d right=%d feature=%d threshold=%d value=%d)",
			n, len(right), len(feature), len(threshold), len(value))
	}

	t := &DecisionTree{
		ChildrenLeft:  left,
		ChildrenRight: right,
		Feature:       feature,
		Threshold:     threshold,
		probas:        make([][]float64, n),
		classes:       classes,
	}

	for i := 0; i < n; i++ {
		isLeaf := left[i] == leafNode
		if isLeaf != (right[i] == leafNode) {
			return nil, fmt.Errorf("decision tree: node %d has exactly one child", i)
		}
		if !isLeaf {
			// Children always come after their parent, which rules out cycles.
			if left[i] <= i || left[i] >= n || right[i] <= i || right[i] >= n {
				return nil, fmt.Errorf("decision tree: node %d has child out of range", i)
			}
			if feature[i] < 0 || feature[i] >= nFeatures {
				return nil, fmt.Errorf("decision tree: node %d splits on feature %d, want [0,%d)", i, feature[i], nFeatures)
			}
			if !finite(threshold[i]) {
				return nil, fmt.Errorf("decision tree: node %d has non-finite threshold", i)
			}
		}

		if len(value[i]) != len(classes) {
			return nil, fmt.Errorf("decision tree: node %d has %d class weights, want %d", i, len(value[i]), len(classes))
		}
		var sum float64
		for _, w := range value[i] {
			if w < 0 || !finite(w) {
				return nil, fmt.Errorf("decision tree: node %d has invalid class weight %v", i, w)
			}
			sum += w
		}
		if isLeaf && sum == 0 {
			return nil, fmt.Errorf("decision tree: leaf %d has no samples", i)
		}
		p := make([]float64, len(classes))
		if sum > 0 {
			for k, w := range value[i] {
				p[k] = w / sum
			}
		}
		t.probas[i] = p
	}
	return t, nil
}

// leaf walks the tree for x and returns the index of the leaf reached.
func (t *DecisionTree) leaf(x []float64) int {
	node := 0
	for t.ChildrenLeft[node] != leafNode {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}

func (t *DecisionTree) Classes() []string { return copyStrings(t.classes) }

func (t *DecisionTree) PredictProba(x []float64) ([]float64, error) {
	if err := t.checkWidth(x); err != nil {
		return nil, err
	}
	p := t.probas[t.leaf(x)]
	out := make([]float64, len(p))
	copy(out, p)
	return out, nil
}

func (t *DecisionTree) Predict(x []float64) (string, error) {
	p, err := t.PredictProba(x)
	if err != nil {
		return "", err
	}
	return t.classes[argmax(p)], nil
}

func (t *DecisionTree) checkWidth(x []float64) error {
	// Only split features are indexed, so any row at least that wide is safe;
	// the loader enforces the exact width.
	for i, f := range t.Feature {
		if t.ChildrenLeft[i] != leafNode && f >= len(x) {
			return fmt.Errorf("decision tree: row has %d features, split needs feature %d", len(x), f)
		}
	}
	return nil
}

// RandomForest averages the leaf distributions of its trees (soft voting).
type RandomForest struct {
	Estimators []*DecisionTree
	classes    []string
}

// NewRandomForest returns a forest over trees that share classes.
func NewRandomForest(trees []*DecisionTree, classes []string) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, errors.New("random forest: no estimators")
	}
	return &RandomForest{Estimators: trees, classes: classes}, nil
}

func (rf *RandomForest) Classes() []string { return copyStrings(rf.classes) }

func (rf *RandomForest) PredictProba(x []float64) ([]float64, error) {
	out := make([]float64, len(rf.classes))
	for i, tree := range rf.Estimators {
		p, err := tree.PredictProba(x)
		if err != nil {
			return nil, fmt.Errorf("estimator %d: %w", i, err)
		}
		for k, v := range p {
			out[k] += v
		}
	}
	n := float64(len(rf.Estimators))
	for k := range out {
		out[k] /= n
	}
	return out, nil
}

func (rf *RandomForest) Predict(x []float64) (string, error) {
	p, err := rf.PredictProba(x)
	if err != nil {
		return "", err
	}
	return rf.classes[argmax(p)], nil
}

// argmax returns the first index of the largest value.
func argmax(p []float64) int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return best
}

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
