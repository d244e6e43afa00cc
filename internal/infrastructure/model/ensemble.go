package model

import (
	"fmt"
	"math"

	"github.com/edurisk/student-risk-hub/internal/domain/shared"
)

// leafFeature marks a node with no split.
const leafFeature = -1

// Node is a single node of a decision tree. Internal nodes split on
// x[Feature] <= Threshold (left) versus > Threshold (right). Value holds the
// expected raw score at the node; for leaves it is the leaf score, for
// internal nodes the trainer exports the training-set expectation, which the
// attribution walk consumes.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// IsLeaf reports whether the node has no split.
func (n Node) IsLeaf() bool {
	return n.Feature == leafFeature
}

// Tree is one boosted tree contributing to the raw score of a single class.
type Tree struct {
	Class int    `json:"class"`
	Nodes []Node `json:"nodes"`
}

// Score walks the tree for one feature vector and returns the leaf value.
func (t Tree) Score(x []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf() {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// Ensemble is the frozen gradient-boosted classifier: per-class base scores
// plus per-class trees whose leaf values accumulate into raw scores, turned
// into probabilities by softmax.
type Ensemble struct {
	Classes   []string  `json:"classes"`
	Features  []string  `json:"features"`
	BaseScore []float64 `json:"base_score"`
	Trees     []Tree    `json:"trees"`
}

// Validate checks structural integrity of a loaded ensemble.
func (e *Ensemble) Validate() error {
	if e == nil {
		return shared.ErrClassifierNotLoaded
	}
	if len(e.Classes) == 0 {
		return wrapArtifact("classifier has no classes")
	}
	if len(e.Features) == 0 {
		return wrapArtifact("classifier has no features")
	}
	if len(e.BaseScore) != 0 && len(e.BaseScore) != len(e.Classes) {
		return wrapArtifact("base_score length does not match classes")
	}
	for ti, tree := range e.Trees {
		if tree.Class < 0 || tree.Class >= len(e.Classes) {
			return wrapArtifact(fmt.Sprintf("tree %d targets unknown class %d", ti, tree.Class))
		}
		if len(tree.Nodes) == 0 {
			return wrapArtifact(fmt.Sprintf("tree %d has no nodes", ti))
		}
		for ni, node := range tree.Nodes {
			if node.IsLeaf() {
				continue
			}
			if node.Feature < 0 || node.Feature >= len(e.Features) {
				return wrapArtifact(fmt.Sprintf("tree %d node %d splits on unknown feature %d", ti, ni, node.Feature))
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) ||
				node.Right < 0 || node.Right >= len(tree.Nodes) {
				return wrapArtifact(fmt.Sprintf("tree %d node %d has out-of-range children", ti, ni))
			}
		}
	}
	return nil
}

func wrapArtifact(msg string) error {
	return shared.WrapError("prediction", "LoadArtifacts", shared.ErrModelUnavailable, msg, nil)
}

// RawScores accumulates per-class raw scores for one feature vector.
func (e *Ensemble) RawScores(x []float64) []float64 {
	scores := make([]float64, len(e.Classes))
	copy(scores, e.BaseScore)
	for _, tree := range e.Trees {
		scores[tree.Class] += tree.Score(x)
	}
	return scores
}

// PredictProba returns the probability vector over classes. Deterministic
// for identical weights and input; probabilities sum to 1.
func (e *Ensemble) PredictProba(x []float64) ([]float64, error) {
	if len(x) != len(e.Features) {
		return nil, shared.WrapError("prediction", "Classify", shared.ErrInvalidInput,
			fmt.Sprintf("feature vector has %d values, classifier expects %d", len(x), len(e.Features)), nil)
	}
	return softmax(e.RawScores(x)), nil
}

// Predict returns the predicted class index and the full probability vector.
// The class index is the argmax of the probabilities by construction.
func (e *Ensemble) Predict(x []float64) (int, []float64, error) {
	probs, err := e.PredictProba(x)
	if err != nil {
		return 0, nil, err
	}

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return best, probs, nil
}

// softmax is numerically stable: scores are shifted by their maximum before
// exponentiation.
func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
