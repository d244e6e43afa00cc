package model

import (
	"log/slog"
	"sort"

	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
	"github.com/edurisk/student-risk-hub/internal/domain/shared"
)

// fallbackAttributions is the static, pre-declared explanation list used when
// computed attribution is disabled or fails. Already ordered by descending
// absolute importance.
var fallbackAttributions = []prediction.Attribution{
	{Feature: "G2 (Second Period Grade)", Importance: 0.85},
	{Feature: "Failures (Past Classes)", Importance: -0.65},
	{Feature: "Study Time", Importance: 0.40},
	{Feature: "Absences", Importance: -0.30},
	{Feature: "Mother's Education", Importance: 0.25},
}

// AttributionConfig controls the explanation engine.
type AttributionConfig struct {
	// Enabled selects computed mode; false forces the static fallback list.
	// A static runtime choice, not a per-request decision.
	Enabled bool

	// Limit caps the number of returned attributions.
	Limit int
}

// Explainer produces per-feature contribution lists for a predicted class.
// Computed mode walks the decision path of every tree of the predicted class
// and accumulates the change in expected value at each split (path
// attribution). The contract is deterministic signed contributions for the
// predicted class given frozen artifacts, not bit-exact parity with any
// particular SHAP implementation.
type Explainer struct {
	ensemble *Ensemble
	config   AttributionConfig
	logger   *slog.Logger
}

// NewExplainer creates an Explainer over a loaded ensemble. The ensemble may
// be nil; every request then degrades to the fallback list.
func NewExplainer(ensemble *Ensemble, config AttributionConfig, logger *slog.Logger) *Explainer {
	if config.Limit <= 0 {
		config.Limit = len(fallbackAttributions)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Explainer{
		ensemble: ensemble,
		config:   config,
		logger:   logger,
	}
}

// Explain returns the attribution list for one encoded vector and predicted
// class. The bool reports whether the fallback list was substituted. Fails
// closed: any computed-mode error degrades to the fallback for this request
// and is logged, never propagated.
func (e *Explainer) Explain(x []float64, classIdx int) ([]prediction.Attribution, bool) {
	if !e.config.Enabled {
		return e.fallback(), true
	}

	attrs, err := e.computed(x, classIdx)
	if err != nil {
		e.logger.Warn("computed attribution failed, using fallback list",
			slog.Int("class", classIdx),
			slog.String("error", err.Error()))
		return e.fallback(), true
	}

	return attrs, false
}

// computed runs path attribution and normalizes the backend output shape.
func (e *Explainer) computed(x []float64, classIdx int) ([]prediction.Attribution, error) {
	if e.ensemble == nil {
		return nil, shared.ErrClassifierNotLoaded
	}
	if classIdx < 0 || classIdx >= len(e.ensemble.Classes) {
		return nil, shared.WrapError("prediction", "Explain", shared.ErrAttributionFailed,
			"predicted class index out of range", nil)
	}
	if len(x) != len(e.ensemble.Features) {
		return nil, shared.WrapError("prediction", "Explain", shared.ErrAttributionFailed,
			"feature vector length does not match classifier", nil)
	}

	raw := e.pathContributions(x)

	contributions, err := flattenForClass(raw, classIdx, len(e.ensemble.Classes), len(e.ensemble.Features))
	if err != nil {
		return nil, err
	}

	attrs := make([]prediction.Attribution, 0, len(contributions))
	for i, c := range contributions {
		if c == 0 {
			continue
		}
		attrs = append(attrs, prediction.Attribution{
			Feature:    e.ensemble.Features[i],
			Importance: c,
		})
	}

	if len(attrs) == 0 {
		return nil, shared.WrapError("prediction", "Explain", shared.ErrAttributionFailed,
			"attribution produced no nonzero contributions", nil)
	}

	sortAttributions(attrs)
	if len(attrs) > e.config.Limit {
		attrs = attrs[:e.config.Limit]
	}
	return attrs, nil
}

// pathContributions walks the decision path of every tree and accumulates
// per-feature deltas of the node expected values, per class.
func (e *Explainer) pathContributions(x []float64) [][]float64 {
	contributions := make([][]float64, len(e.ensemble.Classes))
	for i := range contributions {
		contributions[i] = make([]float64, len(e.ensemble.Features))
	}

	for _, tree := range e.ensemble.Trees {
		row := contributions[tree.Class]
		idx := 0
		for {
			node := tree.Nodes[idx]
			if node.IsLeaf() {
				break
			}
			next := node.Left
			if x[node.Feature] > node.Threshold {
				next = node.Right
			}
			row[node.Feature] += tree.Nodes[next].Value - node.Value
			idx = next
		}
	}

	return contributions
}

// flattenForClass normalizes the recognized attribution output shapes to one
// flat per-feature vector for the predicted class:
//   - per-class matrix (classes x features): pick the predicted class row
//   - single matrix row (1 x features): the backend already selected the class
//
// Anything else is a hard attribution failure, not a best-effort guess.
func flattenForClass(raw [][]float64, classIdx, classes, features int) ([]float64, error) {
	switch {
	case len(raw) == classes && rowsHaveLength(raw, features):
		return raw[classIdx], nil
	case len(raw) == 1 && len(raw[0]) == features:
		return raw[0], nil
	default:
		return nil, shared.ErrAttributionShape
	}
}

func rowsHaveLength(rows [][]float64, n int) bool {
	for _, r := range rows {
		if len(r) != n {
			return false
		}
	}
	return len(rows) > 0
}

// sortAttributions orders by descending absolute importance, breaking ties
// by feature name so identical inputs always produce identical lists.
func sortAttributions(attrs []prediction.Attribution) {
	sort.SliceStable(attrs, func(i, j int) bool {
		ai, aj := abs(attrs[i].Importance), abs(attrs[j].Importance)
		if ai != aj {
			return ai > aj
		}
		return attrs[i].Feature < attrs[j].Feature
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// fallback returns a capped copy of the static list.
func (e *Explainer) fallback() []prediction.Attribution {
	n := len(fallbackAttributions)
	if e.config.Limit < n {
		n = e.config.Limit
	}
	out := make([]prediction.Attribution, n)
	copy(out, fallbackAttributions[:n])
	return out
}
