package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/edurisk/student-risk-hub/internal/domain/shared"
)

// Artifact file names inside the artifact directory. Written by the offline
// trainer, read-only here.
const (
	ClassifierFile = "classifier.json"
	EncodersFile   = "encoders.json"
	LabelsFile     = "labels.json"
)

// Context bundles the loaded artifacts. Built once at process start and
// injected into the request path; safe for concurrent read-only use.
type Context struct {
	Classifier *Ensemble
	Encoders   *EncodingTable

	// Labels maps class index to class label, in training order.
	Labels []string

	LoadedAt time.Time
}

// labelsArtifact is the on-disk shape of the optional label table.
type labelsArtifact struct {
	Classes []string `json:"classes"`
}

// LoadContext loads and validates all artifacts from dir. Fails fast and
// loudly on any missing or malformed artifact; the caller decides whether to
// exit or run degraded (answering health checks honestly and returning 503
// on prediction attempts).
func LoadContext(dir string) (*Context, error) {
	var ensemble Ensemble
	if err := readArtifact(filepath.Join(dir, ClassifierFile), &ensemble); err != nil {
		return nil, err
	}
	if err := ensemble.Validate(); err != nil {
		return nil, err
	}

	var encoders EncodingTable
	if err := readArtifact(filepath.Join(dir, EncodersFile), &encoders); err != nil {
		return nil, err
	}
	if err := encoders.Validate(); err != nil {
		return nil, err
	}

	// The label table is optional; the classifier's own class list is the
	// fallback source of labels.
	labels := ensemble.Classes
	labelsPath := filepath.Join(dir, LabelsFile)
	if _, err := os.Stat(labelsPath); err == nil {
		var la labelsArtifact
		if err := readArtifact(labelsPath, &la); err != nil {
			return nil, err
		}
		if len(la.Classes) != len(ensemble.Classes) {
			return nil, wrapArtifact("label table length does not match classifier classes")
		}
		labels = la.Classes
	}

	return &Context{
		Classifier: &ensemble,
		Encoders:   &encoders,
		Labels:     labels,
		LoadedAt:   time.Now().UTC(),
	}, nil
}

// Ready reports whether the context can serve predictions.
func (c *Context) Ready() bool {
	return c != nil && c.Classifier != nil && c.Encoders != nil && len(c.Labels) > 0
}

func readArtifact(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return shared.WrapError("prediction", "LoadArtifacts", shared.ErrModelUnavailable,
			fmt.Sprintf("reading %s", filepath.Base(path)), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return shared.WrapError("prediction", "LoadArtifacts", shared.ErrModelUnavailable,
			fmt.Sprintf("parsing %s", filepath.Base(path)), err)
	}
	return nil
}
