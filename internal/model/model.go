// Package model loads and evaluates the trained lead-conversion classifier.
// The artifact is read once at startup and is immutable afterwards, so a
// single instance is safely shared across concurrent requests.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Classifier is the opaque prediction function the service depends on.
type Classifier interface {
	// Predict returns the class label (0 or 1) for one feature vector.
	Predict(features []float64) (int, error)
	// PredictProba returns [P(class=0), P(class=1)] for one feature vector.
	PredictProba(features []float64) ([2]float64, error)
}

// LogisticModel is a binary logistic regression classifier exported from the
// training pipeline as JSON: feature names in column order, one coefficient
// per feature, and an intercept.
type LogisticModel struct {
	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Load reads a model artifact from disk. Any fault here is fatal to the
// caller: the service must not start serving without a model.
func Load(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var m LogisticModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &m, nil
}

func (m *LogisticModel) validate() error {
	if len(m.FeatureNames) == 0 {
		return fmt.Errorf("no features defined")
	}
	if len(m.Coefficients) != len(m.FeatureNames) {
		return fmt.Errorf("%d coefficients for %d features", len(m.Coefficients), len(m.FeatureNames))
	}
	return nil
}

// NumFeatures returns the width of the feature vector the model expects.
func (m *LogisticModel) NumFeatures() int {
	return len(m.FeatureNames)
}

func (m *LogisticModel) score(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(features), len(m.Coefficients))
	}
	z := m.Intercept
	for i, w := range m.Coefficients {
		z += w * features[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// PredictProba implements Classifier.
func (m *LogisticModel) PredictProba(features []float64) ([2]float64, error) {
	p1, err := m.score(features)
	if err != nil {
		return [2]float64{}, err
	}
	return [2]float64{1 - p1, p1}, nil
}

// Predict implements Classifier. The decision threshold is 0.5.
func (m *LogisticModel) Predict(features []float64) (int, error) {
	p1, err := m.score(features)
	if err != nil {
		return 0, err
	}
	if p1 >= 0.5 {
		return 1, nil
	}
	return 0, nil
}
