package predictor

import (
	"fmt"
	"math"
)

// FeatureCount is the length of the model's feature vector: glucose,
// blood pressure, BMI, pedigree, age, in that order.
const FeatureCount = 5

// Artifact is the on-disk form of the trained classifier: a logistic
// regression over standardized features, exported from the offline
// training pipeline as JSON.
type Artifact struct {
	// Features documents the expected input order. Optional; when present
	// it must have exactly FeatureCount entries.
	Features  []string  `json:"features,omitempty"`
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`
	Mean      []float64 `json:"mean"`
	Scale     []float64 `json:"scale"`
}

// LogisticModel is a deterministic Scorer backed by logistic regression
// coefficients. Inputs are standardized with the training-set mean and
// scale before the linear term is computed.
type LogisticModel struct {
	intercept float64
	weights   [FeatureCount]float64
	mean      [FeatureCount]float64
	scale     [FeatureCount]float64
}

// NewLogisticModel validates the artifact shape and builds a model from it.
func NewLogisticModel(a *Artifact) (*LogisticModel, error) {
	if len(a.Weights) != FeatureCount {
		return nil, fmt.Errorf("artifact has %d weights, want %d", len(a.Weights), FeatureCount)
	}
	if len(a.Mean) != FeatureCount {
		return nil, fmt.Errorf("artifact has %d means, want %d", len(a.Mean), FeatureCount)
	}
	if len(a.Scale) != FeatureCount {
		return nil, fmt.Errorf("artifact has %d scales, want %d", len(a.Scale), FeatureCount)
	}
	if a.Features != nil && len(a.Features) != FeatureCount {
		return nil, fmt.Errorf("artifact names %d features, want %d", len(a.Features), FeatureCount)
	}

	m := &LogisticModel{intercept: a.Intercept}
	for i := 0; i < FeatureCount; i++ {
		if a.Scale[i] == 0 {
			return nil, fmt.Errorf("artifact scale[%d] is zero", i)
		}
		m.weights[i] = a.Weights[i]
		m.mean[i] = a.Mean[i]
		m.scale[i] = a.Scale[i]
	}
	return m, nil
}

// Score standardizes the feature vector, applies the logistic function
// and returns the predicted class with the probability of that class.
// The summation order is fixed, so repeated calls with identical input
// yield bit-identical results.
func (m *LogisticModel) Score(features []float64) (int, float64, error) {
	if len(features) != FeatureCount {
		return 0, 0, fmt.Errorf("got %d features, want %d", len(features), FeatureCount)
	}

	z := m.intercept
	for i := 0; i < FeatureCount; i++ {
		z += m.weights[i] * (features[i] - m.mean[i]) / m.scale[i]
	}
	p := 1 / (1 + math.Exp(-z))

	if p >= 0.5 {
		return 1, p, nil
	}
	return 0, 1 - p, nil
}
