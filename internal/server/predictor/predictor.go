// Package predictor implements the diabetes risk assessment pipeline:
// range validation of the five clinical measurements, followed by a call
// into an injected scoring model. The scorer is treated as a pure
// function; the package adds no randomness of its own, so identical
// inputs always produce identical results.
package predictor

import (
	"context"
	"fmt"

	"github.com/sara-git-hub/diabcare/internal/common"
	"github.com/sara-git-hub/diabcare/internal/logging"
	"github.com/sara-git-hub/diabcare/internal/server/models"
)

// Physiologically plausible bounds for each measurement. Values at or
// below zero are rejected everywhere (pedigree may be exactly zero).
const (
	MaxGlucose       = 600.0 // mg/dL
	MaxBloodPressure = 300.0 // mmHg
	MaxBMI           = 100.0
	MaxPedigree      = 5.0
	MaxAge           = 130
)

// Scorer is the trained classifier. Features arrive in the fixed order
// glucose, blood pressure, BMI, pedigree, age. It returns the binary
// class label and the probability estimate for that label, in [0,1].
// Implementations must be deterministic.
type Scorer interface {
	Score(features []float64) (label int, confidence float64, err error)
}

// Result is a frozen prediction: the class label (0 = no elevated risk,
// 1 = elevated risk) and the model's confidence in it.
type Result struct {
	Label      int
	Confidence float64
}

// Predictor validates measurements and delegates inference to the
// injected Scorer. A nil scorer means the model artifact could not be
// loaded at startup; every assessment then fails with ErrModelUnavailable.
type Predictor struct {
	scorer Scorer
	logger logging.Logger
}

// New constructs a Predictor. scorer may be nil when the model artifact
// is unavailable; the predictor then reports ErrModelUnavailable per call
// instead of crashing the process.
func New(scorer Scorer, logger logging.Logger) *Predictor {
	return &Predictor{
		scorer: scorer,
		logger: logger.With("module", "predictor"),
	}
}

// Ready reports whether a scoring model is loaded.
func (p *Predictor) Ready() bool {
	return p.scorer != nil
}

// Assess validates the measurements and, if they are in range, scores
// them. Validation failures are *common.MeasurementError naming the
// offending field; inference is never attempted on invalid input.
func (p *Predictor) Assess(ctx context.Context, m models.Measurements) (*Result, error) {
	if err := ValidateMeasurements(m); err != nil {
		return nil, err
	}

	if p.scorer == nil {
		// Operational failure, not a user error; logged distinctly so it
		// reaches the operator.
		p.logger.Error(ctx, "risk model not loaded, assessment rejected")
		return nil, common.ErrModelUnavailable
	}

	label, confidence, err := p.scorer.Score(m.Vector())
	if err != nil {
		p.logger.Error(ctx, "risk model scoring failed", "error", err.Error())
		return nil, fmt.Errorf("%w: %v", common.ErrModelUnavailable, err)
	}
	if label != 0 && label != 1 {
		p.logger.Error(ctx, "risk model returned non-binary label", "label", label)
		return nil, fmt.Errorf("%w: non-binary label %d", common.ErrModelUnavailable, label)
	}
	if confidence < 0 || confidence > 1 {
		p.logger.Error(ctx, "risk model returned confidence out of range", "confidence", confidence)
		return nil, fmt.Errorf("%w: confidence %v out of [0,1]", common.ErrModelUnavailable, confidence)
	}

	return &Result{Label: label, Confidence: confidence}, nil
}

// ValidateMeasurements checks each of the five measurements against its
// documented range and returns a *common.MeasurementError for the first
// violation found.
func ValidateMeasurements(m models.Measurements) error {
	if m.Glucose <= 0 || m.Glucose > MaxGlucose {
		return &common.MeasurementError{
			Field: "glucose", Value: m.Glucose,
			Reason: fmt.Sprintf("must be in (0, %v] mg/dL", MaxGlucose),
		}
	}
	if m.BloodPressure <= 0 || m.BloodPressure > MaxBloodPressure {
		return &common.MeasurementError{
			Field: "blood_pressure", Value: m.BloodPressure,
			Reason: fmt.Sprintf("must be in (0, %v] mmHg", MaxBloodPressure),
		}
	}
	if m.BMI <= 0 || m.BMI > MaxBMI {
		return &common.MeasurementError{
			Field: "bmi", Value: m.BMI,
			Reason: fmt.Sprintf("must be in (0, %v]", MaxBMI),
		}
	}
	if m.Pedigree < 0 || m.Pedigree > MaxPedigree {
		return &common.MeasurementError{
			Field: "pedigree", Value: m.Pedigree,
			Reason: fmt.Sprintf("must be in [0, %v]", MaxPedigree),
		}
	}
	if m.Age <= 0 || m.Age > MaxAge {
		return &common.MeasurementError{
			Field: "age", Value: float64(m.Age),
			Reason: fmt.Sprintf("must be in (0, %d] years", MaxAge),
		}
	}
	return nil
}
