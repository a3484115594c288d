// Package common defines shared constants and sentinel errors used across
// the DiabCare service layers. Callers should use errors.Is to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal   = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Account errors.
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrWeakPassword       = errors.New("password does not meet the minimum policy")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Session errors. An unknown, expired, or revoked token all map here.
	ErrUnauthenticated = errors.New("unauthenticated")

	// Prediction errors.
	ErrInvalidMeasurement = errors.New("measurement out of range")
	ErrModelUnavailable   = errors.New("risk model unavailable")
)

// MeasurementError reports a single clinical measurement that failed range
// validation. It matches ErrInvalidMeasurement under errors.Is, so callers
// can branch on the error class and still surface the offending field.
type MeasurementError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("invalid measurement %q: %s (got %v)", e.Field, e.Reason, e.Value)
}

func (e *MeasurementError) Is(target error) bool {
	return target == ErrInvalidMeasurement
}
