package models

import "time"

// Measurements are the five clinical inputs of the risk model, in the
// model's fixed feature order.
type Measurements struct {
	Glucose       float64 // plasma glucose, mg/dL
	BloodPressure float64 // diastolic blood pressure, mmHg
	BMI           float64 // body-mass index, kg/m^2
	Pedigree      float64 // diabetes pedigree function
	Age           int     // years
}

// Vector returns the measurements as a feature vector in the order the
// risk model expects: glucose, blood pressure, BMI, pedigree, age.
func (m Measurements) Vector() []float64 {
	return []float64{m.Glucose, m.BloodPressure, m.BMI, m.Pedigree, float64(m.Age)}
}

// Patient is a clinical record owned by exactly one user. Measurements,
// Label and Confidence are set together at creation and never change; a
// corrected record replaces the old one instead of mutating it.
type Patient struct {
	ID      string
	OwnerID string
	Name    string
	Sex     string

	Measurements

	// Label is the frozen classifier output: 0 = no elevated risk,
	// 1 = elevated risk. Confidence is the model's probability estimate
	// for the predicted class, in [0,1].
	Label      int
	Confidence float64

	CreatedAt time.Time
}
