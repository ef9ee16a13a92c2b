// Package simulation re-runs inference on a counterfactual copy of a
// student's feature vector.
package simulation

import (
	"fmt"
	"math"

	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/inference"
)

// maxAttendance caps the adjusted attendance percentage.
const maxAttendance = 100

// Evaluator scores a raw (unscaled) feature vector.
type Evaluator interface {
	Evaluate(v features.FeatureVector) (inference.PredictionResult, error)
}

// Deltas describe a what-if change in habits.
type Deltas struct {
	StudyHours        float64 `json:"study_delta"`
	AttendancePercent float64 `json:"attendance_delta"`
}

// Result is a counterfactual prediction next to its baseline.
type Result struct {
	Deltas     Deltas                     `json:"deltas"`
	Adjusted   features.FeatureVector     `json:"adjusted"`
	Baseline   inference.PredictionResult `json:"baseline"`
	Prediction inference.PredictionResult `json:"prediction"`
	DeltaScore float64                    `json:"delta_score"`
}

// Simulator runs scenarios. Nothing it does is persisted.
type Simulator struct {
	eval Evaluator
}

// New creates a simulator over eval.
func New(eval Evaluator) *Simulator {
	return &Simulator{eval: eval}
}

// Adjust returns a copy of baseline with study hours raised by studyDelta
// and attendance raised by attendanceDelta, capped at 100.
func Adjust(baseline features.FeatureVector, d Deltas) features.FeatureVector {
	adjusted := baseline
	adjusted[features.StudyHours] += d.StudyHours
	adjusted[features.AttendancePercent] = math.Min(maxAttendance, adjusted[features.AttendancePercent]+d.AttendancePercent)
	return adjusted
}

// Simulate evaluates baseline and its adjusted copy and reports the score
// change. baseline is passed by value and never modified.
func (s *Simulator) Simulate(baseline features.FeatureVector, d Deltas) (Result, error) {
	if err := d.validate(); err != nil {
		return Result{}, err
	}

	base, err := s.eval.Evaluate(baseline)
	if err != nil {
		return Result{}, fmt.Errorf("baseline: %w", err)
	}
	return s.SimulateFrom(baseline, base, d)
}

// SimulateFrom is Simulate for callers that already hold the baseline
// prediction.
func (s *Simulator) SimulateFrom(baseline features.FeatureVector, base inference.PredictionResult, d Deltas) (Result, error) {
	if err := d.validate(); err != nil {
		return Result{}, err
	}

	adjusted := Adjust(baseline, d)
	pred, err := s.eval.Evaluate(adjusted)
	if err != nil {
		return Result{}, fmt.Errorf("scenario: %w", err)
	}
	return Result{
		Deltas:     d,
		Adjusted:   adjusted,
		Baseline:   base,
		Prediction: pred,
		DeltaScore: pred.PredictedScore - base.PredictedScore,
	}, nil
}

func (d Deltas) validate() error {
	// !(x >= 0) also rejects NaN.
	if !(d.StudyHours >= 0) {
		return &features.InvalidRangeError{Field: "study_delta", Value: d.StudyHours, Min: 0, Max: math.Inf(1)}
	}
	if !(d.AttendancePercent >= 0) {
		return &features.InvalidRangeError{Field: "attendance_delta", Value: d.AttendancePercent, Min: 0, Max: math.Inf(1)}
	}
	return nil
}
