// Package inferencetest provides a small, hand-checkable artifact set for
// tests in packages that depend on inference.
package inferencetest

import (
	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/inference"
)

// Labels in canonical (sorted) order, as a label encoder stores them.
var (
	GenderLabels          = []string{"Female", "Male"}
	ParentEducationLabels = []string{"Bachelor", "High School", "Master", "PhD"}
	RiskLabels            = []string{"High", "Low", "Medium"}
)

// Fitted statistics and coefficients. With the baseline student every
// standardized value is exact in binary floating point, so scores can be
// asserted with ShouldEqual.
var (
	ScalerMean  = []float64{0.5, 1.5, 5, 3, 7, 80, 1}
	ScalerScale = []float64{0.5, 1, 2, 2, 1, 10, 1}

	RegressorCoef      = []float64{0, 0, 6, -2, 1.5, 8, -4}
	RegressorIntercept = 70.0

	ClassifierCoef = [][]float64{
		{0, 0, -1, 0.5, 0, -1, 1},
		{0, 0, 1, -0.5, 0, 1, -1},
		{0, 0, 0, 0, 0, 0, 0},
	}
	ClassifierIntercept = []float64{0, 0, 0}
)

// Expected outputs for Baseline.
const (
	BaselineScore = 79.0
	BaselineRisk  = "Low"
)

// Baseline is the reference student: Female, Bachelor, 5h study, 2h social
// media, 7h sleep, 85% attendance, no missed deadlines.
func Baseline() features.RawInputs {
	return features.RawInputs{
		Gender:            "Female",
		ParentEducation:   "Bachelor",
		StudyHours:        5,
		SocialMediaHours:  2,
		SleepHours:        7,
		AttendancePercent: 85,
		MissedDeadlines:   0,
	}
}

// ArtifactSet builds the fixture bundle. It panics on error since the
// fixture is static.
func ArtifactSet() *inference.ArtifactSet {
	gender := must(features.NewCategoryEncoding(features.EncodingGender, GenderLabels))
	parent := must(features.NewCategoryEncoding(features.EncodingParentEducation, ParentEducationLabels))
	risk := must(features.NewCategoryEncoding(features.EncodingRisk, RiskLabels))
	scaler := must(inference.NewStandardScaler(ScalerMean, ScalerScale))
	reg := must(inference.NewLinearRegressor(RegressorCoef, RegressorIntercept))
	clf := must(inference.NewLogisticClassifier(ClassifierCoef, ClassifierIntercept))

	return &inference.ArtifactSet{
		Version:         "fixture",
		Regressor:       reg,
		Classifier:      clf,
		Scaler:          scaler,
		Gender:          gender,
		ParentEducation: parent,
		Risk:            risk,
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
