package inference

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/okian/edupredict/internal/domain/features"
)

// NormalizedVector is a FeatureVector after standardization.
type NormalizedVector [features.NumFeatures]float64

// StandardScaler applies persisted per-field standardization:
// (x - mean) / scale. It never refits.
type StandardScaler struct {
	mean  *mat.VecDense
	scale *mat.VecDense
}

// NewStandardScaler builds a scaler from fitted statistics in feature order.
// A zero scale marks a constant column during fitting and is treated as 1.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) != features.NumFeatures || len(scale) != features.NumFeatures {
		return nil, fmt.Errorf("%w: scaler wants %d means and scales, got %d and %d",
			ErrDimensionMismatch, features.NumFeatures, len(mean), len(scale))
	}
	m := make([]float64, features.NumFeatures)
	s := make([]float64, features.NumFeatures)
	copy(m, mean)
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		s[i] = v
	}
	return &StandardScaler{
		mean:  mat.NewVecDense(features.NumFeatures, m),
		scale: mat.NewVecDense(features.NumFeatures, s),
	}, nil
}

// Transform standardizes v.
func (s *StandardScaler) Transform(v features.FeatureVector) (NormalizedVector, error) {
	var out NormalizedVector
	x := mat.NewVecDense(features.NumFeatures, v.Slice())
	x.SubVec(x, s.mean)
	x.DivElemVec(x, s.scale)
	copy(out[:], x.RawVector().Data)
	return out, nil
}
