package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/okian/edupredict/internal/domain/features"
)

// LinearRegressor predicts intercept + coefficients·x.
type LinearRegressor struct {
	coef      *mat.VecDense
	intercept float64
}

// NewLinearRegressor builds a regressor from fitted coefficients in
// feature order.
func NewLinearRegressor(coef []float64, intercept float64) (*LinearRegressor, error) {
	if len(coef) != features.NumFeatures {
		return nil, fmt.Errorf("%w: regressor wants %d coefficients, got %d",
			ErrDimensionMismatch, features.NumFeatures, len(coef))
	}
	c := make([]float64, len(coef))
	copy(c, coef)
	return &LinearRegressor{
		coef:      mat.NewVecDense(len(c), c),
		intercept: intercept,
	}, nil
}

// PredictContinuous returns the raw regression output. The value is not
// clamped to any score range.
func (r *LinearRegressor) PredictContinuous(x NormalizedVector) (float64, error) {
	xv := mat.NewVecDense(features.NumFeatures, x[:])
	return mat.Dot(r.coef, xv) + r.intercept, nil
}

// LogisticClassifier is a fitted logistic model. With one coefficient row it
// is binary and the row scores the second class; with k rows it is
// multinomial over k classes.
type LogisticClassifier struct {
	coef      *mat.Dense
	intercept *mat.VecDense
	rows      int
}

// NewLogisticClassifier builds a classifier from one coefficient row per
// class (or a single row for binary models) and matching intercepts.
func NewLogisticClassifier(coef [][]float64, intercept []float64) (*LogisticClassifier, error) {
	rows := len(coef)
	if rows == 0 {
		return nil, fmt.Errorf("%w: classifier has no coefficient rows", ErrDimensionMismatch)
	}
	if len(intercept) != rows {
		return nil, fmt.Errorf("%w: classifier has %d rows but %d intercepts",
			ErrDimensionMismatch, rows, len(intercept))
	}
	data := make([]float64, 0, rows*features.NumFeatures)
	for i, row := range coef {
		if len(row) != features.NumFeatures {
			return nil, fmt.Errorf("%w: classifier row %d wants %d coefficients, got %d",
				ErrDimensionMismatch, i, features.NumFeatures, len(row))
		}
		data = append(data, row...)
	}
	b := make([]float64, rows)
	copy(b, intercept)
	return &LogisticClassifier{
		coef:      mat.NewDense(rows, features.NumFeatures, data),
		intercept: mat.NewVecDense(rows, b),
		rows:      rows,
	}, nil
}

// NumClasses returns how many probabilities PredictProba yields.
func (c *LogisticClassifier) NumClasses() int {
	if c.rows == 1 {
		return 2
	}
	return c.rows
}

// PredictProba returns class probabilities in the classifier's class order.
func (c *LogisticClassifier) PredictProba(x NormalizedVector) ([]float64, error) {
	xv := mat.NewVecDense(features.NumFeatures, x[:])
	z := mat.NewVecDense(c.rows, nil)
	z.MulVec(c.coef, xv)
	z.AddVec(z, c.intercept)

	if c.rows == 1 {
		p := 1 / (1 + math.Exp(-z.AtVec(0)))
		return []float64{1 - p, p}, nil
	}

	logits := make([]float64, c.rows)
	copy(logits, z.RawVector().Data)
	lse := floats.LogSumExp(logits)
	probs := make([]float64, c.rows)
	for i, l := range logits {
		probs[i] = math.Exp(l - lse)
	}
	return probs, nil
}

// Argmax returns the index of the largest probability. Ties go to the
// lowest index, i.e. the first label in canonical order. NaN entries are
// skipped; -1 means there was nothing to pick.
func Argmax(p []float64) int {
	best := -1
	for i, v := range p {
		if math.IsNaN(v) {
			continue
		}
		if best == -1 || v > p[best] {
			best = i
		}
	}
	return best
}
