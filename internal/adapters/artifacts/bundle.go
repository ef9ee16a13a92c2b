package artifacts

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/inference"
)

// FormatVersion is the bundle schema this package reads.
const FormatVersion = 1

// Bundle is the on-disk form of a fitted artifact set. Encodings list their
// labels in canonical order: a label's code is its index.
type Bundle struct {
	Format     int              `json:"format"`
	Version    string           `json:"version"`
	Features   []string         `json:"features"`
	Scaler     ScalerParams     `json:"scaler"`
	Regressor  RegressorParams  `json:"regressor"`
	Classifier ClassifierParams `json:"classifier"`
	Encodings  EncodingParams   `json:"encodings"`
}

// ScalerParams are the standardizer's fitted statistics.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// RegressorParams are a linear regressor's fitted parameters.
type RegressorParams struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// ClassifierParams are a logistic classifier's fitted parameters, one row
// per class (or a single row for a binary model).
type ClassifierParams struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// EncodingParams hold the label sets of the three encoders.
type EncodingParams struct {
	Gender          []string `json:"gender"`
	ParentEducation []string `json:"parent_education"`
	Risk            []string `json:"risk"`
}

// Decode reads a bundle from r. Unknown fields are rejected so a bundle
// written for another schema fails loudly.
func Decode(r io.Reader) (*Bundle, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var b Bundle
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &b, nil
}

// Encode writes b as indented JSON.
func Encode(w io.Writer, b *Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// ArtifactSet validates b and builds the in-memory artifact set.
func (b *Bundle) ArtifactSet() (*inference.ArtifactSet, error) {
	if b.Format != FormatVersion {
		return nil, fmt.Errorf("%w: format %d", ErrUnsupportedBundle, b.Format)
	}
	if err := checkFeatureOrder(b.Features); err != nil {
		return nil, err
	}

	gender, err := features.NewCategoryEncoding(features.EncodingGender, b.Encodings.Gender)
	if err != nil {
		return nil, err
	}
	parent, err := features.NewCategoryEncoding(features.EncodingParentEducation, b.Encodings.ParentEducation)
	if err != nil {
		return nil, err
	}
	risk, err := features.NewCategoryEncoding(features.EncodingRisk, b.Encodings.Risk)
	if err != nil {
		return nil, err
	}

	scaler, err := inference.NewStandardScaler(b.Scaler.Mean, b.Scaler.Scale)
	if err != nil {
		return nil, fmt.Errorf("scaler: %w", err)
	}
	reg, err := inference.NewLinearRegressor(b.Regressor.Coef, b.Regressor.Intercept)
	if err != nil {
		return nil, fmt.Errorf("regressor: %w", err)
	}
	clf, err := inference.NewLogisticClassifier(b.Classifier.Coef, b.Classifier.Intercept)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	set := &inference.ArtifactSet{
		Version:         b.Version,
		Regressor:       reg,
		Classifier:      clf,
		Scaler:          scaler,
		Gender:          gender,
		ParentEducation: parent,
		Risk:            risk,
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// checkFeatureOrder rejects bundles fitted on a different column order.
func checkFeatureOrder(names []string) error {
	if len(names) != features.NumFeatures {
		return fmt.Errorf("%w: %d features, want %d", ErrFeatureOrder, len(names), features.NumFeatures)
	}
	for i, want := range features.FeatureNames {
		if names[i] != want {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrFeatureOrder, i, names[i], want)
		}
	}
	return nil
}
