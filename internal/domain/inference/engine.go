// Package inference runs the pre-trained score regressor and risk classifier
// over standardized feature vectors.
package inference

import (
	"fmt"

	"github.com/okian/edupredict/internal/domain/features"
)

// Scaler standardizes a FeatureVector with persisted statistics.
type Scaler interface {
	Transform(v features.FeatureVector) (NormalizedVector, error)
}

// Regressor produces the continuous performance score.
type Regressor interface {
	PredictContinuous(x NormalizedVector) (float64, error)
}

// Classifier produces one probability per risk category, in the risk
// encoding's canonical order.
type Classifier interface {
	PredictProba(x NormalizedVector) ([]float64, error)
}

// ArtifactSet is the fitted bundle. It is built once and only read after.
type ArtifactSet struct {
	Version         string
	Regressor       Regressor
	Classifier      Classifier
	Scaler          Scaler
	Gender          *features.CategoryEncoding
	ParentEducation *features.CategoryEncoding
	Risk            *features.CategoryEncoding
}

// Validate checks that every component is present and that the classifier,
// when it can say so, scores exactly the risk categories.
func (a *ArtifactSet) Validate() error {
	switch {
	case a.Regressor == nil:
		return fmt.Errorf("%w: missing regressor", ErrIncompleteArtifacts)
	case a.Classifier == nil:
		return fmt.Errorf("%w: missing classifier", ErrIncompleteArtifacts)
	case a.Scaler == nil:
		return fmt.Errorf("%w: missing scaler", ErrIncompleteArtifacts)
	case a.Gender == nil:
		return fmt.Errorf("%w: missing gender encoding", ErrIncompleteArtifacts)
	case a.ParentEducation == nil:
		return fmt.Errorf("%w: missing parent education encoding", ErrIncompleteArtifacts)
	case a.Risk == nil:
		return fmt.Errorf("%w: missing risk encoding", ErrIncompleteArtifacts)
	}
	if c, ok := a.Classifier.(interface{ NumClasses() int }); ok && c.NumClasses() != a.Risk.Len() {
		return fmt.Errorf("%w: %d classes, %d risk labels", ErrClassCountMismatch, c.NumClasses(), a.Risk.Len())
	}
	return nil
}

// PredictionResult is one inference's output.
type PredictionResult struct {
	PredictedScore float64            `json:"predicted_score"`
	RiskLabel      string             `json:"risk_label"`
	RiskConfidence float64            `json:"risk_confidence"`
	Probabilities  map[string]float64 `json:"probabilities"`
}

// Engine runs both models on the same normalized vector. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	set *ArtifactSet
}

// NewEngine wraps a validated artifact set. A nil or inconsistent set yields
// a ModelUnavailableError.
func NewEngine(set *ArtifactSet) (*Engine, error) {
	if set == nil {
		return nil, &ModelUnavailableError{Err: ErrIncompleteArtifacts}
	}
	if err := set.Validate(); err != nil {
		return nil, &ModelUnavailableError{Source: set.Version, Err: err}
	}
	return &Engine{set: set}, nil
}

// Artifacts returns the engine's artifact set.
func (e *Engine) Artifacts() *ArtifactSet { return e.set }

// Transform standardizes v with the bundled scaler.
func (e *Engine) Transform(v features.FeatureVector) (NormalizedVector, error) {
	return e.set.Scaler.Transform(v)
}

// Predict scores x and labels it with the most probable risk category.
func (e *Engine) Predict(x NormalizedVector) (PredictionResult, error) {
	score, err := e.set.Regressor.PredictContinuous(x)
	if err != nil {
		return PredictionResult{}, fmt.Errorf("regressor: %w", err)
	}

	probs, err := e.set.Classifier.PredictProba(x)
	if err != nil {
		return PredictionResult{}, fmt.Errorf("classifier: %w", err)
	}
	if len(probs) != e.set.Risk.Len() {
		return PredictionResult{}, fmt.Errorf("%w: got %d probabilities for %d labels",
			ErrClassCountMismatch, len(probs), e.set.Risk.Len())
	}

	best := Argmax(probs)
	if best < 0 {
		return PredictionResult{}, ErrInvalidProbabilities
	}
	label, err := e.set.Risk.Decode(best)
	if err != nil {
		return PredictionResult{}, err
	}

	byLabel := make(map[string]float64, len(probs))
	for i, l := range e.set.Risk.Labels() {
		byLabel[l] = probs[i]
	}
	return PredictionResult{
		PredictedScore: score,
		RiskLabel:      label,
		RiskConfidence: probs[best],
		Probabilities:  byLabel,
	}, nil
}

// Evaluate transforms v and predicts on the result.
func (e *Engine) Evaluate(v features.FeatureVector) (PredictionResult, error) {
	x, err := e.Transform(v)
	if err != nil {
		return PredictionResult{}, fmt.Errorf("scaler: %w", err)
	}
	return e.Predict(x)
}
