// Package prediction composes encoding, scaling, inference and scenario
// simulation into one request/response cycle.
package prediction

import (
	"errors"

	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/inference"
	"github.com/okian/edupredict/internal/domain/simulation"
)

// ErrNotReady is returned by a zero-value Orchestrator.
var ErrNotReady = errors.New("orchestrator not initialized")

// Report is the outcome of one prediction run.
type Report struct {
	Inputs     features.RawInputs         `json:"inputs"`
	Features   features.FeatureVector     `json:"features"`
	Prediction inference.PredictionResult `json:"prediction"`
	Indicators Indicators                 `json:"indicators"`
}

// ScenarioReport is a baseline report plus a what-if run on top of it.
type ScenarioReport struct {
	Report
	Scenario           simulation.Result `json:"scenario"`
	ScenarioIndicators Indicators        `json:"scenario_indicators"`
	Progress           float64           `json:"progress"`
}

// Categories lists the labels each trained encoding knows, in code order.
type Categories struct {
	Version         string   `json:"version"`
	Gender          []string `json:"gender"`
	ParentEducation []string `json:"parent_education"`
	Risk            []string `json:"risk"`
}

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithRangeValidation enables numeric range checks during encoding.
func WithRangeValidation(enabled bool) Option {
	return func(o *Orchestrator) {
		o.validateRanges = enabled
	}
}

// Orchestrator runs Encoder -> Scaler -> Engine and, on request, the
// Simulator. It is safe for concurrent use once built.
type Orchestrator struct {
	encoder   *features.Encoder
	engine    *inference.Engine
	simulator *simulation.Simulator

	validateRanges bool
}

// New builds an orchestrator over set. Any artifact problem is returned as a
// ModelUnavailableError and no orchestrator is produced.
func New(set *inference.ArtifactSet, opts ...Option) (*Orchestrator, error) {
	engine, err := inference.NewEngine(set)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{engine: engine}
	for _, opt := range opts {
		opt(o)
	}

	o.encoder, err = features.NewEncoder(set.Gender, set.ParentEducation,
		features.WithRangeValidation(o.validateRanges))
	if err != nil {
		return nil, &inference.ModelUnavailableError{Source: set.Version, Err: err}
	}
	o.simulator = simulation.New(engine)
	return o, nil
}

// Artifacts returns the artifact set backing o.
func (o *Orchestrator) Artifacts() *inference.ArtifactSet {
	return o.engine.Artifacts()
}

// Categories returns the labels the model accepts and predicts.
func (o *Orchestrator) Categories() Categories {
	set := o.engine.Artifacts()
	return Categories{
		Version:         set.Version,
		Gender:          set.Gender.Labels(),
		ParentEducation: set.ParentEducation.Labels(),
		Risk:            set.Risk.Labels(),
	}
}

// Run encodes raw, predicts, and derives indicators.
func (o *Orchestrator) Run(raw features.RawInputs) (Report, error) {
	if o == nil || o.engine == nil {
		return Report{}, ErrNotReady
	}
	v, err := o.encoder.Encode(raw)
	if err != nil {
		return Report{}, err
	}
	pred, err := o.engine.Evaluate(v)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Inputs:     raw,
		Features:   v,
		Prediction: pred,
		Indicators: ComputeIndicators(v),
	}, nil
}

// RunScenario runs raw as a baseline, then again with the deltas applied.
// Nothing is persisted.
func (o *Orchestrator) RunScenario(raw features.RawInputs, d simulation.Deltas) (ScenarioReport, error) {
	base, err := o.Run(raw)
	if err != nil {
		return ScenarioReport{}, err
	}
	res, err := o.simulator.SimulateFrom(base.Features, base.Prediction, d)
	if err != nil {
		return ScenarioReport{}, err
	}
	return ScenarioReport{
		Report:             base,
		Scenario:           res,
		ScenarioIndicators: ComputeIndicators(res.Adjusted),
		Progress:           Progress(res.Prediction.PredictedScore),
	}, nil
}
