package api

import (
	"context"
	"net/http"

	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/prediction"
	"github.com/okian/edupredict/internal/domain/simulation"
)

// PredictionDependencies defines the interface for prediction operations.
type PredictionDependencies interface {
	Predict(ctx context.Context, raw features.RawInputs) (prediction.Report, error)
	Simulate(ctx context.Context, raw features.RawInputs, d simulation.Deltas) (prediction.ScenarioReport, error)
}

// PredictHandler handles prediction and what-if requests.
type PredictHandler struct {
	deps           PredictionDependencies
	validateRanges bool
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictionDependencies) *PredictHandler {
	return &PredictHandler{deps: deps, validateRanges: true}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	var in inputsRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	raw, err := in.rawInputs(h.validateRanges)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	report, err := h.deps.Predict(r.Context(), raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleSimulate handles POST /simulate requests.
func (h *PredictHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulate"
	var req simulateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	raw, err := req.Inputs.rawInputs(h.validateRanges)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	report, err := h.deps.Simulate(r.Context(), raw, req.Deltas)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
