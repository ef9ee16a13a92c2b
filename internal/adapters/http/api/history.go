package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/edupredict/internal/adapters/mq/queue"
	"github.com/okian/edupredict/internal/domain/model"
)

// HistoryDependencies defines the interface for the performance log.
type HistoryDependencies interface {
	// SaveHistory predicts and queues a record; duplicate reports an id
	// that was already accepted.
	SaveHistory(ctx context.Context, req model.HistoryRequest) (rec model.HistoryRecord, duplicate bool, err error)
	History(ctx context.Context, userID string, limit int) ([]model.HistoryRecord, error)
}

// HistoryHandler handles history requests.
type HistoryHandler struct {
	deps           HistoryDependencies
	validateRanges bool
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps, validateRanges: true}
}

// HandlePostHistory handles POST /history requests.
func (h *HistoryHandler) HandlePostHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_history"
	var req historyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, model.ErrMissingUserID))
		return
	}

	raw, err := req.Inputs.rawInputs(h.validateRanges)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rec, duplicate, err := h.deps.SaveHistory(r.Context(), model.HistoryRequest{ID: req.ID, UserID: req.UserID, Inputs: raw})
	if errors.Is(err, queue.ErrFull) {
		err = wrapKind(op, ErrBackpressure, err)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, Record: rec})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false, Record: rec})
}

// HandleGetHistory handles GET /history/{user_id}?limit=N requests.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	userID := r.PathValue("user_id")
	if strings.TrimSpace(userID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", newKind(op, ErrBadRequest))
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", newKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	records, err := h.deps.History(r.Context(), userID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if records == nil {
		records = []model.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, historyResponse{UserID: userID, Records: records})
}
